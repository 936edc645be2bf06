package session

import "errors"

var (
	ErrSessionClosed   = errors.New("session is closed")
	ErrNotRecipient    = errors.New("only the recipient can resolve a request")
	ErrNotAdmin        = errors.New("administrator privilege required")
	ErrCallBusy        = errors.New("another call is already active")
	ErrNoIncomingCall  = errors.New("no incoming call to answer")
	ErrUnknownUser     = errors.New("user not present in directory")
	ErrRequestNotFound = errors.New("friend request not found")
)
