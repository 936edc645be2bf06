package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrInvalidIntent   = errors.New("invalid intent format")
	ErrUnknownIntent   = errors.New("unknown intent type")
)
