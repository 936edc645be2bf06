package models

import (
	"time"

	"github.com/google/uuid"
)

// Account — учётные данные в Postgres. Всё остальное про пользователя
// живёт в UserRecord внутри общего хранилища.
type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Handle       string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
}
