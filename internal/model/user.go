package model

import (
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
}
