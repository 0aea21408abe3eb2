package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTutor   Role = "TUTOR"
	RoleAdmin   Role = "ADMIN"
)

type UserStatus string

const (
	UserStatusActive UserStatus = "ACTIVE"
	UserStatusBanned UserStatus = "BANNED"
)

type User struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Status     UserStatus `json:"status"`
	TelegramID *int64     `json:"telegram_id"` // чат для уведомлений, может быть nil
	CreatedAt  time.Time  `json:"created_at"`
}

// IsBanned проверяет заблокирован ли пользователь
func (u *User) IsBanned() bool {
	return u.Status == UserStatusBanned
}
