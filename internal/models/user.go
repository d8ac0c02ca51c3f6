package models

import "time"

type User struct {
	ID           int      `json:"id"`
	FullName     string   `json:"full_name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"` // не отдаём наружу
	Roles        []string `json:"roles"`

	// refresh-хранение в БД
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
