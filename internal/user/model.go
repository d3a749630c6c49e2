package user

import "time"

type User struct {
	ID           uint
	Email        string
	FullName     string
	PasswordHash string
	IsStaff      bool
	IsVerified   bool
	CreatedAt    time.Time
}

type RegisterInput struct {
	Email    string
	FullName string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}
