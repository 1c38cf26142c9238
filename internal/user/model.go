package user

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // BUYER | SELLER
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest payload of registration.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Email    string `json:"email"    example:"maryam@example.com"`
	Name     string `json:"name"     example:"Maryam"`
	Password string `json:"password" example:"s3cret"`
	Role     string `json:"role"     example:"SELLER"`
}

// LoginRequest payload of login.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the issued bearer token.
// swagger:model TokenResponse
type TokenResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
