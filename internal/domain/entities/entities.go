package entities

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. Exchange API credentials are optional and stored
// encrypted; they are write-only through the API.
type User struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Username         string    `json:"username" db:"username"`
	Email            string    `json:"email" db:"email"`
	PasswordHash     string    `json:"-" db:"password_hash"`
	CoindcxAPIKey    string    `json:"-" db:"coindcx_api_key"`
	CoindcxAPISecret string    `json:"-" db:"coindcx_api_secret"`
	UpstoxAPIKey     string    `json:"-" db:"upstox_api_key"`
	UpstoxAPISecret  string    `json:"-" db:"upstox_api_secret"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterRequest mirrors the original registration payload, including the
// optional exchange credentials.
type RegisterRequest struct {
	Username         string `json:"username" binding:"required,min=3,max=64"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	CoindcxAPIKey    string `json:"coindcxApiKey"`
	CoindcxAPISecret string `json:"coindcxApiSecret"`
	UpstoxAPIKey     string `json:"upstoxApiKey"`
	UpstoxAPISecret  string `json:"upstoxApiSecret"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is a free-text prompt to the assistant.
type ChatRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// ChatResponse carries the assistant's answer.
type ChatResponse struct {
	Text     string `json:"text"`
	Provider string `json:"provider,omitempty"`
}

// ErrorResponse is the standard error envelope for all endpoints.
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
