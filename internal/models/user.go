package models

import "time"

// Identity providers a user can come from.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PasswordHash string `json:"-"` // never serialized
	Provider     string `json:"provider"`
	Subject      string `json:"-"` // provider-side subject for OAuth users

	// reminder delivery
	TelegramChatID int64 `json:"telegramChatId,omitempty"`
	NotifyTelegram bool  `json:"notifyTelegram"`

	CreatedAt time.Time `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName"`
}

type TelegramLinkRequest struct {
	ChatID int64 `json:"chatId" binding:"required"`
	Notify *bool `json:"notify"`
}

// Session is returned by every successful sign-in.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}
