package dto

import (
	"roombook/infras/jwt"
	adminDto "roombook/internal/domains/admin/model/dto"
)

// AdminResponse describes the logged in administrator.
type AdminResponse = adminDto.AdminResponse

type LoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// Tokens is the pair handed out on login and on refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (t *Tokens) FromTokenPair(pair *jwt.TokenPair) {
	t.AccessToken = pair.AccessToken
	t.RefreshToken = pair.RefreshToken
	t.TokenType = pair.TokenType
	t.ExpiresIn = pair.ExpiresIn
}

type LoginResponse struct {
	Tokens
	Admin AdminResponse `json:"admin"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshTokenResponse = Tokens

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,nefield=CurrentPassword"`
}

type UpdatePasswordRequest struct {
	PasswordHash string `db:"password_hash"`
}
