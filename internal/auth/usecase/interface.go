package usecase

import (
	authdomain "touchbase-backend/internal/auth/domain"
	authdto "touchbase-backend/internal/auth/dto"
)

// IMAPVerifier checks that the given credentials can open an IMAP session
type IMAPVerifier func(server string, port int, email, password string) error

// AuthUsecase defines the authentication operations exposed to the delivery layer
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	IMAPLogin(req *authdto.IMAPLoginRequest) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)
}
