package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"buildtrack/config"
	"buildtrack/internal/domain/user"
	"buildtrack/internal/repository"
	workflow_errors "buildtrack/pkg/errors"
)

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.Auth.JWTSecret),
		tokenTTL:  cfg.Auth.TokenTTL,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

type UserInfo struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	WorkspaceID string `json:"workspace_id"`
}

type AccessClaims struct {
	UserID      string `json:"sub"`
	WorkspaceID string `json:"wid"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return AuthResponse{}, workflow_errors.Validationf("email and password are required")
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, workflow_errors.ErrNotFound) {
			return AuthResponse{}, workflow_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}
	if !u.IsActive {
		return AuthResponse{}, workflow_errors.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return AuthResponse{}, workflow_errors.ErrUnauthorized
	}

	token, err := s.issueToken(u)
	if err != nil {
		return AuthResponse{}, err
	}
	_ = s.userRepo.UpdateLastLogin(ctx, u.ID, time.Now())

	return AuthResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User: UserInfo{
			ID:          u.ID.String(),
			FullName:    u.FullName,
			Email:       u.Email,
			Role:        string(u.Role),
			WorkspaceID: u.WorkspaceID.String(),
		},
	}, nil
}

func (s *AuthService) issueToken(u user.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:      u.ID.String(),
		WorkspaceID: u.WorkspaceID.String(),
		Role:        string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ParseAccessToken validates the bearer token and returns the actor it
// represents.
func (s *AuthService) ParseAccessToken(token string) (Actor, error) {
	var claims AccessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return Actor{}, workflow_errors.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Actor{}, workflow_errors.ErrUnauthorized
	}
	workspaceID, err := uuid.Parse(claims.WorkspaceID)
	if err != nil {
		return Actor{}, workflow_errors.ErrUnauthorized
	}
	return Actor{ID: userID, WorkspaceID: workspaceID, Role: user.Role(claims.Role)}, nil
}

// HashPassword is used by seeding and account provisioning.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
