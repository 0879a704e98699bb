package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spots/internal/models"
	"spots/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo    repositories.UserRepository
	jwtSecret   []byte
	tokenTTL    time.Duration
	emailDomain string
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithTokenTTL sets how long issued session tokens stay valid.
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithEmailDomain requires registrations to use an email address in domain.
func WithEmailDomain(domain string) AuthOption {
	return func(s *AuthService) {
		s.emailDomain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "@"))
	}
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, opts ...AuthOption) *AuthService {
	s := &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Username string `json:"username" form:"username" validate:"required,max=64"`
	Email    string `json:"email" form:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

// RegisterUser creates an account with a bcrypt hashed password.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrInvalidInput)
	}

	email := strings.TrimSpace(in.Email)
	if s.emailDomain != "" {
		if email == "" {
			return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
		}
		if !strings.HasSuffix(strings.ToLower(email), "@"+s.emailDomain) {
			return nil, fmt.Errorf("%w: must end with @%s", ErrEmailDomain, s.emailDomain)
		}
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	user := &models.User{Username: username}
	if email != "" {
		if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		user.Email = &email
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Hash = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// LoginUser authenticates a user and returns a signed session token.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.IssueToken(user)
}

// IssueToken signs a session token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// TokenTTL is the lifetime of issued tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// ValidateToken checks the signature and expiry of a token and returns the
// identity it carries.
func (s *AuthService) ValidateToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Debug().Err(err).Msg("token validation failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// Numbers decode as float64 from the JSON payload.
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return nil, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}
	username, _ := claims["username"].(string)
	isAdmin, _ := claims["is_admin"].(bool)

	return &Identity{
		UserID:   uint(userID),
		Username: username,
		IsAdmin:  isAdmin,
	}, nil
}

// Authenticate validates a token and refreshes the identity from the store,
// so admin grants and revocations apply to sessions already issued.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*Identity, error) {
	ident, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", ErrInvalidToken)
		}
		return nil, err
	}
	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}, nil
}

// SetAdmin grants or revokes admin rights.
func (s *AuthService) SetAdmin(ctx context.Context, username string, isAdmin bool) error {
	if err := s.userRepo.SetAdmin(ctx, username, isAdmin); err != nil {
		return fmt.Errorf("failed to set admin flag: %w", err)
	}
	return nil
}
