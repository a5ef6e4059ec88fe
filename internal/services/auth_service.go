package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ulasan/internal/apperrors"
	"ulasan/internal/mail"
	"ulasan/internal/models"
	"ulasan/internal/repositories"
	"ulasan/internal/validation"
)

const confirmationSubject = "Your confirmation code"

// AuthConfig tunes token issuing and signup mail.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	MailFrom  string
	// MailFailLoudly makes signup fail when the confirmation mail cannot be sent.
	// The freshly stored code stays valid either way.
	MailFailLoudly bool
}

// AuthService runs the passwordless signup flow and issues bearer tokens.
type AuthService struct {
	userRepo   repositories.UserRepository
	mailer     mail.Mailer
	jwtSecret  []byte
	tokenTTL   time.Duration
	mailFrom   string
	failLoudly bool
	newCode    func() string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, mailer mail.Mailer, cfg AuthConfig) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		mailer:     mailer,
		jwtSecret:  []byte(cfg.JWTSecret),
		tokenTTL:   ttl,
		mailFrom:   cfg.MailFrom,
		failLoudly: cfg.MailFailLoudly,
		newCode:    func() string { return uuid.New().String() },
	}
}

// RequestSignup finds or creates the account for the (username, email) pair,
// stores a fresh confirmation code replacing any earlier one and mails it.
func (s *AuthService) RequestSignup(username, email string) (*models.User, error) {
	if validation.IsReservedUsername(username) {
		return nil, apperrors.FieldValidation("username", fmt.Sprintf("The username %q is not available.", validation.ReservedUsername))
	}

	user, err := s.findOrCreate(username, email)
	if err != nil {
		return nil, err
	}

	code := s.newCode()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash confirmation code: %w", err)
	}
	if err := s.userRepo.SetConfirmationCode(user.ID, string(hash)); err != nil {
		return nil, err
	}

	err = s.mailer.Send(mail.Message{
		To:      email,
		From:    s.mailFrom,
		Subject: confirmationSubject,
		Body:    code,
	})
	if err != nil {
		log.Printf("Warning: confirmation code for %s stored but mail delivery failed: %v", username, err)
		if s.failLoudly {
			return nil, apperrors.Unavailable("The confirmation code could not be sent. Please request signup again.", err)
		}
	}
	return user, nil
}

func (s *AuthService) findOrCreate(username, email string) (*models.User, error) {
	conflict := func(cause error) error {
		return apperrors.Conflict("A user with this username or email already exists.", cause)
	}

	user, err := s.userRepo.GetByUsername(username)
	switch {
	case err == nil:
		if user.Email != email {
			return nil, conflict(nil)
		}
		return user, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, conflict(nil)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user = &models.User{Username: username, Email: email, Role: models.RoleUser}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Lost a race with a concurrent signup.
			return nil, conflict(err)
		}
		return nil, err
	}
	log.Printf("Created user %s via signup", username)
	return user, nil
}

// ExchangeToken trades a username and its current confirmation code for an
// access token. The code is consumed on success.
func (s *AuthService) ExchangeToken(username, code string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", err
	}

	invalid := apperrors.Validation("Invalid username or confirmation code.", nil)
	if user.ConfirmationCode == nil || *user.ConfirmationCode == "" {
		return "", invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.ConfirmationCode), []byte(code)); err != nil {
		return "", invalid
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.SetConfirmationCode(user.ID, ""); err != nil {
		return "", err
	}
	return token, nil
}

// IssueToken signs an access token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    user.ID,
		"username":   user.Username,
		"token_type": "access",
		"exp":        now.Add(s.tokenTTL).Unix(),
		"iat":        now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, ok := claims["exp"]; !ok {
		return nil, errors.New("invalid token: missing expiry")
	}
	if claims["token_type"] != "access" {
		return nil, errors.New("invalid token: not an access token")
	}
	return claims, nil
}

// Authenticate resolves a bearer token to the current state of its user.
func (s *AuthService) Authenticate(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, apperrors.Unauthenticated("Invalid or expired token")
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return nil, apperrors.Unauthenticated("Invalid or expired token")
	}
	user, err := s.userRepo.GetByID(uint(rawID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthenticated("User not found")
		}
		return nil, err
	}
	return user, nil
}
