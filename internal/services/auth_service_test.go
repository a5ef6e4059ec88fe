package services_test

import (
	"errors"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"ulasan/internal/apperrors"
	"ulasan/internal/mail"
	"ulasan/internal/models"
	"ulasan/internal/services"
)

const testJWTSecret = "test_jwt_secret"

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newAuthService(repo *MockUserRepository, mailer *MockMailer, failLoudly bool) *services.AuthService {
	return services.NewAuthService(repo, mailer, services.AuthConfig{
		JWTSecret:      testJWTSecret,
		TokenTTL:       time.Hour,
		MailFrom:       "noreply@test.local",
		MailFailLoudly: failLoudly,
	})
}

// captureSignup records the stored hash and the mailed code of one signup.
func captureSignup(repo *MockUserRepository, mailer *MockMailer, userID uint, hash, code *string) {
	repo.On("SetConfirmationCode", userID, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { *hash = args.String(1) }).
		Return(nil).Once()
	mailer.On("Send", mock.AnythingOfType("mail.Message")).
		Run(func(args mock.Arguments) { *code = args.Get(0).(mail.Message).Body }).
		Return(nil).Once()
}

func TestAuthService_RequestSignup_NewUser(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	authService := newAuthService(repo, mailer, false)

	repo.On("GetByUsername", "alice").Return(nil, apperrors.NotFound("user not found")).Once()
	repo.On("GetByEmail", "alice@example.com").Return(nil, apperrors.NotFound("user not found")).Once()
	repo.On("Create", mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { args.Get(0).(*models.User).ID = 1 }).
		Return(nil).Once()
	var hash, code string
	captureSignup(repo, mailer, 1, &hash, &code)

	user, err := authService.RequestSignup("alice", "alice@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, code)
	assert.NotEqual(t, code, hash, "the code must be stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)))

	repo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestAuthService_RequestSignup_ReservedUsername(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	authService := newAuthService(repo, mailer, false)

	for _, name := range []string{"me", "ME", "Me"} {
		_, err := authService.RequestSignup(name, "me@example.com")
		assert.ErrorIs(t, err, apperrors.ErrValidation, name)
	}
	repo.AssertNotCalled(t, "GetByUsername", mock.Anything)
	mailer.AssertNotCalled(t, "Send", mock.Anything)
}

func TestAuthService_RequestSignup_EmailMismatch(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	authService := newAuthService(repo, mailer, false)

	existing := &models.User{ID: 3, Username: "bob", Email: "bob@example.com"}
	repo.On("GetByUsername", "bob").Return(existing, nil).Once()

	_, err := authService.RequestSignup("bob", "other@example.com")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	repo.AssertNotCalled(t, "SetConfirmationCode", mock.Anything, mock.Anything)
}

func TestAuthService_RequestSignup_EmailTakenByOtherUser(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	authService := newAuthService(repo, mailer, false)

	repo.On("GetByUsername", "carol").Return(nil, apperrors.NotFound("user not found")).Once()
	repo.On("GetByEmail", "shared@example.com").Return(&models.User{ID: 9, Username: "dave"}, nil).Once()

	_, err := authService.RequestSignup("carol", "shared@example.com")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_ReissueInvalidatesPreviousCode(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	authService := newAuthService(repo, mailer, false)

	user := &models.User{ID: 5, Username: "erin", Email: "erin@example.com"}
	repo.On("GetByUsername", "erin").Return(user, nil).Twice()

	var firstHash, firstCode, secondHash, secondCode string
	captureSignup(repo, mailer, 5, &firstHash, &firstCode)
	_, err := authService.RequestSignup("erin", "erin@example.com")
	assert.NoError(t, err)

	captureSignup(repo, mailer, 5, &secondHash, &secondCode)
	_, err = authService.RequestSignup("erin", "erin@example.com")
	assert.NoError(t, err)

	assert.NotEqual(t, firstCode, secondCode)

	// Only the latest code is stored, so the first one no longer exchanges.
	stored := &models.User{ID: 5, Username: "erin", Email: "erin@example.com", ConfirmationCode: &secondHash}
	repo.On("GetByUsername", "erin").Return(stored, nil)
	_, err = authService.ExchangeToken("erin", firstCode)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	repo.On("SetConfirmationCode", uint(5), "").Return(nil).Once()
	token, err := authService.ExchangeToken("erin", secondCode)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestAuthService_RequestSignup_MailFailure(t *testing.T) {
	t.Run("Logged", func(t *testing.T) {
		repo := new(MockUserRepository)
		mailer := new(MockMailer)
		authService := newAuthService(repo, mailer, false)

		user := &models.User{ID: 2, Username: "frank", Email: "frank@example.com"}
		repo.On("GetByUsername", "frank").Return(user, nil).Once()
		repo.On("SetConfirmationCode", uint(2), mock.AnythingOfType("string")).Return(nil).Once()
		mailer.On("Send", mock.Anything).Return(errors.New("smtp down")).Once()

		got, err := authService.RequestSignup("frank", "frank@example.com")
		assert.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("FailLoudly", func(t *testing.T) {
		repo := new(MockUserRepository)
		mailer := new(MockMailer)
		authService := newAuthService(repo, mailer, true)

		user := &models.User{ID: 2, Username: "frank", Email: "frank@example.com"}
		repo.On("GetByUsername", "frank").Return(user, nil).Once()
		repo.On("SetConfirmationCode", uint(2), mock.AnythingOfType("string")).Return(nil).Once()
		mailer.On("Send", mock.Anything).Return(errors.New("smtp down")).Once()

		_, err := authService.RequestSignup("frank", "frank@example.com")
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
		repo.AssertExpectations(t)
	})
}

func TestAuthService_ExchangeToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right-code"), bcrypt.MinCost)
	assert.NoError(t, err)
	hashed := string(hash)

	t.Run("UnknownUser", func(t *testing.T) {
		repo := new(MockUserRepository)
		authService := newAuthService(repo, new(MockMailer), false)
		repo.On("GetByUsername", "ghost").Return(nil, apperrors.NotFound("user %q not found", "ghost")).Once()

		_, err := authService.ExchangeToken("ghost", "whatever")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("WrongCode", func(t *testing.T) {
		repo := new(MockUserRepository)
		authService := newAuthService(repo, new(MockMailer), false)
		repo.On("GetByUsername", "gina").Return(&models.User{ID: 4, Username: "gina", ConfirmationCode: &hashed}, nil).Once()

		_, err := authService.ExchangeToken("gina", "wrong-code")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		repo.AssertNotCalled(t, "SetConfirmationCode", mock.Anything, mock.Anything)
	})

	t.Run("NoCodeIssued", func(t *testing.T) {
		repo := new(MockUserRepository)
		authService := newAuthService(repo, new(MockMailer), false)
		repo.On("GetByUsername", "hank").Return(&models.User{ID: 6, Username: "hank"}, nil).Once()

		_, err := authService.ExchangeToken("hank", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Success", func(t *testing.T) {
		repo := new(MockUserRepository)
		authService := newAuthService(repo, new(MockMailer), false)
		user := &models.User{ID: 4, Username: "gina", ConfirmationCode: &hashed}
		repo.On("GetByUsername", "gina").Return(user, nil).Once()
		repo.On("SetConfirmationCode", uint(4), "").Return(nil).Once()

		tokenString, err := authService.ExchangeToken("gina", "right-code")
		assert.NoError(t, err)

		claims, err := authService.ValidateToken(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, float64(4), claims["user_id"])
		assert.Equal(t, "gina", claims["username"])
		assert.Equal(t, "access", claims["token_type"])
		repo.AssertExpectations(t)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	repo := new(MockUserRepository)
	authService := newAuthService(repo, new(MockMailer), false)
	user := &models.User{ID: 7, Username: "ivan", Role: models.RoleModerator}

	tokenString, err := authService.IssueToken(user)
	assert.NoError(t, err)

	repo.On("GetByID", uint(7)).Return(user, nil).Once()
	got, err := authService.Authenticate(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, user, got)

	repo.On("GetByID", uint(7)).Return(nil, apperrors.NotFound("user 7 not found")).Once()
	_, err = authService.Authenticate(tokenString)
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)
}

func TestAuthService_ValidateToken_Rejects(t *testing.T) {
	authService := newAuthService(new(MockUserRepository), new(MockMailer), false)

	sign := func(secret string, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		assert.NoError(t, err)
		return s
	}
	future := time.Now().Add(time.Hour).Unix()

	cases := map[string]string{
		"WrongSecret":  sign("other_secret", jwt.MapClaims{"user_id": 1, "token_type": "access", "exp": future}),
		"Expired":      sign(testJWTSecret, jwt.MapClaims{"user_id": 1, "token_type": "access", "exp": time.Now().Add(-time.Hour).Unix()}),
		"NoExpiry":     sign(testJWTSecret, jwt.MapClaims{"user_id": 1, "token_type": "access"}),
		"RefreshToken": sign(testJWTSecret, jwt.MapClaims{"user_id": 1, "token_type": "refresh", "exp": future}),
		"Garbage":      "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := authService.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}
