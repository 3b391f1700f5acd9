package service

import (
	"context"
	"errors"
	"time"

	"teamkanban/internal/logging"
	"teamkanban/internal/model"
	"teamkanban/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password.
var ErrInvalidCredentials = errors.New("invalid email or password")

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenIssuer signs access tokens for sessions.
type TokenIssuer interface {
	GenerateToken(userID, sessionID uuid.UUID) (string, time.Time, error)
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// AccountService registers users and opens sessions.
type AccountService struct {
	repos  *repository.Store
	tokens TokenIssuer
}

func NewAccountService(repos *repository.Store, tokens TokenIssuer) *AccountService {
	return &AccountService{repos: repos, tokens: tokens}
}

// Register creates the user together with a default organization they own.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	email := in.Email
	fields := logrus.Fields{"email": email}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fail("account.register", err, fields)
	}

	user := &model.User{Email: email, Name: in.Name, HashedPassword: string(hash)}
	err = s.repos.Transaction(ctx, func(tx *repository.Store) error {
		existing, err := tx.Users.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrConflict
		}
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}
		_, err = createOrganization(ctx, tx, user.ID, DefaultOrganizationName(user.Name), "")
		return err
	})
	if err != nil {
		return nil, fail("account.register", err, fields)
	}

	logging.LogEvent("user_registered", logrus.Fields{"user_id": user.ID})
	return user, nil
}

// Login checks the password and opens a session. The new session keeps the
// active organization of the user's previous one.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	email := in.Email
	fields := logrus.Fields{"email": email}

	user, err := s.repos.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fail("account.login", err, fields)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	previous, err := s.repos.Sessions.Latest(ctx, user.ID)
	if err != nil {
		return nil, fail("account.login", err, fields)
	}

	session := &model.Session{ID: uuid.New(), UserID: user.ID, Token: uuid.NewString()}
	if previous != nil {
		session.ActiveOrganizationID = previous.ActiveOrganizationID
	}
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, session.ID)
	if err != nil {
		return nil, fail("account.login", err, fields)
	}
	session.ExpiresAt = expiresAt
	if err := s.repos.Sessions.Create(ctx, session); err != nil {
		return nil, fail("account.login", err, fields)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AccountService) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fail("account.get", err, logrus.Fields{"user_id": userID})
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
