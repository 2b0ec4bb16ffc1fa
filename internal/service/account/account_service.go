package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/Domenick1991/airbook/internal/auth"
	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/Domenick1991/airbook/internal/repository"
	"github.com/sirupsen/logrus"
)

const MinPasswordLength = 8

type AccountUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	AdminLogin(ctx context.Context, email, password string) (*Session, error)
	Profile(ctx context.Context, userID int64) (*domain.User, error)
}

type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
	TTL() time.Duration
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Session is what a successful register or login hands back to the client.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

type AccountService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	hash   func(string) (string, error)
	check  func(hash, password string) (bool, error)
	now    func() time.Time
	log    *logrus.Entry
}

func NewAccountService(users repository.UserRepository, tokens TokenIssuer, log *logrus.Entry) *AccountService {
	return &AccountService{
		users:  users,
		tokens: tokens,
		hash:   auth.HashPassword,
		check:  auth.CheckPassword,
		now:    time.Now,
		log:    log,
	}
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	var fields []apperr.FieldError
	if email == "" {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "is required"})
	}
	if len(input.Password) < MinPasswordLength {
		fields = append(fields, apperr.FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	if name == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "is required"})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid registration", fields...)
	}

	hashed, err := s.hash(input.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email is already registered")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return s.session(user)
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *AccountService) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleAdmin {
		s.log.WithField("user_id", user.ID).Warn("non-admin attempted admin login")
		return nil, apperr.Forbidden("admin access required")
	}
	return s.session(user)
}

func (s *AccountService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

// authenticate gives the same answer for an unknown email and a wrong password.
func (s *AccountService) authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	ok, err := s.check(user.PasswordHash, password)
	if err != nil {
		return nil, apperr.Internal("failed to verify password", err)
	}
	if !ok {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("account is disabled")
	}
	return user, nil
}

func (s *AccountService) session(user *domain.User) (*Session, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: s.now().Add(s.tokens.TTL()).UTC(),
		User:      user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ AccountUseCase = (*AccountService)(nil)
