// Package account implements the credential flows: registration and login.
//
// Registration validates input as an ordered chain that stops at the first
// violated rule, refuses duplicate emails before (and independently of) the
// schema-level unique index, and stores only the bcrypt hash of the password.
// Login deliberately reports unknown emails and wrong passwords with the same
// error so responses cannot be used to probe for registered accounts.
package account

import (
	"context"
	"strings"
	"unicode"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/taskd/internal/auth/jwt"
	"github.com/kbukum/taskd/internal/auth/password"
	"github.com/kbukum/taskd/internal/errors"
	"github.com/kbukum/taskd/internal/logger"
	"github.com/kbukum/taskd/internal/observability"
	"github.com/kbukum/taskd/internal/store"
	"github.com/kbukum/taskd/internal/validation"
)

// UserStore is the persistence surface the account flows need.
type UserStore interface {
	Create(ctx context.Context, user *store.User) error
	FindByEmail(ctx context.Context, email string) (*store.User, error)
}

// Service implements registration and login.
type Service struct {
	users  UserStore
	hasher password.Hasher
	tokens *jwt.Service
	tracer trace.Tracer
	log    *logger.Logger
}

// NewService creates an account service.
func NewService(users UserStore, hasher password.Hasher, tokens *jwt.Service, log *logger.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		tracer: observability.Tracer("taskd/account"),
		log:    log.WithComponent("account"),
	}
}

// RegisterInput is the raw, untrusted registration request.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// validate enforces the registration rules in order, stopping at the first
// violation: name (alphanumeric, 3-30), then email format, then password
// strength.
func (in RegisterInput) validate() error {
	if err := validation.New().
		Required("name", in.Name).
		Alphanumeric("name", in.Name).
		MinLength("name", in.Name, 3).
		MaxLength("name", in.Name, 30).
		First(); err != nil {
		return err
	}
	if err := validation.New().Email("email", in.Email).First(); err != nil {
		return err
	}
	if err := validation.New().
		Required("password", in.Password).
		MinLength("password", in.Password, 6).
		First(); err != nil {
		return err
	}
	return checkPasswordStrength(in.Password)
}

// checkPasswordStrength requires at least one lowercase letter, one uppercase
// letter, one digit, and one special character.
func checkPasswordStrength(pw string) error {
	var hasLower, hasUpper, hasDigit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	hasSpecial := strings.ContainsAny(pw, "!@#$%^&*")

	if !hasLower || !hasUpper || !hasDigit || !hasSpecial {
		return errors.InvalidInput("password",
			"password must include at least one uppercase letter, one lowercase letter, one digit, and one special character")
	}
	return nil
}

// Register validates the input, rejects duplicate emails, and persists a new
// user with a hashed password. The duplicate check terminates the flow: no
// write happens once a conflict is detected.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	ctx, span := s.tracer.Start(ctx, "account.register")
	defer span.End()

	if err := in.validate(); err != nil {
		return err
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		span.RecordError(err)
		s.log.Error("Registration lookup failed", logger.ErrorFields("register", err))
		return errors.DatabaseError(err)
	}
	if existing != nil {
		return errors.Conflict("Email is already registered.")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		span.RecordError(err)
		return errors.Internal(err)
	}

	user := &store.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Two concurrent registrations can both pass the lookup; the unique
		// index decides the race and the loser gets the same conflict.
		if store.IsDuplicate(err) {
			return errors.Conflict("Email is already registered.")
		}
		span.RecordError(err)
		s.log.Error("Registration insert failed", logger.ErrorFields("register", err))
		return errors.DatabaseError(err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.log.Info("User registered", logger.Fields(
		logger.FieldUserID, user.ID,
	))
	return nil
}

// LoginInput is the raw, untrusted login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) validate() error {
	if err := validation.New().Email("email", in.Email).First(); err != nil {
		return err
	}
	if err := validation.New().
		Required("password", in.Password).
		MinLength("password", in.Password, 6).
		First(); err != nil {
		return err
	}
	return nil
}

// Login verifies the credentials and issues a session token bound to the
// user's ID. Unknown email and wrong password produce the same error.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	ctx, span := s.tracer.Start(ctx, "account.login")
	defer span.End()

	if err := in.validate(); err != nil {
		return "", err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		span.RecordError(err)
		return "", errors.DatabaseError(err)
	}
	if user == nil {
		return "", errors.InvalidCredentials()
	}

	if err := s.hasher.Verify(in.Password, user.PasswordHash); err != nil {
		return "", errors.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		span.RecordError(err)
		return "", errors.Internal(err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.log.Info("User logged in", logger.Fields(
		logger.FieldUserID, user.ID,
	))
	return token, nil
}
