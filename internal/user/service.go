package user

import (
	"context"
	"errors"
	"regexp"

	"ustat-be/internal/auth"
	"ustat-be/internal/logger"
	"ustat-be/internal/validation"
	"ustat-be/internal/verification"

	"go.uber.org/zap"
)

// CodeSender mails a verification code out of band.
type CodeSender interface {
	SendCode(email, code string)
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	VerifyEmail(ctx context.Context, email, code string) error
	// Login returns a signed access token for a verified account.
	Login(ctx context.Context, input LoginInput) (string, *User, error)
	// ResendCode issues a fresh verification code for an unverified account.
	ResendCode(ctx context.Context, email string) error
}

type service struct {
	repo   Repository
	codes  verification.Service
	mailer CodeSender
}

func NewService(repo Repository, codes verification.Service, mailer CodeSender) Service {
	return &service{repo: repo, codes: codes, mailer: mailer}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func (s *service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "User"),
		zap.String("method", "Register"),
		zap.String("email", input.Email),
	)

	errs := validation.FieldErrors{}
	if !emailPattern.MatchString(input.Email) {
		errs.Add("email", "invalid email address")
	}
	if input.FullName == "" {
		errs.Add("full_name", "full name cannot be empty")
	}
	if len(input.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters")
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		log.Error("failed to check existing account", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, validation.FieldErrors{"email": "an account with this email already exists"}
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &User{
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// a concurrent Register can slip past the GetByEmail check
		if errors.Is(err, ErrEmailTaken) {
			return nil, validation.FieldErrors{"email": "an account with this email already exists"}
		}
		log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	code, err := s.codes.Generate(ctx, u.Email)
	if err != nil {
		// account exists; the code can be re-requested later
		log.Error("failed to issue verification code", zap.Error(err))
	} else if s.mailer != nil {
		s.mailer.SendCode(u.Email, code)
	}

	log.Info("user registered", zap.Uint("user_id", u.ID))
	return u, nil
}

func (s *service) VerifyEmail(ctx context.Context, email, code string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "User"),
		zap.String("method", "VerifyEmail"),
		zap.String("email", email),
	)

	if err := s.codes.Verify(ctx, email, code); err != nil {
		return err
	}

	if err := s.repo.MarkVerified(ctx, email); err != nil {
		log.Error("failed to mark account verified", zap.Error(err))
		return err
	}

	log.Info("email verified")
	return nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "User"),
		zap.String("method", "Login"),
		zap.String("email", input.Email),
	)

	u, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		log.Error("failed to load account", zap.Error(err))
		return "", nil, err
	}
	if u == nil || !auth.CheckPasswordHash(input.Password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsVerified {
		return "", nil, ErrNotVerified
	}

	token, err := auth.GenerateJWT(u.ID, u.Email, u.FullName, u.IsStaff)
	if err != nil {
		log.Error("failed to sign token", zap.Error(err))
		return "", nil, err
	}

	log.Info("login succeeded", zap.Uint("user_id", u.ID))
	return token, u, nil
}

func (s *service) ResendCode(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	if u.IsVerified {
		return validation.FieldErrors{"email": "account is already verified"}
	}

	code, err := s.codes.Generate(ctx, email)
	if err != nil {
		return err
	}
	if s.mailer != nil {
		s.mailer.SendCode(email, code)
	}
	return nil
}
