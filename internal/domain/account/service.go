package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/barangay/records/internal/platform/apperr"
	"github.com/barangay/records/internal/platform/auth"
)

const minPasswordLength = 8

// ErrInvalidCredentials is returned for an unknown user, a wrong password
// and a disabled account alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

type Service struct {
	repo        Repository
	issuer      *auth.TokenIssuer
	revocations auth.RevocationStore
	cost        int
	logger      zerolog.Logger
}

func NewService(repo Repository, issuer *auth.TokenIssuer, revocations auth.RevocationStore, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		issuer:      issuer,
		revocations: revocations,
		cost:        bcrypt.DefaultCost,
		logger:      logger,
	}
}

func (s *Service) hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *Service) Create(ctx context.Context, req NewUser) (*User, error) {
	u := &User{
		Username: strings.TrimSpace(req.Username),
		FullName: strings.TrimSpace(req.FullName),
		Role:     strings.ToLower(strings.TrimSpace(req.Role)),
		Active:   true,
	}
	if u.Username == "" {
		return nil, apperr.Validation("username is required")
	}
	if !auth.ValidRole(u.Role) {
		return nil, apperr.Validation("role must be one of %s", strings.Join(auth.Roles, ", "))
	}
	h, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = h
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			return nil, apperr.Duplicate("user %s already exists", u.Username)
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UserUpdate) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.FullName); name != "" {
		u.FullName = name
	}
	if role := strings.ToLower(strings.TrimSpace(req.Role)); role != "" {
		if !auth.ValidRole(role) {
			return nil, apperr.Validation("role must be one of %s", strings.Join(auth.Roles, ", "))
		}
		u.Role = role
	}
	if req.Active != nil {
		u.Active = *req.Active
	}
	if req.Password != "" {
		h, err := s.hash(req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = h
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Login verifies the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return nil, apperr.Validation("username and password are required")
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.issuer.Issue(u.ID.String(), u.Username, u.Role)
	if err != nil {
		return nil, err
	}
	if err := s.repo.TouchLogin(ctx, u.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", u.ID.String()).Msg("failed to record last login")
	}
	return &Session{Token: token, ExpiresAt: exp, User: u, LandingRoute: auth.LandingRoute(u.Role)}, nil
}

// Logout revokes the token until its natural expiry.
func (s *Service) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	return s.revocations.Revoke(ctx, jti, expiresAt)
}
