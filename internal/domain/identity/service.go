package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gastroclinic/clinic/internal/platform/auth"
	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

// ErrInvalidCredentials is returned by Login for an unknown user, a wrong
// password or a deactivated account alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

type Service struct {
	users    UserRepository
	patients PatientRepository
	tokens   *auth.Issuer
}

func NewService(users UserRepository, patients PatientRepository, tokens *auth.Issuer) *Service {
	return &Service{users: users, patients: patients, tokens: tokens}
}

// -- Users --

// LoginResult is the body of a successful login.
type LoginResult struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Service) Login(ctx context.Context, in *LoginInput) (*LoginResult, error) {
	if err := schema.Validate(in); err != nil {
		return nil, err
	}
	u, err := s.users.GetByUsername(ctx, *in.Username)
	if db.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !u.IsActive || !auth.CheckPassword(*in.Password, u.Password) {
		return nil, ErrInvalidCredentials
	}
	u.Password = ""

	token, expiresAt, err := s.tokens.Issue(u.ID, u.Role, u.FullName)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &LoginResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

// CreateUser validates the input and stores the user with a hashed password.
func (s *Service) CreateUser(ctx context.Context, in *UserInput) (*User, error) {
	if err := schema.Validate(in); err != nil {
		return nil, err
	}
	hashed, err := auth.HashPassword(*in.Password)
	if err != nil {
		return nil, err
	}
	in.Password = &hashed
	return s.users.Create(ctx, in)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// UserActive reports whether id names an existing, active account. The
// auth middleware calls it for every token-bearing request.
func (s *Service) UserActive(ctx context.Context, id uuid.UUID) (bool, error) {
	u, err := s.users.GetByID(ctx, id)
	if db.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return u.IsActive, nil
}

// ListUsers returns active users, optionally restricted to one role.
func (s *Service) ListUsers(ctx context.Context, role string) ([]*User, error) {
	if role != "" && !validRole(role) {
		ve := &schema.ValidationError{}
		ve.Add("role", "must be one of: "+strings.Join(auth.Roles, ", "))
		return nil, ve
	}
	return s.users.List(ctx, role)
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.users.Count(ctx)
}

func validRole(role string) bool {
	for _, r := range auth.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// -- Patients --

func (s *Service) CreatePatient(ctx context.Context, in *PatientInput) (*Patient, error) {
	if err := schema.Validate(in); err != nil {
		return nil, err
	}
	return s.patients.Create(ctx, in)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, in *PatientInput, fields schema.Fields) (*Patient, error) {
	if err := schema.ValidatePartial(in, fields); err != nil {
		return nil, err
	}
	return s.patients.Update(ctx, id, in, fields)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.patients.Delete(ctx, id)
}

func (s *Service) SearchPatients(ctx context.Context, query string) ([]*Patient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		ve := &schema.ValidationError{}
		ve.Add("q", "required")
		return nil, ve
	}
	return s.patients.Search(ctx, query)
}
