package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"daily_report/internal/models"
	"daily_report/internal/repository"
)

// TokenIssuer signs a bearer token for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type SignupInput struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	Phone    *string `json:"phone"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UserSummary is a user with its role and driver record, if any.
type UserSummary struct {
	models.User
	Role   *models.Role   `json:"role"`
	Driver *models.Driver `json:"driver"`
}

type UserService struct {
	store    repository.Store
	identity *IdentityService
	tokens   TokenIssuer
	hashCost int
}

func NewUserService(store repository.Store, identity *IdentityService, tokens TokenIssuer, hashCost int) *UserService {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &UserService{store: store, identity: identity, tokens: tokens, hashCost: hashCost}
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalid("a valid email is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name cannot be empty")
	}
	if in.Password == "" {
		return nil, invalid("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Name:     in.Name,
		Email:    email,
		Password: string(hash),
		Phone:    in.Phone,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already in use", ErrConflict)
		}
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	logrus.WithField("user_id", u.ID).Info("user signed up")
	return &AuthResult{Token: token, User: u}, nil
}

// Login checks credentials. Unknown emails and wrong passwords fail alike.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

// CreateUserRole sets a user's role, inserting the row if needed.
func (s *UserService) CreateUserRole(ctx context.Context, p Principal, userID string, role models.Role) error {
	if err := s.identity.requireAdmin(ctx, s.store, p); err != nil {
		return err
	}
	return s.setRole(ctx, userID, role, true)
}

// UpdateUserRole changes an existing role row.
func (s *UserService) UpdateUserRole(ctx context.Context, p Principal, userID string, role models.Role) error {
	if err := s.identity.requireAdmin(ctx, s.store, p); err != nil {
		return err
	}
	return s.setRole(ctx, userID, role, false)
}

func (s *UserService) setRole(ctx context.Context, userID string, role models.Role, upsert bool) error {
	if !role.Valid() {
		return invalid("unknown role %q", role)
	}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return notFound(err, "user")
		}
		existing, err := tx.GetUserRole(ctx, userID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			if !upsert {
				return fmt.Errorf("%w: user has no role", ErrNotFound)
			}
			existing = &models.UserRole{UserID: userID}
		case err != nil:
			return err
		}
		existing.Role = role
		return tx.SaveUserRole(ctx, existing)
	})
	if err != nil {
		return err
	}
	s.identity.remember(ctx, userID, role)
	logrus.WithFields(logrus.Fields{"user_id": userID, "role": role}).Info("user role set")
	return nil
}

// GrantAdmin promotes the user with the given email. It is an operator
// action with no principal.
func (s *UserService) GrantAdmin(ctx context.Context, email string) (*models.User, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, notFound(err, "user")
	}
	if err := s.setRole(ctx, u.ID, models.RoleAdmin, true); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns every user with role and driver for administrators and
// an empty list for anyone else.
func (s *UserService) ListUsers(ctx context.Context, p Principal) ([]UserSummary, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	admin, err := s.identity.isAdmin(ctx, s.store, p)
	if err != nil {
		return nil, err
	}
	if !admin {
		return []UserSummary{}, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := s.store.ListUserRoles(ctx)
	if err != nil {
		return nil, err
	}
	drivers, err := s.store.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}
	roleByUser := make(map[string]models.Role, len(roles))
	for _, r := range roles {
		roleByUser[r.UserID] = r.Role
	}
	driverByUser := make(map[string]models.Driver, len(drivers))
	for _, d := range drivers {
		if prev, ok := driverByUser[d.UserID]; ok && prev.IsActive {
			continue
		}
		driverByUser[d.UserID] = d
	}

	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		sum := UserSummary{User: u}
		if role, ok := roleByUser[u.ID]; ok {
			role := role
			sum.Role = &role
		}
		if d, ok := driverByUser[u.ID]; ok {
			d := d
			sum.Driver = &d
		}
		out = append(out, sum)
	}
	return out, nil
}
