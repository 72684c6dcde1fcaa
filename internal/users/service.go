package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/pkg/db"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/orchardworks/fruitstand-backend/pkg/errors"
	"gorm.io/gorm"
)

// GuestUserID is the reserved sentinel identity for anonymous shoppers.
// It is seeded by migration and re-checked at startup via EnsureGuest.
var GuestUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// IsGuestID reports whether the given id addresses the guest sentinel.
func IsGuestID(id uuid.UUID) bool {
	return id == GuestUserID
}

var phoneRe = regexp.MustCompile(`^\d{10}$`)

// CreateUserInput carries the caller-supplied contact details.
type CreateUserInput struct {
	Name        string
	Email       string
	PhoneNumber string
}

// GuestInfo is the contact payload required for guest checkout.
type GuestInfo struct {
	Name        string
	Email       string
	PhoneNumber string
}

// Service owns user lifecycle and guest resolution.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ResolveGuest(ctx context.Context, info GuestInfo) (*models.User, error)
	Bootstrap(ctx context.Context) error
}

type service struct {
	repo Repository
}

// NewService builds the users service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if err := validateContact(input.Name, input.Email, input.PhoneNumber); err != nil {
		return nil, err
	}

	phone := input.PhoneNumber
	user := &models.User{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		PhoneNumber: &phone,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user with these details already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return created, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (s *service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return users, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if IsGuestID(id) {
		return pkgerrors.New(pkgerrors.CodeValidation, "guest user cannot be deleted")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return nil
}

// ResolveGuest converts guest contact info into a durable user row using a
// best-effort create with fallback to a natural-key read on unique conflict.
// The narrow race left open here surfaces as INTERNAL_ERROR; callers retry.
func (s *service) ResolveGuest(ctx context.Context, info GuestInfo) (*models.User, error) {
	if err := validateContact(info.Name, info.Email, info.PhoneNumber); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(info.Email))
	phone := info.PhoneNumber

	user := &models.User{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(info.Name),
		Email:       email,
		PhoneNumber: &phone,
	}
	created, err := s.repo.Create(ctx, user)
	if err == nil {
		return created, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create guest user")
	}

	existing, findErr := s.repo.FindByEmailAndPhone(ctx, email, phone)
	if findErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "could not create or find guest user")
	}
	return existing, nil
}

// Bootstrap makes sure the guest sentinel row exists.
func (s *service) Bootstrap(ctx context.Context) error {
	if err := s.repo.EnsureGuest(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed guest user")
	}
	return nil
}

func validateContact(name, email, phone string) error {
	details := map[string]string{}
	if strings.TrimSpace(name) == "" {
		details["name"] = "is required"
	}
	if strings.TrimSpace(email) == "" {
		details["email"] = "is required"
	}
	if !phoneRe.MatchString(phone) {
		details["phone_number"] = "must be exactly 10 digits"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}
