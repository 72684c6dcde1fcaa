package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/orchardworks/fruitstand-backend/pkg/errors"
	"gorm.io/gorm"
)

func TestCreateValidatesContact(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubUserRepo{})

	_, err := svc.Create(context.Background(), CreateUserInput{Name: "", Email: "", PhoneNumber: "123"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	for _, field := range []string{"name", "email", "phone_number"} {
		if _, found := details[field]; !found {
			t.Fatalf("expected detail for %s", field)
		}
	}
}

func TestCreateNormalizesEmail(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{}
	svc := newTestService(t, repo)

	created, err := svc.Create(context.Background(), CreateUserInput{
		Name:        " Alice ",
		Email:       " Alice@Example.COM ",
		PhoneNumber: "5550000001",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "alice@example.com" || created.Name != "Alice" {
		t.Fatalf("expected normalized contact, got %q %q", created.Name, created.Email)
	}
}

func TestCreateMapsUniqueViolation(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{createErr: errors.New("UNIQUE constraint failed: users.email")}
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreateUserInput{
		Name:        "Bob",
		Email:       "bob@example.com",
		PhoneNumber: "5550000002",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestResolveGuestCreatesUser(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{}
	svc := newTestService(t, repo)

	user, err := svc.ResolveGuest(context.Background(), GuestInfo{
		Name:        "Walk In",
		Email:       "walkin@example.com",
		PhoneNumber: "5550000003",
	})
	if err != nil {
		t.Fatalf("resolve guest: %v", err)
	}
	if user.Email != "walkin@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestResolveGuestFallsBackToExisting(t *testing.T) {
	t.Parallel()

	phone := "5550000004"
	existing := &models.User{ID: uuid.New(), Name: "Repeat", Email: "repeat@example.com", PhoneNumber: &phone}
	repo := &stubUserRepo{
		createErr: errors.New("UNIQUE constraint failed: users.email"),
		found:     existing,
	}
	svc := newTestService(t, repo)

	user, err := svc.ResolveGuest(context.Background(), GuestInfo{
		Name:        "Repeat",
		Email:       "repeat@example.com",
		PhoneNumber: phone,
	})
	if err != nil {
		t.Fatalf("resolve guest: %v", err)
	}
	if user.ID != existing.ID {
		t.Fatalf("expected existing user, got %s", user.ID)
	}
}

func TestResolveGuestRaceSurfacesInternal(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{
		createErr: errors.New("UNIQUE constraint failed: users.email"),
		findErr:   gorm.ErrRecordNotFound,
	}
	svc := newTestService(t, repo)

	_, err := svc.ResolveGuest(context.Background(), GuestInfo{
		Name:        "Ghost",
		Email:       "ghost@example.com",
		PhoneNumber: "5550000005",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestDeleteBlocksGuestSentinel(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubUserRepo{})

	err := svc.Delete(context.Background(), GuestUserID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubUserRepo{findErr: gorm.ErrRecordNotFound})

	_, err := svc.GetByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type stubUserRepo struct {
	createErr error
	findErr   error
	found     *models.User
}

func (s *stubUserRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.found != nil {
		return s.found, nil
	}
	return &models.User{ID: id}, nil
}

func (s *stubUserRepo) FindByEmailAndPhone(ctx context.Context, email, phone string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.found != nil {
		return s.found, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) List(ctx context.Context) ([]models.User, error) {
	return nil, nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubUserRepo) EnsureGuest(ctx context.Context) error {
	return nil
}
