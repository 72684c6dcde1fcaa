package validators

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/internal/users"
	pkgerrors "github.com/orchardworks/fruitstand-backend/pkg/errors"
)

// UUIDParam parses a chi URL parameter as a UUID.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// UserIDParam parses a user id parameter. The literal "guest" maps to the
// guest sentinel so anonymous clients never need to know its UUID.
func UserIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if strings.EqualFold(raw, "guest") {
		return users.GuestUserID, nil
	}
	return UUIDParam(r, name)
}
