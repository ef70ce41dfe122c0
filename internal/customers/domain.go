package customers

import (
	"errors"
	"strings"
	"time"
)

// IdentificationKind distinguishes Venezuelan personal and fiscal IDs.
type IdentificationKind string

const (
	// KindCedula is a personal identity card number.
	KindCedula IdentificationKind = "cedula"
	// KindRIF is a fiscal registry number, prefixed J, G, E or P.
	KindRIF IdentificationKind = "rif"
)

// Customer is a buyer known by name and optionally by identification.
type Customer struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Identification *string   `json:"identification,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Email          *string   `json:"email,omitempty"`
	Address        *string   `json:"address,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// UpsertRequest carries customer create and update fields.
type UpsertRequest struct {
	Name           string  `json:"name" validate:"required,max=120"`
	Identification *string `json:"identification,omitempty" validate:"omitempty,max=20"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Address        *string `json:"address,omitempty" validate:"omitempty,max=250"`
}

// ErrNotFound indicates the customer does not exist.
var ErrNotFound = errors.New("customers: not found")

// ClassifyIdentification reports whether an identification string is a
// cédula or a RIF. RIF numbers start with J, G, E or P.
func ClassifyIdentification(id string) IdentificationKind {
	id = strings.TrimSpace(strings.ToUpper(id))
	if id == "" {
		return KindCedula
	}
	switch id[0] {
	case 'J', 'G', 'E', 'P':
		return KindRIF
	default:
		return KindCedula
	}
}
