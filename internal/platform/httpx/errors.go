package httpx

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// RespondError is the fallback mapping for errors no handler-specific
// case claimed. Validation failures become 400; everything else is an
// opaque 500 so internals never leak into responses.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		Problem(w, r, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	Problem(w, r, http.StatusInternalServerError, "Internal error", "unexpected error")
}
