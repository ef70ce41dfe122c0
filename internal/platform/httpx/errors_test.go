package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorValidationBecomes400(t *testing.T) {
	v := validator.New()
	err := v.Struct(struct {
		Name string `validate:"required"`
	}{})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	RespondError(rec, httptest.NewRequest("POST", "/clientes", nil), err)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "Validation failed", problem.Title)
	require.Equal(t, "/clientes", problem.Instance)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, httptest.NewRequest("GET", "/tasas", nil), errors.New("pq: connection reset"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "Internal error", problem.Title)
	require.NotContains(t, problem.Detail, "connection reset")
}
