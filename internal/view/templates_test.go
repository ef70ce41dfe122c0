package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abasto/abasto/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(shared.NewCSRFManager("test-secret"))
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}
