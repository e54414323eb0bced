package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name" validate:"required,max=10"`
	Email string  `json:"email" validate:"omitempty,email"`
	Price float64 `json:"price" validate:"gt=0"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(sample{Name: "An", Price: 1}))

	err := Struct(sample{Email: "nope", Price: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "price must be greater than 0")
}
