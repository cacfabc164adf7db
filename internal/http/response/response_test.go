package response

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/accountable/internal/models"
)

func TestValidationError(t *testing.T) {
	type signup struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
		Tier     string `validate:"omitempty,oneof=BASIC PRO"`
		Calls    int    `validate:"max=500"`
	}

	tests := []struct {
		name string
		in   signup
		want string
	}{
		{
			name: "required",
			in:   signup{Password: "secret1"},
			want: "field Email is a required field",
		},
		{
			name: "email",
			in:   signup{Email: "nope", Password: "secret1"},
			want: "field Email must be a valid email",
		},
		{
			name: "min",
			in:   signup{Email: "ann@example.com", Password: "123"},
			want: "field Password must be at least 6",
		},
		{
			name: "oneof and max",
			in:   signup{Email: "ann@example.com", Password: "secret1", Tier: "GOLD", Calls: 501},
			want: "field Tier must be one of [BASIC PRO], field Calls must be at most 500",
		},
	}

	v := validator.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			require.Error(t, err)
			resp := ValidationError(err.(validator.ValidationErrors))
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.want, resp.Error)
		})
	}
}

func TestStatusOKWithData(t *testing.T) {
	resp := StatusOKWithData(map[string]int{"n": 1})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, map[string]int{"n": 1}, resp.Data)
}

func TestInvalid(t *testing.T) {
	err := fmt.Errorf("tasks.Create: %w", fmt.Errorf("%w: end_at must be after scheduled_at", models.ErrValidation))
	assert.Equal(t, "end_at must be after scheduled_at", Invalid(err).Error)
	assert.Equal(t, "validation error", Invalid(models.ErrValidation).Error)
}
