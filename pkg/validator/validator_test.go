package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planInput struct {
	Name string `json:"name" validate:"required"`
	Tier string `json:"tier" validate:"required,plan_tier"`
	Slug string `json:"slug" validate:"omitempty,slug"`
	Role string `json:"role" validate:"omitempty,role"`
}

func newValidate(t *testing.T) *validator.Validate {
	v := validator.New()
	require.NoError(t, Register(v))
	return v
}

func TestCustomTags(t *testing.T) {
	v := newValidate(t)

	assert.NoError(t, v.Struct(planInput{Name: "Pro", Tier: "professional", Slug: "glow-spa", Role: "staff"}))

	err := v.Struct(planInput{Name: "Pro", Tier: "gold", Slug: "Glow Spa", Role: "owner"})
	require.Error(t, err)

	fields := Describe(err)
	require.Len(t, fields, 3)
	assert.Equal(t, "tier", fields[0].Field)
	assert.Equal(t, "slug", fields[1].Field)
	assert.Equal(t, "role", fields[2].Field)
}

func TestIsSlug(t *testing.T) {
	tests := map[string]bool{
		"glow-spa":   true,
		"spa2":       true,
		"ab":         false,
		"-glow":      false,
		"glow--spa":  false,
		"Glow":       false,
		"glow_spa":   false,
		"clinic-123": true,
	}
	for slug, want := range tests {
		assert.Equal(t, want, IsSlug(slug), slug)
	}
}

func TestDescribeIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Describe(assert.AnError))
}
