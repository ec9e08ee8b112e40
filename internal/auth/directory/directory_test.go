package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "canvass/pkg/domain-errors"
)

func TestAddOperatorValidation(t *testing.T) {
	d := &Directory{}
	_, err := d.AddOperator(context.Background(), "  ", "pw")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = d.AddOperator(context.Background(), "a@b.c", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestSignOutWithoutSession(t *testing.T) {
	assert.NoError(t, (&Directory{}).SignOut(context.Background(), nil))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "field@example.org", normalizeEmail("  Field@Example.ORG "))
}
