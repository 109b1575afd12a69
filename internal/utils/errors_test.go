package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError("sales_q3", "revenue", 4, 10)
	assert.Equal(t, "insufficient data in sales_q3.revenue: 4 non-null samples, need 10", err.Error())

	var typed *InsufficientDataError
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, "revenue", typed.Column)
	assert.Equal(t, 4, typed.Samples)
}

func TestUnknownRoleError(t *testing.T) {
	err := NewUnknownRoleError("ceo_of_everything")
	assert.Contains(t, err.Error(), `"ceo_of_everything"`)

	var typed *UnknownRoleError
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, "ceo_of_everything", typed.RoleID)
}

func TestInvalidTableError(t *testing.T) {
	err := NewInvalidTableError("t1", "table has no rows")
	assert.Equal(t, `invalid table "t1": table has no rows`, err.Error())

	var typed *InvalidTableError
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, "t1", typed.TableID)
}

func TestErrorsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("resolving role: %w", NewUnknownRoleError("ghost"))

	var typed *UnknownRoleError
	require.True(t, errors.As(wrapped, &typed))
	assert.Equal(t, "ghost", typed.RoleID)
}
