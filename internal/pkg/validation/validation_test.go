package validation

import (
	"testing"
	"time"

	"coinfolio-backend/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidExternalRef(t *testing.T) {
	assert.True(t, IsValidExternalRef("R1"))
	assert.True(t, IsValidExternalRef("R20240501"))
	assert.False(t, IsValidExternalRef("r1"))
	assert.False(t, IsValidExternalRef("R"))
	assert.False(t, IsValidExternalRef("R12a"))
}

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("generatedAt", "2024-05-01 09:30:15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC), got)

	got, err = ParseDateTime("generatedAt", " 2024-05-01 09:30 ", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "2024-05-01", "2024-05-01T09:30:00Z", "01/05/2024 09:30"} {
		_, err := ParseDateTime("generatedAt", bad, time.UTC)
		assert.True(t, apperrors.IsValidation(err), bad)
	}
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("amount", "0.5")
	require.NoError(t, err)
	assert.Equal(t, "0.5", d.String())

	_, err = ParseAmount("amount", "half")
	assert.True(t, apperrors.IsValidation(err))
}
