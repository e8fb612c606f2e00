// config/validate_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAirports(t *testing.T) {
	valid, invalid := ParseAirports("kmco, KJFK,,xx,TOOLONG,klax")
	assert.Equal(t, []string{"KMCO", "KJFK", "KLAX"}, valid)
	assert.Equal(t, []string{"XX", "TOOLONG"}, invalid)

	valid, invalid = ParseAirports(",,")
	assert.Empty(t, valid)
	assert.Empty(t, invalid)
}

func TestParseDateArg(t *testing.T) {
	arg, err := ParseDateArg("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), arg.Day)
	assert.Nil(t, arg.Instant)

	arg, err = ParseDateArg("2024-01-15 10:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), arg.Day)
	require.NotNil(t, arg.Instant)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), *arg.Instant)

	arg, err = ParseDateArg("2024-01-15T10:30:00")
	require.NoError(t, err)
	require.NotNil(t, arg.Instant)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), *arg.Instant)

	_, err = ParseDateArg("15/01/2024")
	require.ErrorIs(t, err, ErrValidation)

	_, err = ParseDateArg("2024-13-45")
	require.ErrorIs(t, err, ErrValidation)
}

func TestValidateRange(t *testing.T) {
	early, err := ParseDateArg("2024-01-01")
	require.NoError(t, err)
	late, err := ParseDateArg("2024-01-02")
	require.NoError(t, err)

	assert.NoError(t, ValidateRange(early, late))
	assert.NoError(t, ValidateRange(early, early))
	assert.ErrorIs(t, ValidateRange(late, early), ErrValidation)

	// Same day, ordered by instant when both carry one.
	morning, err := ParseDateArg("2024-01-01 08:00:00")
	require.NoError(t, err)
	evening, err := ParseDateArg("2024-01-01 20:00:00")
	require.NoError(t, err)

	assert.NoError(t, ValidateRange(morning, evening))
	assert.ErrorIs(t, ValidateRange(evening, morning), ErrValidation)
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	_, err := LoadCredentials("", "")
	require.ErrorIs(t, err, ErrValidation)

	creds, err := LoadCredentials("flag-id", "flag-secret")
	require.NoError(t, err)
	assert.Equal(t, "flag-id", creds.ClientID)

	t.Setenv(EnvClientID, "env-id")
	t.Setenv(EnvClientSecret, "env-secret")

	creds, err = LoadCredentials("", "")
	require.NoError(t, err)
	assert.Equal(t, "env-id", creds.ClientID)
	assert.Equal(t, "env-secret", creds.ClientSecret)

	// Flags win over the environment.
	creds, err = LoadCredentials("flag-id", "")
	require.NoError(t, err)
	assert.Equal(t, "flag-id", creds.ClientID)
	assert.Equal(t, "env-secret", creds.ClientSecret)
}
