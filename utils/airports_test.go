// utils/airports_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAirportCode(t *testing.T) {
	assert.Equal(t, "KMCO", NormalizeAirportCode(" kmco "))
	assert.Equal(t, "EGLL", NormalizeAirportCode("egll"))
	assert.Equal(t, "", NormalizeAirportCode("  "))
}

func TestIsICAOCode(t *testing.T) {
	assert.True(t, IsICAOCode("KMCO"))
	assert.True(t, IsICAOCode("EGLL"))
	assert.False(t, IsICAOCode("JFK"))
	assert.False(t, IsICAOCode("TOOLONG"))
	assert.False(t, IsICAOCode("KM-O"))
	assert.False(t, IsICAOCode(""))
}
