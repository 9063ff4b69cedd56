package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("INCENTIVA_TEST_VALUE", "from-env")
	assert.Equal(t, "from-env", getEnvOrDefault("INCENTIVA_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", getEnvOrDefault("INCENTIVA_TEST_UNSET", "fallback"))
}

func TestGetEnvIntOrDefault(t *testing.T) {
	t.Setenv("INCENTIVA_TEST_INT", "42")
	assert.Equal(t, 42, getEnvIntOrDefault("INCENTIVA_TEST_INT", 7))

	t.Setenv("INCENTIVA_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvIntOrDefault("INCENTIVA_TEST_INT", 7))

	assert.Equal(t, 7, getEnvIntOrDefault("INCENTIVA_TEST_INT_UNSET", 7))
}
