package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TELEMED_TEST_STRING", "value")
	t.Setenv("TELEMED_TEST_INT", "42")
	t.Setenv("TELEMED_TEST_BAD_INT", "forty-two")
	t.Setenv("TELEMED_TEST_INT64", "5000")
	t.Setenv("TELEMED_TEST_BOOL", "true")
	t.Setenv("TELEMED_TEST_SECONDS", "15")

	assert.Equal(t, "value", GetEnvString("TELEMED_TEST_STRING", "default"))
	assert.Equal(t, "default", GetEnvString("TELEMED_TEST_UNSET", "default"))
	assert.Equal(t, 42, GetEnvInt("TELEMED_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("TELEMED_TEST_BAD_INT", 1))
	assert.Equal(t, int64(5000), GetEnvInt64("TELEMED_TEST_INT64", 1))
	assert.True(t, GetEnvBool("TELEMED_TEST_BOOL", false))
	assert.Equal(t, 15*time.Second, GetEnvSeconds("TELEMED_TEST_SECONDS", 1))
}
