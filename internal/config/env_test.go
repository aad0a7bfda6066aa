package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("INVADERS_TEST_STR", "value")
	assert.Equal(t, "value", GetEnv("INVADERS_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnv("INVADERS_TEST_UNSET", "fallback"))

	t.Setenv("INVADERS_TEST_EMPTY", "")
	assert.Equal(t, "", GetEnv("INVADERS_TEST_EMPTY", "fallback"))
}

func TestTypedGetters(t *testing.T) {
	t.Setenv("INVADERS_TEST_INT", " 42 ")
	t.Setenv("INVADERS_TEST_BAD_INT", "forty")
	t.Setenv("INVADERS_TEST_FLOAT", "0.25")
	t.Setenv("INVADERS_TEST_DUR", "250ms")

	assert.Equal(t, 42, GetEnvInt("INVADERS_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("INVADERS_TEST_BAD_INT", 1))
	assert.Equal(t, 7, GetEnvInt("INVADERS_TEST_UNSET", 7))
	assert.InDelta(t, 0.25, GetEnvFloat("INVADERS_TEST_FLOAT", 1), 1e-9)
	assert.Equal(t, 250*time.Millisecond, GetEnvDuration("INVADERS_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("INVADERS_TEST_INT", time.Second))
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"on", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"off", true, false},
		{"false", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("INVADERS_TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, GetEnvBool("INVADERS_TEST_BOOL", tt.fallback))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("INVADERS_DOTENV=loaded\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv("INVADERS_DOTENV", "")
	os.Unsetenv("INVADERS_DOTENV")
	LoadDotEnv()
	assert.Equal(t, "loaded", os.Getenv("INVADERS_DOTENV"))
}
