package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATA_FILE", "PROVIDER", "MODEL", "BASE_URL", "COMPARE_CONCURRENT", "COMPARE_STRUCTURED", "SECRET_SERVICE", "LOG_LEVEL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	conf, err := New[Config]("")
	require.NoError(t, err)
	assert.Equal(t, "8080", conf.Port)
	assert.Equal(t, "saved_people.json", conf.DataFile)
	assert.Equal(t, "openai", conf.Provider)
	assert.Empty(t, conf.Model)
	assert.False(t, conf.Concurrent)
	assert.Equal(t, "strengths-compare", conf.SecretService)
	assert.Equal(t, "info", conf.LogLevel)
}

func TestNew_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PROVIDER", "gemini")
	t.Setenv("COMPARE_CONCURRENT", "true")
	t.Setenv("DATA_FILE", "/data/people.json")

	conf, err := New[Config]("")
	require.NoError(t, err)
	assert.Equal(t, "9000", conf.Port)
	assert.Equal(t, "gemini", conf.Provider)
	assert.True(t, conf.Concurrent)
	assert.Equal(t, "/data/people.json", conf.DataFile)
}

func TestNew_BadValue(t *testing.T) {
	t.Setenv("COMPARE_CONCURRENT", "maybe")
	_, err := New[Config]("")
	assert.Error(t, err)
}
