package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUsesDefaultsWithoutFileOrEnv(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	cfg, err := Load(LoadOptions{Environ: map[string]string{"ASSETFORGE_HOME": home}})
	require.NoError(t, err)

	want := Defaults()
	want.Home = home
	assert.Equal(t, want, cfg)
	assert.Equal(t, filepath.Join(home, "session.toml"), cfg.SessionFile())
	assert.Equal(t, filepath.Join(home, "secrets"), cfg.SecretsDir())
}

func TestLoadReadsConfigFileAndEnvOverridesIt(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte(`
api_url = "https://api.assetforge.example"
login_url = "https://auth.example.com/"
debounce = "150ms"
log_level = "debug"
`), 0o600))

	cfg, err := Load(LoadOptions{Environ: map[string]string{
		"ASSETFORGE_HOME":            home,
		"ASSETFORGE_DEBOUNCE":        "500ms",
		"ASSETFORGE_REQUEST_TIMEOUT": "5s",
	}})
	require.NoError(t, err)

	assert.Equal(t, "https://api.assetforge.example", cfg.APIURL)
	assert.Equal(t, "https://auth.example.com/", cfg.LoginURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, filepath.Join(home, "config.toml"), cfg.ConfigFile())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "api scheme", env: map[string]string{"ASSETFORGE_API_URL": "ftp://x"}, wantErr: "api url must use http or https"},
		{name: "login host", env: map[string]string{"ASSETFORGE_LOGIN_URL": "https://"}, wantErr: "login url host is required"},
		{name: "log level", env: map[string]string{"ASSETFORGE_LOG_LEVEL": "loud"}, wantErr: "unsupported log level"},
		{name: "secret backend", env: map[string]string{"ASSETFORGE_SECRET_BACKEND": "vault"}, wantErr: "unsupported secret backend"},
		{name: "duration", env: map[string]string{"ASSETFORGE_DEBOUNCE": "soon"}, wantErr: "parse env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.env["ASSETFORGE_HOME"] = t.TempDir()
			_, err := Load(LoadOptions{Environ: tt.env})
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadReportsMalformedConfigFile(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte("api_url = ["), 0o600))

	_, err := Load(LoadOptions{Environ: map[string]string{"ASSETFORGE_HOME": home}})
	require.ErrorContains(t, err, "read config file")
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	level, err := ParseLogLevel("INFO")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	level, err = ParseLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
