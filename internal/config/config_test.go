package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pype/internal/config"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		wantErr bool
		check   func(t *testing.T, cfg config.Config)
	}{
		"empty document keeps defaults": {
			input: "",
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, config.Default(), cfg)
				assert.True(t, cfg.ExitsOnError())
			},
		},
		"every key": {
			input: "log_level: debug\nno_log: true\nno_auto: true\nexit_on_error: false\ndot: out.dot\nmeasure: true\ncheck_workers: 3\n",
			check: func(t *testing.T, cfg config.Config) {
				assert.True(t, cfg.NoLog)
				assert.True(t, cfg.NoAuto)
				assert.False(t, cfg.ExitsOnError())
				assert.Equal(t, "out.dot", cfg.Dot)
				assert.True(t, cfg.Measure)
				assert.Equal(t, 3, cfg.CheckWorkers)
				level, err := cfg.Level()
				require.NoError(t, err)
				assert.Equal(t, slog.LevelDebug, level)
			},
		},
		"unknown key": {
			input:   "no_such_key: 1\n",
			wantErr: true,
		},
		"bad level": {
			input:   "log_level: loud\n",
			wantErr: true,
		},
		"negative workers": {
			input:   "check_workers: -1\n",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg, err := config.Parse(strings.NewReader(tc.input))
			if tc.wantErr {
				require.ErrorIs(t, err, config.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pype.yaml")
	require.NoError(t, os.WriteFile(path, []byte("no_auto: true\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.NoAuto)

	t.Setenv(config.EnvPath, path)
	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.True(t, cfg.NoAuto)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
