package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	ytsubs "github.com/xybydy/go-ytsubs"
)

// resetFlags restores the global flag state after a test.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		flagConfig, flagLogLevel, flagLogEncoding, flagLang = "", "", "", ""
		flagAddr, flagPort, flagMetrics = "", 0, false
		serveCmd.Flags().Lookup("metrics").Changed = false
		cfg, logger = ytsubs.Config{}, nil
	})
}

func TestLoadConfigFlagPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "ytsubs.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
port = 9000
default_lang = "de"
metrics = true
`), 0o600))

	tests := []struct {
		name    string
		cmd     *cobra.Command
		set     func()
		check   func(t *testing.T, c ytsubs.Config)
		wantErr string
	}{
		{
			name: "config file without flags",
			cmd:  serveCmd,
			set:  func() {},
			check: func(t *testing.T, c ytsubs.Config) {
				require.Equal(t, 9000, c.Port)
				require.Equal(t, "de", c.DefaultLang)
				require.True(t, c.Metrics)
				require.Equal(t, "localhost", c.BindAddr)
			},
		},
		{
			name: "serve flags override config file",
			cmd:  serveCmd,
			set: func() {
				flagAddr = "0.0.0.0"
				flagPort = 9100
				flagLang = "en"
				require.NoError(t, serveCmd.Flags().Set("metrics", "false"))
			},
			check: func(t *testing.T, c ytsubs.Config) {
				require.Equal(t, "0.0.0.0", c.BindAddr)
				require.Equal(t, 9100, c.Port)
				require.Equal(t, "en", c.DefaultLang)
				require.False(t, c.Metrics)
			},
		},
		{
			name: "serve flags are ignored by other commands",
			cmd:  textCmd,
			set: func() {
				flagPort = 9100
				flagLang = "en"
			},
			check: func(t *testing.T, c ytsubs.Config) {
				require.Equal(t, 9000, c.Port)
				require.Equal(t, "en", c.DefaultLang)
			},
		},
		{
			name:    "invalid flag value",
			cmd:     textCmd,
			set:     func() { flagLogEncoding = "xml" },
			wantErr: "invalid configuration",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resetFlags(t)
			flagConfig = configPath
			test.set()

			err := loadConfig(test.cmd, nil)
			if test.wantErr != "" {
				require.ErrorContains(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			test.check(t, cfg)
		})
	}
}

func TestCLIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "no transcript",
			err:  &ytsubs.FetchError{Kind: ytsubs.KindNoTranscript, VideoID: "ABC123", Lang: "en"},
			want: `Субтитри мовою "en" не знайдено`,
		},
		{
			name: "upstream details are shown",
			err:  &ytsubs.FetchError{Kind: ytsubs.KindUpstream, VideoID: "ABC123", Err: errors.New("boom")},
			want: "Помилка: boom",
		},
		{
			name: "other errors pass through",
			err:  errors.New("something else"),
			want: "something else",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.EqualError(t, cliError(test.err), test.want)
		})
	}
}
