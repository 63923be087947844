package config_test

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nicolagi/annodiff/internal/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string, perm os.FileMode) string {
	t.Helper()
	base := t.TempDir()
	require.Nil(t, os.WriteFile(filepath.Join(base, "config"), []byte(contents), perm))
	return base
}

func TestLoad(t *testing.T) {
	t.Run("missing keys take default values", func(t *testing.T) {
		base := writeConfig(t, "# nothing but a comment\n\n", 0600)
		c, err := config.Load(base)
		require.Nil(t, err)
		want := config.Default()
		want.ListenAddr = "127.0.0.1:3000"
		if diff := cmp.Diff(want, c, cmpopts.IgnoreUnexported(config.C{})); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, base, c.Base())
	})
	t.Run("all keys are parsed", func(t *testing.T) {
		base := writeConfig(t, strings.Join([]string{
			"listen-net tcp4",
			"listen-addr 0.0.0.0:8080",
			"log-level debug",
			"log-format text",
			"max-input-bytes 2048",
			"diff-timeout 1s",
			"read-timeout 2s",
			"write-timeout\t3s",
			"shutdown-timeout 4s",
			"rate-limit 2.5",
			"rate-burst 10",
		}, "\n"), 0600)
		c, err := config.Load(base)
		require.Nil(t, err)
		want := &config.C{
			ListenNet:       "tcp4",
			ListenAddr:      "0.0.0.0:8080",
			LogLevel:        "debug",
			LogFormat:       "text",
			MaxInputBytes:   2048,
			DiffTimeout:     time.Second,
			ReadTimeout:     2 * time.Second,
			WriteTimeout:    3 * time.Second,
			ShutdownTimeout: 4 * time.Second,
			RateLimit:       2.5,
			RateBurst:       10,
		}
		if diff := cmp.Diff(want, c, cmpopts.IgnoreUnexported(config.C{})); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("unix sockets default to the name space directory", func(t *testing.T) {
		t.Setenv("NAMESPACE", "/tmp/ns.test")
		base := writeConfig(t, "listen-net unix\n", 0600)
		c, err := config.Load(base)
		require.Nil(t, err)
		assert.Equal(t, "/tmp/ns.test/annodiff", c.ListenAddr)
	})
	t.Run("readable by others is rejected", func(t *testing.T) {
		base := writeConfig(t, "", 0644)
		_, err := config.Load(base)
		assert.NotNil(t, err)
	})
	t.Run("missing file is an error", func(t *testing.T) {
		_, err := config.Load(t.TempDir())
		assert.True(t, os.IsNotExist(errors.Cause(err)), "%v", err)
	})
	for name, contents := range map[string]string{
		"unknown key":        "listen-port 80\n",
		"no separator":       "listen-net\n",
		"bad number":         "max-input-bytes lots\n",
		"bad duration":       "read-timeout forever\n",
		"bad network":        "listen-net udp\n",
		"bad level":          "log-level chatty\n",
		"bad format":         "log-format xml\n",
		"no input allowed":   "max-input-bytes 0\n",
		"negative rate":      "rate-limit -1\n",
		"empty bucket":       "rate-limit 1\nrate-burst 0\n",
		"negative duration":  "diff-timeout -1s\n",
		"negative shutdown":  "shutdown-timeout -3s\n",
		"bad float for rate": "rate-limit fast\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, contents, 0600))
			assert.NotNil(t, err)
		})
	}
}

func TestInitialize(t *testing.T) {
	t.Run("if config already exists, its contents untouched and error returned", func(t *testing.T) {
		base := t.TempDir()
		path := filepath.Join(base, "config")
		contents := make([]byte, 32)
		_, err := rand.Read(contents)
		require.Nil(t, err)
		require.Nil(t, os.WriteFile(path, contents, 0600))
		assert.NotNil(t, config.Initialize(base))
		got, err := os.ReadFile(path)
		require.Nil(t, err)
		if diff := cmp.Diff(contents, got); diff != "" {
			t.Errorf("config file has changed (-want +got):\n%s", diff)
		}
	})
	t.Run("creates working configuration", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "nested", "base")
		require.Nil(t, config.Initialize(base))
		c, err := config.Load(base)
		require.Nil(t, err)
		assert.Equal(t, "tcp", c.ListenNet)
		assert.True(t, strings.HasPrefix(c.ListenAddr, "127.0.0.1:"), c.ListenAddr)
		assert.Equal(t, config.Default().MaxInputBytes, c.MaxInputBytes)
	})
}
