package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kretovv/talkroom/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMustLoadPath(t *testing.T) {
	path := writeConfig(t, `
env: "prod"
http:
  address: ":8443"
presence:
  grace_window: 20s
peer:
  host: "peer.example.com"
webrtc:
  stun_servers:
    - "stun:stun.example.com:3478"
  turn_server: "turn:turn.example.com:3478"
  turn_username: "user"
  turn_password: "pass"
`)

	cfg := config.MustLoadPath(path)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":8443", cfg.HTTP.Address)
	assert.Equal(t, 20*time.Second, cfg.Presence.GraceWindow)
	assert.Equal(t, "peer.example.com", cfg.Peer.Host)
	assert.Equal(t, []string{"stun:stun.example.com:3478"}, cfg.WebRTC.STUNServers)
	assert.Equal(t, "turn:turn.example.com:3478", cfg.WebRTC.TURNServer)
}

func TestMustLoadPathDefaults(t *testing.T) {
	path := writeConfig(t, `
env: "local"
`)

	cfg := config.MustLoadPath(path)

	assert.Equal(t, ":3000", cfg.HTTP.Address)
	assert.Equal(t, 15*time.Second, cfg.Presence.GraceWindow)
	assert.NotEmpty(t, cfg.WebRTC.STUNServers)
}

func TestMustLoadPathMissingFile(t *testing.T) {
	assert.Panics(t, func() {
		config.MustLoadPath(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}
