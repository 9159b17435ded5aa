package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-rooms/internal/config"
	"github.com/lox/holdem-rooms/internal/display"
	"github.com/lox/holdem-rooms/internal/hub"
	"github.com/lox/holdem-rooms/internal/table"
)

func init() {
	display.SetColor(false)
}

func TestEvalPrintsCategory(t *testing.T) {
	var buf bytes.Buffer
	cmd := EvalCmd{Cards: []string{"As", "Ks", "Qs", "Js", "10s", "2d", "3c"}}
	require.NoError(t, cmd.run(&buf))
	assert.Equal(t, "A♠ K♠ Q♠ J♠ 10♠ 2♦ 3♣  Royal Flush (rank 10)\n", buf.String())
}

func TestEvalJSON(t *testing.T) {
	var buf bytes.Buffer
	cmd := EvalCmd{Cards: []string{"7c", "7d", "9h", "9s", "2c"}, JSON: true}
	require.NoError(t, cmd.run(&buf))
	assert.JSONEq(t, `{"cards":["7c","7d","9h","9s","2c"],"rank":3,"hand":"two_pair"}`, buf.String())
}

func TestEvalRejectsBadInput(t *testing.T) {
	tests := map[string][]string{
		"unparseable": {"As", "Zz"},
		"duplicate":   {"As", "Kd", "As"},
		"too many":    {"2c", "3c", "4c", "5c", "6c", "7c", "8c", "9c"},
	}
	for name, cards := range tests {
		t.Run(name, func(t *testing.T) {
			cmd := EvalCmd{Cards: cards}
			assert.Error(t, cmd.run(io.Discard))
		})
	}
}

func TestRoomSocketURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/api/v1/rooms/r1/ws"},
		{"https://poker.example.com/", "wss://poker.example.com/api/v1/rooms/r1/ws"},
		{"ws://127.0.0.1:9000", "ws://127.0.0.1:9000/api/v1/rooms/r1/ws"},
	}
	for _, tt := range tests {
		got, err := roomSocketURL(tt.base, "r1")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := roomSocketURL("ftp://example.com", "r1")
	assert.Error(t, err)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchPrintsEvents(t *testing.T) {
	h := hub.New(log.New(io.Discard))
	topic := table.Topic("r1")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeTopic(w, r, topic)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), &out)
	}()

	require.Eventually(t, func() bool { return h.Count(topic) == 1 }, time.Second, 10*time.Millisecond)
	h.Publish(topic, table.NewShowdownEvent(table.Seat{PlayerID: "p1", Name: "alice", Chips: 1010}, "flush"))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "alice wins with Flush, chips=1010")
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchEndsWhenServerCloses(t *testing.T) {
	h := hub.New(log.New(io.Discard))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeTopic(w, r, "room_r1")
	}))
	defer srv.Close()

	done := make(chan error, 1)
	go func() {
		done <- watch(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), io.Discard)
	}()

	require.Eventually(t, func() bool { return h.Count("room_r1") == 1 }, time.Second, 10*time.Millisecond)
	h.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvAddr, config.EnvLogLevel, config.EnvStorageDriver, config.EnvStorageDSN, config.EnvSeed,
	} {
		t.Setenv(key, "")
	}
}

func TestServeConfigPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "holdem-rooms.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
server {
  port      = 9000
  log_level = "warn"
}

table {
  starting_chips = 500
}
`), 0o644))
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("HOLDEM_LOG_LEVEL=debug\n"), 0o644))
	// godotenv never overrides a variable that is already set, even to "".
	require.NoError(t, os.Unsetenv(config.EnvLogLevel))

	seed := int64(7)
	cmd := ServeCmd{
		Config:  cfgPath,
		EnvFile: envPath,
		Addr:    "127.0.0.1:7000",
		Storage: "file",
		DSN:     filepath.Join(dir, "data"),
		Seed:    &seed,
	}
	cfg, err := cmd.loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.ListenAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, 500, cfg.Table.StartingChips)
	require.NotNil(t, cfg.Table.Seed)
	assert.Equal(t, int64(7), *cfg.Table.Seed)
}

func TestServeConfigInvalid(t *testing.T) {
	clearEnv(t)
	cmd := ServeCmd{
		Config:  filepath.Join(t.TempDir(), "missing.hcl"),
		EnvFile: filepath.Join(t.TempDir(), "missing.env"),
		Storage: "sqlite",
	}
	_, err := cmd.loadConfig()
	assert.ErrorContains(t, err, "requires a dsn")
}
