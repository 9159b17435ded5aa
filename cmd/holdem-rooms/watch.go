package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/lox/holdem-rooms/internal/display"
	"github.com/lox/holdem-rooms/internal/server"
)

// WatchCmd follows a room's websocket feed.
type WatchCmd struct {
	Room    string `arg:"" help:"Room id to watch"`
	Server  string `default:"http://localhost:8080" help:"Server base URL"`
	NoColor bool   `help:"Disable colored output"`
}

func (c *WatchCmd) Run() error {
	display.SetColor(!c.NoColor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	endpoint, err := roomSocketURL(c.Server, c.Room)
	if err != nil {
		return err
	}
	return watch(ctx, endpoint, os.Stdout)
}

// roomSocketURL maps an http(s) base URL to the room's ws(s) endpoint.
func roomSocketURL(base, room string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.JoinPath(server.APIPrefix, "rooms", room, "ws").String(), nil
}

// watch prints every event received on endpoint until ctx is done or the
// server closes the connection.
func watch(ctx context.Context, endpoint string, w io.Writer) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connect %s: %s", endpoint, resp.Status)
		}
		return fmt.Errorf("connect %s: %w", endpoint, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		line, err := display.Event(data)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
}
