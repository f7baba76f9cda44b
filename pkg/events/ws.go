package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// writeTimeout bounds a single event write; a subscriber that can't keep up
// is disconnected rather than stalling the dispatch loop indefinitely.
const writeTimeout = 5 * time.Second

// ServeSubscription streams projectID's event stream over an already-upgraded
// WebSocket connection until the client disconnects or ctx is cancelled.
// pkg/api owns the upgrade (it knows the route's auth and CORS policy); this
// function only owns what flows over the socket once it's open.
func ServeSubscription(ctx context.Context, conn *websocket.Conn, bus *Bus, projectID string) {
	sub := bus.Subscribe(projectID)
	defer sub.Close()

	// A read loop that does nothing but detect client-initiated close is
	// still required: net/http's connection lifecycle only notices the peer
	// went away once something tries to read.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case ev, ok := <-sub.Events:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, ev)
			cancel()
			if err != nil {
				slog.Warn("events: dropping subscriber after write failure", "project_id", projectID, "error", err)
				return
			}
		}
	}
}

// DecodeClientMessage decodes a client-sent frame as a generic JSON object.
// Nothing in this repository calls it: ServeSubscription's read loop
// discards client frames without decoding them.
func DecodeClientMessage(data []byte) (map[string]any, error) {
	var msg map[string]any
	err := json.Unmarshal(data, &msg)
	return msg, err
}
