package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialStream(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/simulations/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	return conn
}

func TestSimulationStream(t *testing.T) {
	db := newTestDB(t)
	conn := dialStream(t, newTestServer(t, db))

	if err := conn.WriteJSON(map[string]interface{}{
		"hands":  120_000,
		"system": "griffin",
		"seed":   5,
	}); err != nil {
		t.Fatal(err)
	}

	var progress []StreamFrame
	var result *SimulationResponse
	for result == nil {
		var frame StreamFrame
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		switch frame.Type {
		case FrameProgress:
			progress = append(progress, frame)
		case FrameResult:
			result = frame.Result
		default:
			t.Fatalf("unexpected frame %+v", frame)
		}
	}

	// Two shards of 60,000 hands report at 50,000 and 60,000.
	if len(progress) != 4 {
		t.Errorf("got %d progress frames, expected 4", len(progress))
	}
	var done int64
	for _, f := range progress {
		if f.Progress.Total != 120_000 {
			t.Errorf("progress total %d", f.Progress.Total)
		}
		done = max(done, f.Progress.Done)
	}
	if done != 120_000 {
		t.Errorf("progress reached %d, expected 120000", done)
	}
	if result.Played != 120_000 || result.RunID == "" {
		t.Errorf("unexpected result played=%d run_id=%q", result.Played, result.RunID)
	}
}

func TestSimulationStreamRejectsInvalidRequest(t *testing.T) {
	conn := dialStream(t, newTestServer(t, nil))

	if err := conn.WriteJSON(map[string]interface{}{"hands": 0, "system": "griffin"}); err != nil {
		t.Fatal(err)
	}

	var frame StreamFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Type != FrameError || frame.Error == nil || frame.Error.Type != ErrTypeValidation {
		t.Errorf("expected a validation error frame, got %+v", frame)
	}
}
