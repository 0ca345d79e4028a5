package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/anamarijapotokar/Baccarat/internal/sim"
	"github.com/anamarijapotokar/Baccarat/internal/store"
)

const (
	streamWriteWait   = 10 * time.Second
	streamRequestWait = 30 * time.Second
	streamReadLimit   = 65536
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamConn serialises writes; progress arrives from shard goroutines.
type streamConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *streamConn) send(frame StreamFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return c.conn.WriteJSON(frame)
}

func (c *streamConn) sendError(r *http.Request, err error) {
	var engineErr EngineError
	if !errors.As(err, &engineErr) {
		errType, _ := classify(err)
		engineErr = NewError(errType, err.Error()).Build()
	}
	engineErr.RequestID = middleware.GetReqID(r.Context())
	c.send(StreamFrame{Type: FrameError, Error: &engineErr})
}

// handleSimulationStream runs one simulation per connection. The client sends
// a SimulationRequest as its first frame and receives progress frames and a
// final result frame. Closing the socket cancels the run.
func (s *Server) handleSimulationStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("stream_upgrade_failed request_id=%s err=%v", middleware.GetReqID(r.Context()), err)
		return
	}
	defer conn.Close()
	sc := &streamConn{conn: conn}

	conn.SetReadLimit(streamReadLimit)
	conn.SetReadDeadline(time.Now().Add(streamRequestWait))

	var req SimulationRequest
	_, data, err := conn.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			s.logger.Printf("stream_read_failed err=%v", err)
		}
		return
	}
	if err := json.Unmarshal(data, &req); err != nil {
		sc.sendError(r, NewError(ErrTypeValidation, "invalid JSON: "+err.Error()).WithContext("field", "body").Build())
		return
	}

	cfg, err := s.prepareSimConfig(req.Config)
	if err != nil {
		sc.sendError(r, err)
		return
	}
	s.logSimulationRequest(r, cfg)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	// Any further read, including the close frame, ends the run.
	conn.SetReadDeadline(time.Time{})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	progress := func(p sim.Progress) {
		if err := sc.send(StreamFrame{Type: FrameProgress, Progress: &p}); err != nil {
			cancel()
		}
	}

	res, err := s.simulator(sim.WithProgress(progress)).Run(ctx, cfg)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			sc.sendError(r, err)
		}
		return
	}

	resp := newSimulationResponse(res)
	if s.shouldPersist(req.Persist) {
		pctx, pcancel := persistContext(r.Context())
		defer pcancel()
		id, err := s.saveResult(pctx, store.KindBinned, res)
		if err != nil {
			sc.sendError(r, err)
			return
		}
		resp.RunID = id
	}

	if err := sc.send(StreamFrame{Type: FrameResult, Result: resp}); err != nil {
		return
	}
	sc.mu.Lock()
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(streamWriteWait))
	sc.mu.Unlock()

	s.logger.Printf("stream_completed run_id=%s played=%d timed_out=%t", resp.RunID, res.Played, res.TimedOut)
}
