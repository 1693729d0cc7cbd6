package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jansen-zhang20/covid-dashy-personal/core"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"go.uber.org/zap"
)

// WebSocket message types sent by the server.
const (
	MessageProjection = "projection"
	MessageError      = "error"
)

// wsWriteTimeout bounds a single message write.
const wsWriteTimeout = 10 * time.Second

// Message is a server to client WebSocket frame.
type Message struct {
	Type      string               `json:"type"`
	Selection schema.Selection     `json:"selection"`
	Data      *schema.OutputSeries `json:"data,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// session is the per-connection selection state.
type session struct {
	conn      *websocket.Conn
	cfg       *contract.Config
	selection schema.Selection
	logger    *zap.Logger
}

// handleWS upgrades the connection and replies to each selection event with a
// recomputed projection. Invalid events leave the selection unchanged.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r.URL.Query())
	if err != nil {
		BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	data, err := s.dataset(r.Context())
	if err != nil {
		Unavailable(w, err.Error(), r.URL.Path)
		return
	}
	params, records := cfg.PipelineParams(cfg.Location, data.Records)
	if _, err := core.Load(records, params.Location); err != nil {
		PipelineError(w, err, r.URL.Path)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Error("websocket accept failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.CloseNow() }()

	sess := &session{
		conn:      conn,
		cfg:       cfg,
		selection: cfg.Selection,
		logger:    s.logger.With(zap.String("request_id", RequestID(r.Context())), zap.String("location", cfg.Location)),
	}
	ctx := r.Context()

	if err := s.sendProjection(ctx, sess); err != nil {
		return
	}
	for {
		_, payload, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				sess.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		var ev schema.SelectionEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			if err := sess.send(ctx, Message{Type: MessageError, Selection: sess.selection, Error: "malformed selection event"}); err != nil {
				return
			}
			continue
		}
		if err := core.ValidateSelectionEvent(ev, cfg.Scenarios); err != nil {
			if err := sess.send(ctx, Message{Type: MessageError, Selection: sess.selection, Error: err.Error()}); err != nil {
				return
			}
			continue
		}
		sess.selection = core.ApplySelection(sess.selection, ev, cfg.Scenarios)
		if err := s.sendProjection(ctx, sess); err != nil {
			return
		}
	}
}

// sendProjection evaluates the pipeline against the current snapshot and the session selection.
func (s *Server) sendProjection(ctx context.Context, sess *session) error {
	data := s.snapshot()
	if data == nil {
		return sess.send(ctx, Message{Type: MessageError, Selection: sess.selection, Error: "dataset not loaded"})
	}

	cfg := sess.cfg.Clone()
	cfg.Selection = sess.selection
	out, err := evaluate("ws", cfg, data.Records)
	if err != nil {
		return sess.send(ctx, Message{Type: MessageError, Selection: sess.selection, Error: err.Error()})
	}
	return sess.send(ctx, Message{Type: MessageProjection, Selection: sess.selection, Data: &out})
}

// send writes one message with a bounded deadline.
func (sess *session) send(ctx context.Context, msg Message) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	if err := wsjson.Write(writeCtx, sess.conn, msg); err != nil {
		sess.logger.Debug("websocket write error", zap.Error(err))
		return err
	}
	return nil
}
