package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/crypto/bcrypt"

	"pkt.systems/pslog"
)

const (
	wsReadLimit    = 1 << 20
	wsPingInterval = 30 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second

	outputBufSize = 32 * 1024
)

// Service exposes the pty session endpoints: health, session listing
// and the interactive websocket.
type Service struct {
	Manager   *Manager
	Logger    pslog.Logger
	TokenHash string
}

// NewService constructs a Service over the given manager. tokenHash is
// a bcrypt hash of the bearer token; empty disables authentication.
func NewService(manager *Manager, logger pslog.Logger, tokenHash string) *Service {
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	if manager == nil {
		manager = NewManager(logger, 0)
	}
	return &Service{Manager: manager, Logger: logger, TokenHash: tokenHash}
}

// Handler returns the HTTP handler for the service endpoints.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/sessions", s.handleListSessions)
	mux.HandleFunc("/sessions/", s.handleSessionAction)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.requireAuth(r); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.Manager.List())
}

func (s *Service) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	if err := s.requireAuth(r); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/sessions/"), "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}
	sess := s.Manager.Get(id)
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, sess.info())
	case http.MethodDelete:
		s.Manager.Remove(id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "killed"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type wsConn struct {
	conn   *websocket.Conn
	logger pslog.Logger

	sendMu sync.Mutex
}

func (c *wsConn) Send(ctx context.Context, frame Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *wsConn) Close(reason string) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.conn.Close(websocket.StatusNormalClosure, reason)
}

func (c *wsConn) Ping(ctx context.Context) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.conn.Ping(ctx)
}

func readFrame(ctx context.Context, conn *websocket.Conn) (Frame, error) {
	var frame Frame
	msgType, data, err := conn.Read(ctx)
	if err != nil {
		return frame, err
	}
	if msgType != websocket.MessageText {
		return frame, errors.New("expected text websocket frame")
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return frame, err
	}
	return frame, nil
}

func (s *Service) handleWS(w http.ResponseWriter, r *http.Request) {
	if err := s.requireAuth(r); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	ctx := r.Context()
	logger := s.loggerWithContext(ctx).With("component", "ws")

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	conn.SetReadLimit(wsReadLimit)
	ws := &wsConn{conn: conn, logger: logger}
	defer func() {
		_ = ws.Close("closing")
	}()

	frame, err := readFrame(ctx, conn)
	if err != nil {
		logger.Debug("failed to read opening frame", "err", err)
		return
	}
	if frame.Type != FrameSpawn || len(frame.Command) == 0 {
		_ = ws.Send(ctx, errorFrame("expected spawn frame with a command"))
		return
	}

	sess, err := s.Manager.Spawn(SpawnSpec{
		Command: frame.Command,
		Term:    frame.Term,
		Cols:    frame.Cols,
		Rows:    frame.Rows,
	})
	if err != nil {
		_ = ws.Send(ctx, errorFrame(err.Error()))
		return
	}
	defer s.Manager.Remove(sess.ID)

	if err := ws.Send(ctx, Frame{Type: FrameReady, SessionID: sess.ID, Pid: sess.Pid()}); err != nil {
		return
	}
	logger = logger.With("session", sess.ID)
	logger.Info("websocket session started", "pid", sess.Pid())

	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.pingLoop(pumpCtx, ws)
	go s.pumpOutput(pumpCtx, ws, sess)

	s.serveWSLoop(ctx, ws, sess, logger)
}

// pumpOutput copies pty output to the client until the pty closes.
// The final exit frame is sent here so it always follows the last
// output frame.
func (s *Service) pumpOutput(ctx context.Context, ws *wsConn, sess *Session) {
	buf := make([]byte, outputBufSize)
	for {
		n, err := sess.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if sendErr := ws.Send(ctx, Frame{Type: FrameOutput, Data: data}); sendErr != nil {
				return
			}
		}
		if err != nil {
			// EIO is the usual pty read result once the child exits.
			if !errors.Is(err, io.EOF) && ws.logger != nil {
				ws.logger.Debug("pty read ended", "err", err)
			}
			break
		}
	}

	<-sess.Done()
	code := sess.ExitCode()
	_ = ws.Send(ctx, Frame{Type: FrameExit, SessionID: sess.ID, ExitCode: &code})
	_ = ws.Close("session exited")
}

func (s *Service) serveWSLoop(ctx context.Context, ws *wsConn, sess *Session, logger pslog.Logger) {
	for {
		frame, err := readFrame(ctx, ws.conn)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return
			}
			return
		}

		switch frame.Type {
		case FrameInput:
			if _, err := sess.Write(frame.Data); err != nil {
				_ = ws.Send(ctx, errorFrame(err.Error()))
			}
		case FrameResize:
			if err := sess.Resize(frame.Cols, frame.Rows); err != nil {
				_ = ws.Send(ctx, errorFrame(err.Error()))
			}
		default:
			logger.Debug("ignoring unexpected frame", "type", frame.Type)
		}
	}
}

func (s *Service) pingLoop(ctx context.Context, ws *wsConn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, wsPongTimeout)
			if err := ws.Ping(pingCtx); err != nil && ws.logger != nil {
				ws.logger.Debug("websocket ping failed", "err", err)
			}
			cancel()
		}
	}
}

func (s *Service) requireAuth(r *http.Request) error {
	if s.TokenHash == "" {
		return nil
	}
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if err := bcrypt.CompareHashAndPassword([]byte(s.TokenHash), []byte(token)); err != nil {
		return errors.New("invalid token")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Service) loggerWithContext(ctx context.Context) pslog.Logger {
	if ctx == nil {
		return s.Logger
	}
	if logger := pslog.Ctx(ctx); logger != nil {
		return logger
	}
	return s.Logger
}
