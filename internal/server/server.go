package server

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"pkt.systems/pslog"
)

// ListenConfig configures the HTTP listener. Write and idle timeouts
// stay unset because the websocket endpoint holds connections open for
// the lifetime of a session.
type ListenConfig struct {
	ListenAddr string
	BasePath   string
	Logger     pslog.Logger

	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
}

// HTTPServer abstracts the listener so callers can shut it down.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

type stdServer struct {
	srv *http.Server
}

// NewHTTPServer builds the listener around the handler, with access
// logging and the base path mount applied.
func NewHTTPServer(cfg ListenConfig, handler http.Handler) (HTTPServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	base, err := NormalizeBasePath(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	handler = AccessLog(logger, MountBasePath(base, handler))
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	return &stdServer{
		srv: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ErrorLog:          pslog.LogLogger(logger),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		},
	}, nil
}

func (s *stdServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *stdServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// NormalizeBasePath validates a mount path and returns it cleaned.
// The root base ("/" or empty) normalizes to the empty string.
func NormalizeBasePath(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "/" {
		return "", nil
	}
	if strings.Contains(trimmed, "://") || strings.ContainsAny(trimmed, "?#") {
		return "", fmt.Errorf("base path must be a URL path without scheme, query, or fragment")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	for _, seg := range strings.Split(strings.TrimPrefix(trimmed, "/"), "/") {
		if seg == "." || seg == ".." {
			return "", fmt.Errorf("base path must not contain '.' or '..' segments")
		}
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "/" || cleaned == "." {
		return "", nil
	}
	return cleaned, nil
}

// MountBasePath serves the handler under base, redirecting the bare
// base path to base + "/".
func MountBasePath(base string, handler http.Handler) http.Handler {
	if base == "" {
		return handler
	}
	root := http.NewServeMux()
	root.Handle(base+"/", http.StripPrefix(base, handler))
	root.HandleFunc(base, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, base+"/", http.StatusMovedPermanently)
	})
	return root
}
