package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/louisbranch/crowdcue/internal/party"
	apperrors "github.com/louisbranch/crowdcue/internal/platform/errors"
)

const shutdownTimeout = 5 * time.Second

// Server is the thin HTTP edge over the streaming gateway. Listen responses
// are server-sent events: one `state` event for the snapshot, then one per
// delivered transition.
type Server struct {
	gateway *Gateway
}

// NewServer wires the listener HTTP edge.
func NewServer(gateway *Gateway) *Server {
	return &Server{gateway: gateway}
}

// Handler returns the listener service routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /listen/{code}", s.handleListen)
	return mux
}

// ListenAndServe runs the HTTP edge until the context ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	log.Printf("listener listening on %s", addr)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func (s *Server) handleListen(w http.ResponseWriter, r *http.Request) {
	code, err := party.ParseCode(r.PathValue("code"))
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodePartyCodeInvalid, "parse party code", err))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	snapshot, updates, cancel, err := s.gateway.Listen(code)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if err := writeStateEvent(w, snapshot); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case state, open := <-updates:
			if !open {
				return
			}
			if err := writeStateEvent(w, state); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeStateEvent(w http.ResponseWriter, state party.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		log.Printf("encode state for party %s: %v", state.JoinCode, err)
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
	return err
}

func writeError(w http.ResponseWriter, err error) {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		http.Error(w, string(domainErr.Code), domainErr.Code.HTTPStatus())
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}
