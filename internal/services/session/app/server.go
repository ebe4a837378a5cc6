package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/crowdcue/internal/auth"
	"github.com/louisbranch/crowdcue/internal/party"
	"github.com/louisbranch/crowdcue/internal/party/event"
	apperrors "github.com/louisbranch/crowdcue/internal/platform/errors"
	"github.com/louisbranch/crowdcue/internal/userdir"
)

const shutdownTimeout = 5 * time.Second

// Server is the thin HTTP edge over the session service.
type Server struct {
	service *Service
	users   userdir.Store
	tokens  auth.Config
}

// NewServer wires the session HTTP edge.
func NewServer(service *Service, users userdir.Store, tokens auth.Config) *Server {
	return &Server{service: service, users: users, tokens: tokens}
}

// Handler returns the session service routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/create-party", s.handleCreateParty)
	mux.HandleFunc("POST /auth/join-party", s.handleJoinParty)
	mux.HandleFunc("POST /update", s.handleUpdate)
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
	log.Printf("session listening on %s", addr)
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

type createPartyRequest struct {
	Username  string `json:"username"`
	PartyName string `json:"party_name"`
}

type createPartyResponse struct {
	Token     string `json:"token"`
	PartyCode string `json:"party_code"`
}

func (s *Server) handleCreateParty(w http.ResponseWriter, r *http.Request) {
	var req createPartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	// Reject a bad party name before the user insert so a failed request
	// leaves no profile or token behind.
	if strings.TrimSpace(req.PartyName) == "" {
		writeError(w, apperrors.New(apperrors.CodePartyNameEmpty, "party name is required"))
		return
	}

	user, err := s.users.CreateUser(r.Context(), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := auth.Mint(s.tokens, user.ID, auth.RoleHost)
	if err != nil {
		writeError(w, err)
		return
	}
	code, err := s.service.CreateParty(r.Context(), req.PartyName, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, createPartyResponse{Token: token, PartyCode: code.String()})
}

type joinPartyRequest struct {
	Username  string `json:"username"`
	PartyCode string `json:"party_code"`
}

type joinPartyResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleJoinParty(w http.ResponseWriter, r *http.Request) {
	var req joinPartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	code, err := party.ParseCode(req.PartyCode)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodePartyCodeInvalid, "parse party code", err))
		return
	}

	user, err := s.users.CreateUser(r.Context(), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := auth.Mint(s.tokens, user.ID, auth.RoleGuest)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.service.JoinParty(r.Context(), code, user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joinPartyResponse{Token: token})
}

type updateRequest struct {
	PartyCode string          `json:"party_code"`
	Token     string          `json:"token"`
	Event     json.RawMessage `json:"event"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	code, err := party.ParseCode(req.PartyCode)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodePartyCodeInvalid, "parse party code", err))
		return
	}
	claims, err := auth.Validate(s.tokens, req.Token)
	if err != nil {
		writeError(w, err)
		return
	}
	evt, err := event.Decode(req.Event)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeEventMalformed, "decode party event", err))
		return
	}
	if err := s.service.SubmitUpdate(r.Context(), code, claims.Role, evt); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		http.Error(w, string(domainErr.Code), domainErr.Code.HTTPStatus())
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}
