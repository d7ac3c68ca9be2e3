package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/knowflow/internal/gateway"
	"github.com/abhisek/knowflow/internal/history"
	"github.com/abhisek/knowflow/internal/llm"
	"github.com/abhisek/knowflow/internal/session"
)

type errResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}

// statusFor maps controller and gateway errors to HTTP codes.
func statusFor(err error) int {
	var (
		genErr *gateway.GenerationError
		valErr *gateway.ValidationError
		cfgErr *session.ConfigError
	)
	switch {
	case errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrNodeLocked),
		errors.Is(err, session.ErrNoSession):
		return http.StatusConflict
	case errors.Is(err, session.ErrUnknownNode), errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidOption):
		return http.StatusBadRequest
	case errors.As(err, &cfgErr):
		return http.StatusPreconditionFailed
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &genErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Unexpected errors are logged and
// their text is still returned; this is a single-user local service.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	writeErr(w, status, err.Error())
}

// writeState writes the current snapshot with the API key masked.
func (s *Server) writeState(w http.ResponseWriter) {
	st := s.ctrl.Snapshot()
	st.Config = st.Config.Masked()
	writeJSON(w, http.StatusOK, st)
}

// intent wraps a no-argument controller call.
func (s *Server) intent(fn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(); err != nil {
			s.fail(w, r, err)
			return
		}
		s.writeState(w)
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w)
}

func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := decode(r, &req); err != nil || strings.TrimSpace(req.Topic) == "" {
		writeErr(w, http.StatusBadRequest, "topic is required")
		return
	}
	if err := s.ctrl.SubmitTopic(r.Context(), req.Topic); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.RefreshHistory(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	items := s.ctrl.Snapshot().History
	if items == nil {
		items = []history.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleOpenHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.OpenHistory(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.DeleteHistory(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleSelectNode(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.SelectNode(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleSelectOption(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if err := decode(r, &req); err != nil || req.Index == nil {
		writeErr(w, http.StatusBadRequest, "index is required")
		return
	}
	if err := s.ctrl.SelectOption(*req.Index); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.NextQuestion(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot().Config.Masked())
}

// handlePutSettings replaces the config. For the same provider a masked or
// omitted API key keeps the stored one, so a client can round-trip what GET
// returned.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var cfg llm.Config
	if err := decode(r, &cfg); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid config: "+err.Error())
		return
	}
	current := s.ctrl.Snapshot().Config
	if cfg.APIKey == "" || cfg.APIKey == llm.MaskKey(current.APIKey) {
		cfg.APIKey = ""
		if cfg.Provider == current.Provider {
			cfg.APIKey = current.APIKey
		}
	}
	if err := cfg.Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ctrl.UpdateConfig(r.Context(), cfg); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.Masked())
}
