package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hay-kot/toastq/internal/core/envelope"
	"github.com/hay-kot/toastq/internal/core/notify"
)

const msgNotFound = "toast not found"

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, envelope.OK(toToasts(s.center.Snapshot()), ""))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h := s.center.Notify(req.spec())
	s.handles.Set(h.ID(), h)

	n, ok := h.Get()
	if !ok {
		n = notify.Notification[string]{ID: h.ID()}
	}

	s.respond(w, r, http.StatusCreated, envelope.OK(toToast(n), "toast created"))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.center.Get(id); !ok {
		s.fail(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Handles apply the severity duration rule; toasts created elsewhere are
	// patched as-is.
	if h, ok := s.handles.Get(id); ok {
		h.Update(req.patch())
	} else {
		s.center.Dispatch(notify.Update(id, req.patch()))
	}

	n, ok := s.center.Get(id)
	if !ok {
		s.fail(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	s.respond(w, r, http.StatusOK, envelope.OK(toToast(n), "toast updated"))
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.center.Get(id); !ok {
		s.fail(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	s.center.Dismiss(id)
	s.respond(w, r, http.StatusOK, envelope.OK[any](nil, "toast dismissed"))
}

func (s *Server) handleDismissAll(w http.ResponseWriter, r *http.Request) {
	s.center.DismissAll()
	s.respond(w, r, http.StatusOK, envelope.OK[any](nil, "all toasts dismissed"))
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.center.Get(id); !ok {
		s.fail(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	s.center.Remove(id)
	s.respond(w, r, http.StatusOK, envelope.OK[any](nil, "toast removed"))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.center.Clear()
	s.respond(w, r, http.StatusOK, envelope.OK[any](nil, "all toasts removed"))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.fail(w, r, http.StatusNotFound, "history is disabled")
		return
	}

	records, err := s.history.List(r.Context())
	if err != nil {
		s.logger.Error().Ctx(r.Context()).Err(err).Msg("failed to list history")
		s.fail(w, r, http.StatusInternalServerError, "failed to list history")
		return
	}

	s.respond(w, r, http.StatusOK, envelope.OK(records, ""))
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Ctx(r.Context()).Err(err).Msg("failed to write response")
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.respond(w, r, status, envelope.Fail(msg))
}
