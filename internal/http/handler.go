package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/skawashin1122/bento-app-project/internal/clients"
	"github.com/skawashin1122/bento-app-project/internal/middleware"
	"github.com/skawashin1122/bento-app-project/internal/model"
	"github.com/skawashin1122/bento-app-project/internal/order"
	"github.com/skawashin1122/bento-app-project/internal/presenter"
	"github.com/skawashin1122/bento-app-project/internal/session"
)

const serviceName = "bento-client"

type Handler struct {
	logger   *log.Logger
	sessions *Registry
	probes   []clients.HealthProbe
}

type ctxKey struct{}

type sessionRef struct {
	sess  *session.Session
	state *presenter.State
}

// loadSession resolves X-Session-Id to a registered session.
func (h *Handler) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := middleware.GetSessionID(r.Context())
		sess, state, ok := h.sessions.Get(id)
		if !ok {
			writeError(w, r, http.StatusNotFound, "session not found", "")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, sessionRef{sess: sess, state: state})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func current(r *http.Request) sessionRef {
	ref, _ := r.Context().Value(ctxKey{}).(sessionRef)
	return ref
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
	})
}

func (h *Handler) Upstream(w http.ResponseWriter, r *http.Request) {
	results := clients.CheckAll(r.Context(), h.probes)

	status, code := "ok", http.StatusOK
	if !clients.Healthy(results) {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":   status,
		"service":  serviceName,
		"upstream": results,
	})
}

type sessionResponse struct {
	SessionID string         `json:"sessionId"`
	View      presenter.View `json:"view"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, state := h.sessions.Create()

	// a failed menu load is reported in the view, the session is still usable
	_, _ = sess.LoadCatalog(r.Context())

	w.Header().Set(middleware.HeaderSessionID, sess.ID())
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: sess.ID(), View: view(sess, state)})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ref := current(r)
	writeJSON(w, http.StatusOK, view(ref.sess, ref.state))
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(current(r).sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RefreshMenu(w http.ResponseWriter, r *http.Request) {
	ref := current(r)
	if _, err := ref.sess.LoadCatalog(r.Context()); err != nil {
		writeError(w, r, http.StatusBadGateway, err.Error(), "CatalogFetchFailed")
		return
	}
	writeJSON(w, http.StatusOK, view(ref.sess, ref.state))
}

type cartDeltaRequest struct {
	MenuID int `json:"menu_id"`
	Delta  int `json:"delta"`
}

func (h *Handler) ChangeCart(w http.ResponseWriter, r *http.Request) {
	var req cartDeltaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	if req.MenuID <= 0 {
		writeError(w, r, http.StatusBadRequest, "menu_id must be positive", "")
		return
	}

	ref := current(r)
	if _, err := ref.sess.ChangeQuantity(req.MenuID, req.Delta); err != nil {
		if errors.Is(err, session.ErrUnknownMenuItem) {
			writeError(w, r, http.StatusUnprocessableEntity, err.Error(), "UnknownMenuItem")
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, view(ref.sess, ref.state))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ref := current(r)
	ref.sess.ClearCart()
	writeJSON(w, http.StatusOK, view(ref.sess, ref.state))
}

type submitRequest struct {
	UserName string `json:"user_name"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	ref := current(r)
	_, err := ref.sess.Submit(r.Context(), req.UserName)

	var (
		verr *order.ValidationError
		serr *order.SubmissionError
	)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, view(ref.sess, ref.state))
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, view(ref.sess, ref.state))
	case errors.Is(err, session.ErrSubmissionInFlight):
		writeError(w, r, http.StatusConflict, presenter.SubmissionMessage(err), presenter.Reason(err))
	case errors.As(err, &serr):
		writeJSON(w, http.StatusBadGateway, view(ref.sess, ref.state))
	default:
		writeError(w, r, http.StatusInternalServerError, err.Error(), "")
	}
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ref := current(r)
	if _, err := ref.sess.LoadHistory(r.Context()); err != nil {
		writeError(w, r, http.StatusBadGateway, err.Error(), "HistoryFetchFailed")
		return
	}
	writeJSON(w, http.StatusOK, view(ref.sess, ref.state))
}

func view(sess *session.Session, state *presenter.State) presenter.View {
	v := state.View()
	v.Submitting = sess.Submitting()
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg, reason string) {
	writeJSON(w, status, model.ErrorResponse{
		Error:         msg,
		Reason:        reason,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}
