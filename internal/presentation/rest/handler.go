package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Mrinal-Agrawal21/veera-app/internal/application/dto"
	"github.com/Mrinal-Agrawal21/veera-app/internal/application/usecase"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/port"
)

const maxRequestBytes = 64 << 10

// Error messages returned to clients.
const (
	msgMalformedRequest = "malformed request body"
	msgModelUnavailable = "risk model unavailable, please retry"
	msgNotStored        = "incident could not be stored"
	msgInternal         = "internal error"
)

// IncidentHandler serves the SOS and incident history endpoints.
type IncidentHandler struct {
	scoreIncident     *usecase.ScoreIncident
	listIncidents     *usecase.ListIncidents
	listUserIncidents *usecase.ListUserIncidents
	listUsers         *usecase.ListUsers
	logger            *slog.Logger
}

// NewIncidentHandler creates a new IncidentHandler.
func NewIncidentHandler(
	scoreIncident *usecase.ScoreIncident,
	listIncidents *usecase.ListIncidents,
	listUserIncidents *usecase.ListUserIncidents,
	listUsers *usecase.ListUsers,
	logger *slog.Logger,
) *IncidentHandler {
	return &IncidentHandler{
		scoreIncident:     scoreIncident,
		listIncidents:     listIncidents,
		listUserIncidents: listUserIncidents,
		listUsers:         listUsers,
		logger:            logger,
	}
}

// RegisterRoutes registers the API endpoints on the provided ServeMux.
// sos wraps the SOS submission route, e.g. with a rate limiter; nil leaves
// it unwrapped.
func (h *IncidentHandler) RegisterRoutes(mux *http.ServeMux, sos func(http.Handler) http.Handler) {
	var submit http.Handler = http.HandlerFunc(h.SubmitSOS)
	if sos != nil {
		submit = sos(submit)
	}

	mux.Handle("POST /api/sos", submit)
	mux.HandleFunc("GET /api/sos", h.ListIncidents)
	mux.HandleFunc("GET /api/user/{userId}", h.ListUserIncidents)
	mux.HandleFunc("GET /api/user", h.ListUsers)
}

// SubmitSOS scores a situational snapshot and records it.
func (h *IncidentHandler) SubmitSOS(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRiskRequest(w, r)
	if err != nil {
		h.logger.Info("rejecting malformed SOS request", "error", err)
		writeError(w, http.StatusBadRequest, msgMalformedRequest)
		return
	}

	resp, err := h.scoreIncident.Execute(r.Context(), req)
	if err != nil {
		h.writeUseCaseError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListIncidents returns the full incident history.
func (h *IncidentHandler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.listIncidents.Execute(r.Context())
	if err != nil {
		h.writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, incidents)
}

// ListUserIncidents returns the incidents of the user in the path.
func (h *IncidentHandler) ListUserIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.listUserIncidents.Execute(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, incidents)
}

// ListUsers returns one summary per known user.
func (h *IncidentHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.listUsers.Execute(r.Context())
	if err != nil {
		h.writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *IncidentHandler) writeUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		h.logger.Info("request cancelled by client", "path", r.URL.Path)
	case errors.Is(err, port.ErrModelUnavailable):
		h.logger.Warn("risk model unavailable", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, msgModelUnavailable)
	case errors.Is(err, port.ErrStorage):
		h.logger.Error("incident storage failed", "path", r.URL.Path, "error", err)
		if r.Method == http.MethodPost {
			writeError(w, http.StatusInternalServerError, msgNotStored)
			return
		}
		writeError(w, http.StatusInternalServerError, msgInternal)
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// decodeRiskRequest reads the SOS body. An empty body is an empty request;
// unknown fields are ignored. Anything but whitespace after the object, or a
// body over maxRequestBytes, is malformed.
func decodeRiskRequest(w http.ResponseWriter, r *http.Request) (dto.ClientRiskRequest, error) {
	var req dto.ClientRiskRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return dto.ClientRiskRequest{}, nil
		}
		return dto.ClientRiskRequest{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return dto.ClientRiskRequest{}, errors.New("unexpected data after JSON object")
	}
	return req, nil
}
