package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"loan-widget/domain"
	"loan-widget/repository"
	"loan-widget/service"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
	maxBodyBytes        = 1 << 16
)

type fieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// WidgetHandler exposes a LoanWidget over HTTP.
type WidgetHandler struct {
	widget  *service.LoanWidget
	history repository.LoanRepository
	log     zerolog.Logger
}

func NewWidgetHandler(
	widget *service.LoanWidget,
	history repository.LoanRepository,
	log zerolog.Logger,
) *WidgetHandler {
	return &WidgetHandler{widget: widget, history: history, log: log}
}

// View handles GET /widget.
func (h *WidgetHandler) View(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.writeJSON(w, http.StatusOK, h.widget.View())
}

// FieldChanged handles POST /widget/field.
func (h *WidgetHandler) FieldChanged(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req fieldRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.widget.OnFieldChanged(domain.FieldID(req.Field), req.Value)
	if errors.Is(err, domain.ErrUnknownField) {
		writeError(w, http.StatusBadRequest, "unknown field: "+req.Field)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("field validation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// Submit handles POST /widget/submit. An empty body submits the current fields.
func (h *WidgetHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var (
		outcome service.SubmitOutcome
		err     error
	)
	// An empty body submits the current fields, whether or not the length is known.
	var raw domain.RawInput
	derr := io.EOF
	if r.ContentLength != 0 {
		derr = decodeJSON(r, &raw)
	}
	switch {
	case errors.Is(derr, io.EOF):
		outcome, err = h.widget.OnSubmit(r.Context())
	case derr != nil:
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	default:
		outcome, err = h.widget.Submit(r.Context(), raw)
	}
	if err != nil {
		h.log.Debug().Err(err).Msg("submission abandoned")
		writeError(w, http.StatusServiceUnavailable, "request canceled")
		return
	}

	h.writeJSON(w, submitStatusCode(outcome.Status), outcome)
}

// Reset handles POST /widget/reset.
func (h *WidgetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.widget.OnReset()
	h.writeJSON(w, http.StatusOK, h.widget.View())
}

// DismissNotice handles DELETE /widget/notice.
func (h *WidgetHandler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.widget.DismissNotice()
	h.writeJSON(w, http.StatusOK, h.widget.View())
}

// History handles GET /widget/history?limit=N.
func (h *WidgetHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	calcs, err := h.history.List(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list calculations")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if calcs == nil {
		calcs = []domain.Calculation{}
	}
	h.writeJSON(w, http.StatusOK, calcs)
}

func submitStatusCode(status service.SubmitStatus) int {
	switch status {
	case service.SubmitSucceeded:
		return http.StatusOK
	case service.SubmitIgnored:
		return http.StatusConflict
	case service.SubmitCanceled:
		return http.StatusAccepted
	default:
		return http.StatusUnprocessableEntity
	}
}

func decodeJSON(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/json") {
		return errors.New("unsupported content type")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON encodes into a buffer first so a failed encode does not leave a
// half-written response with a success status.
func (h *WidgetHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Debug().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
