package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/racecard/internal/adapters/mq/queue"
	"github.com/okian/racecard/internal/adapters/repository"
	"github.com/okian/racecard/internal/domain/types"
)

// CardsHandler handles asynchronous card submission and lookups.
type CardsHandler struct {
	deps   Dependencies
	reader cardReader
}

// NewCardsHandler creates a new cards handler.
func NewCardsHandler(deps Dependencies, maxBodyBytes int64) *CardsHandler {
	return &CardsHandler{deps: deps, reader: cardReader{maxBodyBytes: maxBodyBytes}}
}

// HandleSubmit handles POST /cards requests.
func (h *CardsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_card"

	text, condition, err := h.reader.read(w, r)
	if err != nil {
		writeInputError(w, err)
		return
	}

	id, duplicate, err := h.deps.Submit(r.Context(), text, condition)
	switch {
	case errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", wrap(op, err))
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, "unavailable", wrap(op, err))
	case duplicate:
		writeJSON(w, http.StatusOK, ackResponse{ID: id, Status: "duplicate", Duplicate: true})
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{ID: id, Status: "accepted"})
	}
}

// HandleGet handles GET /cards/{id} requests.
func (h *CardsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_card"

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	a, err := h.deps.Card(r.Context(), id)
	if err != nil {
		writeLookupError(w, wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.FromAnalysis(a))
}

// HandleRescore handles POST /cards/{id}/score?condition= requests.
func (h *CardsHandler) HandleRescore(w http.ResponseWriter, r *http.Request) {
	const op = "api.rescore_card"

	id := strings.TrimSpace(r.PathValue("id"))
	condition, err := parseCondition(r.URL.Query().Get("condition"))
	if err != nil {
		writeInputError(w, err)
		return
	}

	a, err := h.deps.Rescore(r.Context(), id, condition)
	if err != nil {
		writeLookupError(w, wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.FromAnalysis(a))
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusServiceUnavailable, "unavailable", err)
}
