package api

import (
	"net/http"

	"github.com/okian/racecard/internal/domain/types"
)

// RankHandler ranks a card synchronously.
type RankHandler struct {
	deps   Dependencies
	reader cardReader
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps Dependencies, maxBodyBytes int64) *RankHandler {
	return &RankHandler{deps: deps, reader: cardReader{maxBodyBytes: maxBodyBytes}}
}

// HandleRank handles POST /rank requests.
func (h *RankHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank"

	text, condition, err := h.reader.read(w, r)
	if err != nil {
		writeInputError(w, err)
		return
	}

	a, err := h.deps.Analyze(r.Context(), text, condition)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", wrap(op, err))
		return
	}
	if len(a.Ranking) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no_data", ErrNoData)
		return
	}
	writeJSON(w, http.StatusOK, types.FromAnalysis(a))
}
