package api

import (
	"net/http"

	"github.com/okian/racecard/internal/domain/model"
)

type conditionResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// ConditionsHandler lists the supported track conditions.
type ConditionsHandler struct {
	body []conditionResponse
}

// NewConditionsHandler creates a new conditions handler.
func NewConditionsHandler() *ConditionsHandler {
	all := model.AllTrackConditions()
	body := make([]conditionResponse, len(all))
	for i, c := range all {
		body[i] = conditionResponse{Token: c.Token(), Name: c.Name()}
	}
	return &ConditionsHandler{body: body}
}

// HandleList handles GET /conditions requests.
func (h *ConditionsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.body)
}
