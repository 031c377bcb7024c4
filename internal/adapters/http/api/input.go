package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/okian/racecard/internal/adapters/source"
	"github.com/okian/racecard/internal/domain/model"
)

const mediaTypeJSON = "application/json"

// cardRequest mirrors the OpenAPI schema for JSON card uploads.
type cardRequest struct {
	Text      string `json:"text"`
	Condition string `json:"condition"`
}

// cardReader turns a request into card text and a track condition. JSON
// bodies carry both; any other body is a document and the condition comes
// from the query string.
type cardReader struct {
	maxBodyBytes int64
}

func (cr cardReader) read(w http.ResponseWriter, r *http.Request) (string, model.TrackCondition, error) {
	limit := cr.maxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", 0, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		}
		return "", 0, fmt.Errorf("%w: read body: %w", ErrBadRequest, err)
	}

	contentType := r.Header.Get("Content-Type")
	rawCondition := r.URL.Query().Get("condition")

	var text string
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == mediaTypeJSON {
		var req cardRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "", 0, fmt.Errorf("%w: invalid json: %w", ErrBadRequest, err)
		}
		text = source.Normalize(req.Text)
		if strings.TrimSpace(req.Condition) != "" {
			rawCondition = req.Condition
		}
	} else {
		text, err = source.Extract(contentType, body)
		if err != nil {
			return "", 0, err
		}
	}

	condition, err := parseCondition(rawCondition)
	if err != nil {
		return "", 0, err
	}
	return text, condition, nil
}

func parseCondition(raw string) (model.TrackCondition, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, ErrMissingCondition
	}
	return model.ParseTrackCondition(raw)
}

// writeInputError maps a cardReader failure to a status code.
func writeInputError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, source.ErrUnsupportedContentType):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", err)
	case errors.Is(err, ErrBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", err)
	case errors.Is(err, model.ErrUnknownTrackCondition):
		writeError(w, http.StatusBadRequest, "unknown_condition", err)
	case errors.Is(err, ErrMissingCondition):
		writeError(w, http.StatusBadRequest, "missing_condition", err)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", err)
	}
}
