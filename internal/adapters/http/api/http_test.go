package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/racecard/internal/adapters/http/api"
	"github.com/okian/racecard/internal/adapters/mq/queue"
	"github.com/okian/racecard/internal/adapters/repository"
	"github.com/okian/racecard/internal/domain/model"
	"github.com/okian/racecard/internal/domain/racecard"
	"github.com/okian/racecard/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleCard = "3 Thunder Bolt 61.5kg\nGd1 Sft2 Gd4\nAge 5\n7 Misty Dawn 58kg\nHy5 Sft1\nAge 4\n"

// mockDependencies ranks with the real parser and engine and keeps cards in a map.
type mockDependencies struct {
	mu        sync.Mutex
	cards     map[string]model.CardAnalysis
	submitErr error
	lastText  string
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{cards: make(map[string]model.CardAnalysis)}
}

func (m *mockDependencies) Analyze(_ context.Context, text string, c model.TrackCondition) (model.CardAnalysis, error) {
	m.mu.Lock()
	m.lastText = text
	m.mu.Unlock()
	horses := racecard.Parse(text)
	return model.CardAnalysis{
		ID:         fmt.Sprintf("id-%d", len(text)),
		Condition:  c,
		Horses:     horses,
		Ranking:    scoring.Rank(horses, c),
		AnalyzedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (m *mockDependencies) Submit(ctx context.Context, text string, c model.TrackCondition) (string, bool, error) {
	if m.submitErr != nil {
		return "", false, m.submitErr
	}
	a, _ := m.Analyze(ctx, text, c)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[a.ID]; ok {
		return a.ID, true, nil
	}
	m.cards[a.ID] = a
	return a.ID, false, nil
}

func (m *mockDependencies) Card(_ context.Context, id string) (model.CardAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.cards[id]
	if !ok {
		return model.CardAnalysis{}, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return a, nil
}

func (m *mockDependencies) Rescore(ctx context.Context, id string, c model.TrackCondition) (model.CardAnalysis, error) {
	a, err := m.Card(ctx, id)
	if err != nil {
		return a, err
	}
	a.Condition = c
	a.Ranking = scoring.Rank(a.Horses, c)
	m.mu.Lock()
	m.cards[id] = a
	m.mu.Unlock()
	return a, nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any { return m.stats }

type cardBody struct {
	ID        string `json:"id"`
	Condition string `json:"condition"`
	Count     int    `json:"count"`
	Horses    []struct {
		Rank      int     `json:"rank"`
		Name      string  `json:"name"`
		Score     float64 `json:"score"`
		Breakdown struct {
			WeatherAdjustment float64 `json:"weather_adjustment"`
		} `json:"breakdown"`
	} `json:"horses"`
}

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"started": true}}, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func jsonBody(text, condition string) string {
	b, _ := json.Marshal(map[string]string{"text": text, "condition": condition})
	return string(b)
}

func TestRankHandler(t *testing.T) {
	Convey("Given the API mux", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps)

		Convey("When posting a JSON card", func() {
			w := do(mux, http.MethodPost, "/rank", "application/json", jsonBody(sampleCard, "Sft"))

			Convey("Then the ranked horses are returned with 1-based ranks", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body cardBody
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				want := scoring.Rank(racecard.Parse(sampleCard), model.Soft)
				So(body.Condition, ShouldEqual, "Sft")
				So(body.Count, ShouldEqual, 2)
				So(body.Horses[0].Rank, ShouldEqual, 1)
				So(body.Horses[0].Name, ShouldEqual, want[0].Horse.Name)
				So(body.Horses[1].Score, ShouldAlmostEqual, want[1].Score, 1e-9)
			})
		})

		Convey("When posting plain text with the condition in the query", func() {
			w := do(mux, http.MethodPost, "/rank?condition=heavy", "text/plain; charset=utf-8", sampleCard)

			Convey("Then the query condition is used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body cardBody
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Condition, ShouldEqual, "Hy")
			})
		})

		Convey("When posting an HTML card", func() {
			html := "<html><body><table><tr><td>3</td><td>Thunder Bolt</td><td>61.5kg</td></tr>" +
				"<tr><td>Gd1 Sft2</td></tr><tr><td>Age 5</td></tr></table></body></html>"
			w := do(mux, http.MethodPost, "/rank?condition=Gd", "text/html", html)

			Convey("Then the table rows are parsed as card lines", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body cardBody
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Horses, ShouldHaveLength, 1)
				So(body.Horses[0].Name, ShouldEqual, "Thunder Bolt")
			})
		})

		Convey("When posting full-width digits", func() {
			w := do(mux, http.MethodPost, "/rank?condition=Gd", "text/plain", "３ Solo 60kg\nGd1\nAge 4")

			Convey("Then the text is normalised before parsing", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastText, ShouldStartWith, "3 Solo")
			})
		})

		Convey("When no horses can be parsed", func() {
			w := do(mux, http.MethodPost, "/rank", "application/json", jsonBody("ATR VERDICT\nnothing", "Gd"))

			Convey("Then 422 no_data is returned", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				var body errBody
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "no_data")
				So(body.Message, ShouldEqual, "no valid horse data found")
			})
		})

		Convey("When the request is malformed", func() {
			cases := []struct {
				name, target, contentType, body string
				status                          int
				code                            string
			}{
				{"missing condition", "/rank", "application/json", jsonBody(sampleCard, ""), http.StatusBadRequest, "missing_condition"},
				{"unknown condition", "/rank?condition=Mud", "text/plain", sampleCard, http.StatusBadRequest, "unknown_condition"},
				{"broken json", "/rank", "application/json", "{", http.StatusBadRequest, "bad_request"},
				{"unsupported type", "/rank?condition=Gd", "image/png", "x", http.StatusUnsupportedMediaType, "unsupported_media_type"},
				{"broken pdf", "/rank?condition=Gd", "application/pdf", "not a pdf", http.StatusBadRequest, "bad_request"},
			}
			for _, tc := range cases {
				w := do(mux, http.MethodPost, tc.target, tc.contentType, tc.body)
				var body errBody
				_ = json.Unmarshal(w.Body.Bytes(), &body)

				Convey("Then "+tc.name+" is rejected", func() {
					So(w.Code, ShouldEqual, tc.status)
					So(body.Code, ShouldEqual, tc.code)
				})
			}
		})

		Convey("When the body exceeds the limit", func() {
			small := newMux(deps, api.WithMaxBodyBytes(16))
			w := do(small, http.MethodPost, "/rank?condition=Gd", "text/plain", sampleCard)

			Convey("Then 413 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})

		Convey("When using the wrong method", func() {
			w := do(mux, http.MethodGet, "/rank", "", "")

			Convey("Then the mux rejects it", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestCardsHandler(t *testing.T) {
	Convey("Given the API mux", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps)

		Convey("When submitting a card", func() {
			w := do(mux, http.MethodPost, "/cards?condition=Gd", "text/plain", sampleCard)
			var ack struct {
				ID        string `json:"id"`
				Status    string `json:"status"`
				Duplicate bool   `json:"duplicate"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.ID, ShouldNotBeEmpty)
			})

			Convey("And a resubmission is acknowledged as a duplicate", func() {
				again := do(mux, http.MethodPost, "/cards?condition=Gd", "text/plain", sampleCard)
				So(again.Code, ShouldEqual, http.StatusOK)
				So(again.Body.String(), ShouldContainSubstring, `"duplicate":true`)
			})

			Convey("And the card can be fetched", func() {
				got := do(mux, http.MethodGet, "/cards/"+ack.ID, "", "")
				So(got.Code, ShouldEqual, http.StatusOK)
				var body cardBody
				So(json.Unmarshal(got.Body.Bytes(), &body), ShouldBeNil)
				So(body.ID, ShouldEqual, ack.ID)
				So(body.Condition, ShouldEqual, "Gd")
			})

			Convey("And the card can be rescored", func() {
				got := do(mux, http.MethodPost, "/cards/"+ack.ID+"/score?condition=Fm", "", "")
				So(got.Code, ShouldEqual, http.StatusOK)
				var body cardBody
				So(json.Unmarshal(got.Body.Bytes(), &body), ShouldBeNil)
				So(body.Condition, ShouldEqual, "Fm")

				stored := do(mux, http.MethodGet, "/cards/"+ack.ID, "", "")
				So(stored.Body.String(), ShouldContainSubstring, `"condition":"Fm"`)
			})

			Convey("And rescoring without a condition is rejected", func() {
				got := do(mux, http.MethodPost, "/cards/"+ack.ID+"/score", "", "")
				So(got.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the queue is full", func() {
			deps.submitErr = fmt.Errorf("submit: %w", queue.ErrFull)
			w := do(mux, http.MethodPost, "/cards?condition=Gd", "text/plain", sampleCard)

			Convey("Then 429 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(w.Body.String(), ShouldContainSubstring, "backpressure")
			})
		})

		Convey("When the service is unavailable", func() {
			deps.submitErr = errors.New("service not started")
			w := do(mux, http.MethodPost, "/cards?condition=Gd", "text/plain", sampleCard)

			Convey("Then 503 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When fetching or rescoring an unknown card", func() {
			get := do(mux, http.MethodGet, "/cards/unknown", "", "")
			rescore := do(mux, http.MethodPost, "/cards/unknown/score?condition=Gd", "", "")

			Convey("Then 404 is returned", func() {
				So(get.Code, ShouldEqual, http.StatusNotFound)
				So(rescore.Code, ShouldEqual, http.StatusNotFound)
				So(get.Body.String(), ShouldContainSubstring, "not_found")
			})
		})
	})
}

func TestInfoHandlers(t *testing.T) {
	Convey("Given the API mux", t, func() {
		mux := newMux(newMockDependencies())

		Convey("When listing conditions", func() {
			w := do(mux, http.MethodGet, "/conditions", "", "")
			var body []map[string]string
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)

			Convey("Then all five are listed with token and name", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body, ShouldHaveLength, 5)
				So(body[0], ShouldResemble, map[string]string{"token": "Gd", "name": "Good"})
			})
		})

		Convey("When reading stats", func() {
			w := do(mux, http.MethodGet, "/stats", "", "")

			Convey("Then the provider's stats are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"started":true`)
			})
		})

		Convey("When probing health after some traffic", func() {
			_ = do(mux, http.MethodGet, "/conditions", "", "")
			w := do(mux, http.MethodGet, "/healthz", "", "")

			Convey("Then the Prometheus exposition includes the HTTP metrics", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "racecard_ranker_http_requests_total")
			})
		})
	})
}
