package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/punchlab/punchd/internal/adapters/http/api"
	"github.com/punchlab/punchd/internal/adapters/repository"
	service "github.com/punchlab/punchd/internal/app"
	"github.com/punchlab/punchd/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockGateway struct {
	submitResult service.SubmitResult
	submitErr    error
	punchResult  service.PunchResult
	punchErr     error
	board        []api.Entry
	position     int

	lastName  string
	lastScore float64
	lastRank  string
}

func (m *mockGateway) Submit(ctx context.Context, name string, rawScore float64, rawRank string) (service.SubmitResult, error) {
	m.lastName = name
	m.lastScore = rawScore
	m.lastRank = rawRank
	return m.submitResult, m.submitErr
}

func (m *mockGateway) Punch(ctx context.Context, name, description string) (service.PunchResult, error) {
	m.lastName = name
	return m.punchResult, m.punchErr
}

func (m *mockGateway) Leaderboard(ctx context.Context, n int) []api.Entry {
	if n < len(m.board) {
		return m.board[:n]
	}
	return m.board
}

func (m *mockGateway) Position(ctx context.Context, score int) int {
	return m.position
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestMux(deps *mockGateway) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, 100)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(&mockGateway{})

		Convey("Then the health endpoint is accessible", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint reports service state", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "started")
		})
	})
}

func TestScoresHandler(t *testing.T) {
	Convey("Given a scores endpoint", t, func() {
		deps := &mockGateway{
			submitResult: service.SubmitResult{
				Entry:    api.Entry{ID: "id-1", Name: "Tester", Score: 9999, Rank: tier.SSS},
				Position: 1,
				Top:      []api.Entry{{ID: "id-1", Name: "Tester", Score: 9999, Rank: tier.SSS}},
			},
		}
		mux := newTestMux(deps)

		Convey("When posting a valid submission", func() {
			body := `{"name":"Tester","score":9999,"rank":"SSS"}`
			req := httptest.NewRequest("POST", "/v1/scores", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is created with its position and top view", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var resp struct {
					Entry    api.Entry   `json:"entry"`
					Position int         `json:"position"`
					Top      []api.Entry `json:"top"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Entry.Rank, ShouldEqual, tier.SSS)
				So(resp.Position, ShouldEqual, 1)
				So(resp.Top, ShouldHaveLength, 1)
			})

			Convey("And the payload reached the gateway untouched", func() {
				So(deps.lastName, ShouldEqual, "Tester")
				So(deps.lastScore, ShouldEqual, 9999)
				So(deps.lastRank, ShouldEqual, "SSS")
			})
		})

		Convey("When posting malformed JSON", func() {
			req := httptest.NewRequest("POST", "/v1/scores", strings.NewReader("{nope"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting without a name", func() {
			req := httptest.NewRequest("POST", "/v1/scores", strings.NewReader(`{"score":100}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the gateway rejects the name", func() {
			deps.submitErr = service.ErrInvalidName
			req := httptest.NewRequest("POST", "/v1/scores", strings.NewReader(`{"name":"x","score":100}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the shared medium rejects the write", func() {
			deps.submitErr = repository.ErrRejectedWrite
			req := httptest.NewRequest("POST", "/v1/scores", strings.NewReader(`{"name":"x","score":100}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("When the shared medium is unreachable", func() {
			deps.submitErr = repository.ErrNetwork
			req := httptest.NewRequest("POST", "/v1/scores", strings.NewReader(`{"name":"x","score":100}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadGateway)
		})

		Convey("When the local medium cannot persist", func() {
			deps.submitErr = repository.ErrStorageUnavailable
			req := httptest.NewRequest("POST", "/v1/scores", strings.NewReader(`{"name":"x","score":100}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusInsufficientStorage)
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest("GET", "/v1/scores", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPunchHandler(t *testing.T) {
	Convey("Given a punch endpoint", t, func() {
		deps := &mockGateway{
			punchResult: service.PunchResult{
				SubmitResult: service.SubmitResult{
					Entry:    api.Entry{ID: "id-2", Name: "Boxer", Score: 7200, Rank: tier.A},
					Position: 1,
				},
				Comment: "warning",
				Effect:  "explosion",
			},
		}
		mux := newTestMux(deps)

		Convey("When posting a described punch", func() {
			body := `{"name":"Boxer","description":"a building-shattering straight"}`
			req := httptest.NewRequest("POST", "/v1/punch", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the verdict comes back with commentary", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var resp struct {
					Entry   api.Entry `json:"entry"`
					Comment string    `json:"comment"`
					Effect  string    `json:"effect"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Entry.Score, ShouldEqual, 7200)
				So(resp.Comment, ShouldEqual, "warning")
				So(resp.Effect, ShouldEqual, "explosion")
			})
		})

		Convey("When posting without a description", func() {
			req := httptest.NewRequest("POST", "/v1/punch", strings.NewReader(`{"name":"Boxer"}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given a leaderboard endpoint with three entries", t, func() {
		deps := &mockGateway{board: []api.Entry{
			{ID: "a", Name: "A", Score: 9000, Rank: tier.S},
			{ID: "b", Name: "B", Score: 5000, Rank: tier.B},
			{ID: "c", Name: "C", Score: 100, Rank: tier.C},
		}}
		mux := newTestMux(deps)

		get := func(target string) *httptest.ResponseRecorder {
			req := httptest.NewRequest("GET", target, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When requesting with a valid limit", func() {
			w := get("/v1/leaderboard?limit=2")
			So(w.Code, ShouldEqual, http.StatusOK)
			var entries []api.Entry
			So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].Score, ShouldEqual, 9000)
		})

		Convey("When the limit is missing or invalid", func() {
			So(get("/v1/leaderboard").Code, ShouldEqual, http.StatusBadRequest)
			So(get("/v1/leaderboard?limit=zero").Code, ShouldEqual, http.StatusBadRequest)
			So(get("/v1/leaderboard?limit=0").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the cap", func() {
			So(get("/v1/leaderboard?limit=101").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the board is empty", func() {
			deps.board = nil
			w := get("/v1/leaderboard?limit=10")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
		})
	})
}

func TestPositionHandler(t *testing.T) {
	Convey("Given a position endpoint", t, func() {
		deps := &mockGateway{position: 3}
		mux := newTestMux(deps)

		Convey("When requesting a score's position", func() {
			req := httptest.NewRequest("GET", "/v1/position?score=5000", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var resp struct {
				Score    int `json:"score"`
				Position int `json:"position"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Score, ShouldEqual, 5000)
			So(resp.Position, ShouldEqual, 3)
		})

		Convey("When the board cannot be consulted", func() {
			deps.position = -1
			req := httptest.NewRequest("GET", "/v1/position?score=5000", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "-1")
		})

		Convey("When the score is missing or negative", func() {
			for _, target := range []string{"/v1/position", "/v1/position?score=-5", "/v1/position?score=abc"} {
				req := httptest.NewRequest("GET", target, nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})
	})
}
