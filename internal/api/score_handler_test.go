package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/api"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/score"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/store"
)

const testPlayer = "a1b2c3d4e5f6g7h8"

func queryPlayer(r *http.Request) (string, bool) {
	p := r.URL.Query().Get("player")
	return p, p != ""
}

func setup(t *testing.T) (http.Handler, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	api.RegisterRoutes(mux, api.NewHandler(s, queryPlayer, logger))

	return api.Logging(logger)(api.CORS(mux)), s
}

func TestGetScore(t *testing.T) {
	h, s := setup(t)
	if err := s.Save(context.Background(), testPlayer, score.State{Correct: 12, Incorrect: 8}); err != nil {
		t.Fatalf("save: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/score?player="+testPlayer, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp api.ScoreResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Correct != 12 || resp.Incorrect != 8 || resp.Answered != 20 {
		t.Errorf("unexpected counters %+v", resp)
	}
	if resp.SuccessRate != 60 || resp.Tier != score.TierGood.Title {
		t.Errorf("unexpected rate %v tier %q", resp.SuccessRate, resp.Tier)
	}
}

func TestGetScore_UnknownPlayerIsZero(t *testing.T) {
	h, _ := setup(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/score?player=newcomer", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp api.ScoreResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Answered != 0 || resp.SuccessRate != 0 {
		t.Errorf("expected an empty score, got %+v", resp)
	}
}

func TestGetScore_MissingPlayer(t *testing.T) {
	h, _ := setup(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/score", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestResetScore(t *testing.T) {
	h, s := setup(t)
	s.Save(context.Background(), testPlayer, score.State{Correct: 3, Incorrect: 1})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/score?player="+testPlayer, nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("reset %d: expected 204, got %d", i, rec.Code)
		}
	}

	got, err := s.Load(context.Background(), testPlayer)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != (score.State{}) {
		t.Errorf("expected zero state, got %+v", got)
	}
}

func TestHealth(t *testing.T) {
	h, _ := setup(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h, _ := setup(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/score", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS headers")
	}
}
