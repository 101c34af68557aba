package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/score"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoad_AbsentPlayerDefaultsToZero(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (score.State{}) {
		t.Errorf("expected zero state, got %+v", got)
	}
}

func TestLoad_CorruptValuesDefaultToZero(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   score.State
	}{
		{"both non numeric", map[string]string{KeyCorrect: "abc", KeyIncorrect: "NaN"}, score.State{}},
		{"empty strings", map[string]string{KeyCorrect: "", KeyIncorrect: ""}, score.State{}},
		{"negative", map[string]string{KeyCorrect: "-4", KeyIncorrect: "2"}, score.State{Incorrect: 2}},
		{"only correct stored", map[string]string{KeyCorrect: "7"}, score.State{Correct: 7}},
		{"float", map[string]string{KeyCorrect: "1.5", KeyIncorrect: "3"}, score.State{Incorrect: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()

			if err := s.put(ctx, "p1", tt.values); err != nil {
				t.Fatalf("seed values: %v", err)
			}

			got, err := s.Load(ctx, "p1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := score.State{Correct: 12, Incorrect: 3}
	if err := s.Save(ctx, "p1", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx, "p1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	// Overwrite keeps one row per field.
	want = score.State{Correct: 13, Incorrect: 3}
	if err := s.Save(ctx, "p1", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ = s.Load(ctx, "p1")
	if got != want {
		t.Errorf("expected %+v after overwrite, got %+v", want, got)
	}
}

func TestSave_PlayersAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Save(ctx, "p1", score.State{Correct: 1})
	s.Save(ctx, "p2", score.State{Incorrect: 9})

	got, _ := s.Load(ctx, "p1")
	if got != (score.State{Correct: 1}) {
		t.Errorf("expected p1 untouched, got %+v", got)
	}
}

func TestReset_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "p1", score.State{Correct: 5, Incorrect: 5}); err != nil {
		t.Fatalf("save: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.Reset(ctx, "p1"); err != nil {
			t.Fatalf("reset %d: %v", i, err)
		}
		got, err := s.Load(ctx, "p1")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if got != (score.State{}) {
			t.Errorf("expected zero state after reset %d, got %+v", i, got)
		}
	}
}

func TestEmptyPlayerRejected(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Load(context.Background(), ""); !errors.Is(err, ErrInvalidPlayer) {
		t.Errorf("expected ErrInvalidPlayer from Load, got %v", err)
	}
	if err := s.Save(context.Background(), "", score.State{}); !errors.Is(err, ErrInvalidPlayer) {
		t.Errorf("expected ErrInvalidPlayer from Save, got %v", err)
	}
}
