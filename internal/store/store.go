package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/score"
)

var ErrInvalidPlayer = errors.New("player id cannot be empty")

// Keys of the two stored counters.
const (
	KeyCorrect   = "correctScore"
	KeyIncorrect = "incorrectScore"
)

// ScoreStore persists a player's counters as string-encoded integers.
type ScoreStore interface {
	// Load never fails on missing or corrupt values; those read as 0.
	// Only storage I/O errors are returned.
	Load(ctx context.Context, playerID string) (score.State, error)
	Save(ctx context.Context, playerID string, state score.State) error
	Reset(ctx context.Context, playerID string) error
}

// decodeState turns stored key/value pairs into a State.
func decodeState(values map[string]string) score.State {
	return score.State{
		Correct:   parseCounter(values[KeyCorrect]),
		Incorrect: parseCounter(values[KeyIncorrect]),
	}
}

func encodeState(state score.State) map[string]string {
	return map[string]string{
		KeyCorrect:   strconv.Itoa(state.Correct),
		KeyIncorrect: strconv.Itoa(state.Incorrect),
	}
}

// parseCounter reads a stored counter, treating absent, unparsable and
// negative values as 0.
func parseCounter(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
