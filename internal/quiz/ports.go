package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/entry"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/round"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/score"
)

// PoolBuilder produces the entries a round is drawn from.
type PoolBuilder interface {
	BuildPool(ctx context.Context, includeDecoys bool) (entry.Pool, error)
}

// ScoreStore persists a player's counters.
type ScoreStore interface {
	Load(ctx context.Context, playerID string) (score.State, error)
	Save(ctx context.Context, playerID string, state score.State) error
	Reset(ctx context.Context, playerID string) error
}

// Surface draws the quiz for one player.
type Surface interface {
	ShowLoading(ctx context.Context) error
	ShowError(ctx context.Context, message string) error
	RenderRound(ctx context.Context, r round.Round) error
	ShowAnswerFeedback(ctx context.Context, fb Feedback) error
	UpdateScoreboard(ctx context.Context, state score.State) error
}

// ErrDialogReplaced is returned by Confirm when a newer dialog took over the
// modal before the player chose. It is not an answer.
var ErrDialogReplaced = errors.New("dialog replaced")

// Prompter is the modal dialog layer. Both calls block until the player
// answers, the notice times out, or ctx is done.
type Prompter interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
	Notify(ctx context.Context, n Notice) error
}

// Feedback describes the answer controls once a selection was made.
// Revealed is set on the second pass, after the feedback delay, when the
// correct control is highlighted as well.
type Feedback struct {
	RoundID  string
	Options  []string
	Selected string
	Correct  string
	Revealed bool
}

func (f Feedback) IsCorrect() bool {
	return f.Selected == f.Correct
}

// Prompt is a two-choice dialog.
type Prompt struct {
	Title        string
	Text         string
	Tone         score.Tone
	ConfirmLabel string
	CancelLabel  string
}

// Notice is a one-button dialog. A zero Timeout waits for dismissal.
type Notice struct {
	Title       string
	Text        string
	Tone        score.Tone
	ButtonLabel string
	Timeout     time.Duration
}
