package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/round"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/score"
)

const tracerName = "github.com/BayramReisbirligi/TeroristQuiz/internal/quiz"

// ErrorMessage is shown when no playable pool could be built.
const ErrorMessage = "Hata: Veriler yüklenemedi. Lütfen sayfayı yenileyin."

// Phase is where the controller is in the round cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseAwaitingAnswer
	PhaseResolving
	PhaseMilestone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseAwaitingAnswer:
		return "awaiting_answer"
	case PhaseResolving:
		return "resolving"
	case PhaseMilestone:
		return "milestone"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

var (
	resetPrompt = Prompt{
		Title:        "Skoru Sıfırla",
		Text:         "Tüm skorlar sıfırlanacak. Emin misiniz?",
		Tone:         score.ToneWarning,
		ConfirmLabel: "Evet, sıfırla",
		CancelLabel:  "İptal",
	}
	resetDoneNotice = Notice{
		Title:       "Sıfırlandı!",
		Text:        "Skorlar başarıyla sıfırlandı.",
		Tone:        score.ToneSuccess,
		ButtonLabel: "Tamam",
	}
)

// Options configures a Controller.
type Options struct {
	PlayerID       string
	IncludeDecoys  bool
	MilestoneEvery int // 0 uses MilestoneEvery
	Pacing         Pacing
	Waiter         Waiter     // nil uses TimerWaiter
	Rand           *rand.Rand // nil uses the package-level source
	Logger         *slog.Logger
}

// Controller runs the quiz loop for one player: load a pool, build and render
// a round, wait for an answer, score it, and move on. It is safe for
// concurrent use; the answering flag keeps at most one round resolving.
type Controller struct {
	playerID       string
	builder        PoolBuilder
	scores         ScoreStore
	surface        Surface
	prompter       Prompter
	waiter         Waiter
	pacing         Pacing
	milestoneEvery int
	logger         *slog.Logger

	mu            sync.Mutex
	rng           *rand.Rand
	phase         Phase
	answering     bool
	includeDecoys bool
	state         score.State
	answered      int
	current       *round.Round
	generation    uint64 // bumped by every load; stale loads drop their result
}

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	Phase         Phase
	Score         score.State
	Answered      int
	Answering     bool
	IncludeDecoys bool
	Round         *round.Round
}

func New(builder PoolBuilder, scores ScoreStore, surface Surface, prompter Prompter, opts Options) *Controller {
	c := &Controller{
		playerID:       opts.PlayerID,
		builder:        builder,
		scores:         scores,
		surface:        surface,
		prompter:       prompter,
		waiter:         opts.Waiter,
		pacing:         opts.Pacing,
		milestoneEvery: opts.MilestoneEvery,
		logger:         opts.Logger,
		rng:            opts.Rand,
		includeDecoys:  opts.IncludeDecoys,
	}
	if c.waiter == nil {
		c.waiter = TimerWaiter{}
	}
	if c.milestoneEvery <= 0 {
		c.milestoneEvery = MilestoneEvery
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("player_id", c.playerID)
	return c
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var r *round.Round
	if c.current != nil {
		copied := *c.current
		r = &copied
	}
	return Snapshot{
		Phase:         c.phase,
		Score:         c.state,
		Answered:      c.answered,
		Answering:     c.answering,
		IncludeDecoys: c.includeDecoys,
		Round:         r,
	}
}

// Start loads the stored score, draws the scoreboard and starts the first
// round. Storage errors fall back to a zero score.
func (c *Controller) Start(ctx context.Context) error {
	state, err := c.scores.Load(ctx, c.playerID)
	if err != nil {
		c.logger.Warn("failed to load score, starting from zero", "error", err)
		state = score.State{}
	}

	c.mu.Lock()
	c.state = state
	c.answered = state.Total()
	c.mu.Unlock()

	if err := c.surface.UpdateScoreboard(ctx, state); err != nil {
		return fmt.Errorf("update scoreboard: %w", err)
	}
	return c.StartRound(ctx)
}

// ============================================================================
// Rounds
// ============================================================================

// StartRound loads a new round. It is ignored while a round is loading,
// waiting for an answer, or resolving.
func (c *Controller) StartRound(ctx context.Context) error {
	c.mu.Lock()
	if c.answering || c.phase == PhaseLoading || c.phase == PhaseAwaitingAnswer || c.phase == PhaseResolving {
		phase := c.phase
		c.mu.Unlock()
		c.logger.Debug("start round ignored", "phase", phase.String())
		return nil
	}
	gen := c.beginLoadLocked()
	decoys := c.includeDecoys
	c.mu.Unlock()

	return c.loadRound(ctx, gen, decoys)
}

func (c *Controller) beginLoadLocked() uint64 {
	c.generation++
	c.phase = PhaseLoading
	c.current = nil
	return c.generation
}

func (c *Controller) loadRound(ctx context.Context, gen uint64, decoys bool) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "quiz.StartRound",
		trace.WithAttributes(attribute.Bool("quiz.include_decoys", decoys)),
	)
	defer span.End()

	if err := c.surface.ShowLoading(ctx); err != nil {
		c.abortLoad(gen)
		return fmt.Errorf("show loading: %w", err)
	}

	pool, err := c.builder.BuildPool(ctx, decoys)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("failed to build pool", "error", err)
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return nil
	}
	if len(pool) == 0 {
		c.phase = PhaseFailed
		c.mu.Unlock()
		span.SetStatus(codes.Error, "empty pool")
		return c.surface.ShowError(ctx, ErrorMessage)
	}
	r, err := round.Build(pool, c.rng)
	if err != nil {
		c.phase = PhaseFailed
		c.mu.Unlock()
		return c.surface.ShowError(ctx, ErrorMessage)
	}
	c.current = r
	c.phase = PhaseAwaitingAnswer
	c.mu.Unlock()

	span.SetAttributes(
		attribute.Int("quiz.pool_size", len(pool)),
		attribute.Int("quiz.options", len(r.Options)),
	)

	if err := c.surface.RenderRound(ctx, *r); err != nil {
		return fmt.Errorf("render round: %w", err)
	}
	return nil
}

func (c *Controller) abortLoad(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation && c.phase == PhaseLoading {
		c.phase = PhaseIdle
	}
}

// ============================================================================
// Answers
// ============================================================================

// SelectOption answers the current round with the option at index. Clicks on
// a round that is no longer current, or on an unknown index, are ignored.
func (c *Controller) SelectOption(ctx context.Context, roundID string, index int) error {
	c.mu.Lock()
	r := c.current
	c.mu.Unlock()

	if r == nil || r.ID != roundID {
		c.logger.Debug("stale selection ignored", "round_id", roundID)
		return nil
	}
	selected, ok := r.Option(index)
	if !ok {
		return nil
	}
	return c.OnAnswerSelected(ctx, r.CorrectLabel, selected)
}

// OnAnswerSelected resolves the current round. A second call while the first
// is still resolving is ignored, so a double click scores once.
//
// The sequence is: mark the selection, wait the feedback delay, reveal the
// correct answer if the selection was wrong, show the verdict, then record
// and persist the score before the next round is scheduled.
func (c *Controller) OnAnswerSelected(ctx context.Context, correct, selected string) error {
	c.mu.Lock()
	if c.answering || c.phase != PhaseAwaitingAnswer || c.current == nil {
		c.mu.Unlock()
		c.logger.Debug("answer ignored")
		return nil
	}
	c.answering = true
	c.phase = PhaseResolving
	r := c.current
	c.mu.Unlock()

	fb := Feedback{
		RoundID:  r.ID,
		Options:  r.Options,
		Selected: selected,
		Correct:  correct,
	}
	if err := c.presentFeedback(ctx, fb); err != nil {
		return c.abandon(err)
	}

	c.mu.Lock()
	c.state = c.state.Record(fb.IsCorrect())
	state := c.state
	c.current = nil
	c.mu.Unlock()

	c.logger.Info("answer recorded", "correct", fb.IsCorrect(), "score_correct", state.Correct, "score_incorrect", state.Incorrect)
	c.persist(ctx, state)

	err := c.surface.UpdateScoreboard(ctx, state)

	c.mu.Lock()
	c.answering = false
	c.phase = PhaseIdle
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("update scoreboard: %w", err)
	}
	return c.OnRoundResolved(ctx)
}

func (c *Controller) presentFeedback(ctx context.Context, fb Feedback) error {
	if err := c.surface.ShowAnswerFeedback(ctx, fb); err != nil {
		return fmt.Errorf("show feedback: %w", err)
	}
	if err := c.waiter.Wait(ctx, c.pacing.Feedback); err != nil {
		return err
	}
	if !fb.IsCorrect() {
		fb.Revealed = true
		if err := c.surface.ShowAnswerFeedback(ctx, fb); err != nil {
			return fmt.Errorf("reveal answer: %w", err)
		}
	}
	return c.prompter.Notify(ctx, c.verdict(fb))
}

func (c *Controller) verdict(fb Feedback) Notice {
	if fb.IsCorrect() {
		return Notice{
			Title:       "Bravo!",
			Text:        "Doğru cevap!",
			Tone:        score.ToneSuccess,
			ButtonLabel: "Devam",
			Timeout:     c.pacing.CorrectNotice,
		}
	}
	return Notice{
		Title:       "Maalesef!",
		Text:        "Doğru cevap: " + fb.Correct,
		Tone:        score.ToneError,
		ButtonLabel: "Devam",
		Timeout:     c.pacing.WrongNotice,
	}
}

// abandon drops a resolution interrupted by a closed connection.
func (c *Controller) abandon(err error) error {
	c.mu.Lock()
	c.answering = false
	c.current = nil
	c.phase = PhaseIdle
	c.mu.Unlock()
	return err
}

// OnRoundResolved counts the answer and either shows the milestone summary or
// schedules the next round. Only an explicit "Baştan" zeroes the score; a
// summary closed by another dialog carries on.
func (c *Controller) OnRoundResolved(ctx context.Context) error {
	c.mu.Lock()
	c.answered++
	answered, correct := c.answered, c.state.Correct
	milestone := score.IsMilestone(answered, c.milestoneEvery)
	if milestone {
		c.phase = PhaseMilestone
	}
	c.mu.Unlock()

	if !milestone {
		if err := c.waiter.Wait(ctx, c.pacing.Advance); err != nil {
			return err
		}
		return c.StartRound(ctx)
	}

	m := score.NewMilestone(correct, answered)
	c.logger.Info("milestone reached", "answered", answered, "rate", m.Rate)

	carryOn, err := c.prompter.Confirm(ctx, Prompt{
		Title:        m.Tier.Title,
		Text:         m.Text(),
		Tone:         m.Tier.Tone,
		ConfirmLabel: "Devam",
		CancelLabel:  "Baştan",
	})

	c.mu.Lock()
	if c.phase == PhaseMilestone {
		c.phase = PhaseIdle
	}
	c.mu.Unlock()

	switch {
	case errors.Is(err, ErrDialogReplaced):
		c.logger.Info("milestone summary replaced, continuing", "answered", answered)
	case err != nil:
		return err
	case !carryOn:
		if err := c.zeroScore(ctx); err != nil {
			return err
		}
	}
	return c.StartRound(ctx)
}

// ============================================================================
// Settings and score
// ============================================================================

// ToggleDecoys switches decoy entries on or off and restarts the round. While
// a round is resolving, or its milestone summary is open, the setting only
// applies to the next round.
func (c *Controller) ToggleDecoys(ctx context.Context, enabled bool) error {
	c.mu.Lock()
	c.includeDecoys = enabled
	if c.answering || c.phase == PhaseResolving || c.phase == PhaseMilestone {
		c.mu.Unlock()
		c.logger.Debug("decoy toggle deferred to next round", "enabled", enabled)
		return nil
	}
	gen := c.beginLoadLocked()
	c.mu.Unlock()

	return c.loadRound(ctx, gen, enabled)
}

// ResetScore asks for confirmation and zeroes the score. The current round
// keeps going. A prompt closed by another dialog counts as cancelled.
func (c *Controller) ResetScore(ctx context.Context) error {
	confirmed, err := c.prompter.Confirm(ctx, resetPrompt)
	if errors.Is(err, ErrDialogReplaced) {
		c.logger.Debug("reset prompt replaced")
		return nil
	}
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	if err := c.zeroScore(ctx); err != nil {
		return err
	}
	c.logger.Info("score reset")
	return c.prompter.Notify(ctx, resetDoneNotice)
}

func (c *Controller) zeroScore(ctx context.Context) error {
	c.mu.Lock()
	c.state = score.State{}
	c.answered = 0
	c.mu.Unlock()

	if err := c.scores.Reset(ctx, c.playerID); err != nil {
		c.logger.Error("failed to reset score", "error", err)
	}
	if err := c.surface.UpdateScoreboard(ctx, score.State{}); err != nil {
		return fmt.Errorf("update scoreboard: %w", err)
	}
	return nil
}

func (c *Controller) persist(ctx context.Context, state score.State) {
	if err := c.scores.Save(ctx, c.playerID, state); err != nil {
		c.logger.Error("failed to save score", "error", err)
	}
}
