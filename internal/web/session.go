package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/gorilla/websocket"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/round"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/score"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/id"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/quiz"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/web/templates"
)

const writeWait = 10 * time.Second

// ErrSessionClosed is returned by dialogs still open when the socket closes.
var ErrSessionClosed = errors.New("session closed")

// Session draws one player's quiz over a websocket. It implements both
// quiz.Surface and quiz.Prompter by pushing out-of-band HTML fragments.
type Session struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending *pendingDialog

	closed    chan struct{}
	closeOnce sync.Once
}

type dialogReply struct {
	confirmed bool
	replaced  bool // a newer dialog took over the modal
}

type pendingDialog struct {
	id    string
	reply chan dialogReply
}

func NewSession(conn *websocket.Conn, logger *slog.Logger) *Session {
	return &Session{
		conn:   conn,
		logger: logger,
		closed: make(chan struct{}),
	}
}

// Close releases any dialog still waiting for an answer.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *Session) render(ctx context.Context, components ...templ.Component) error {
	var buf bytes.Buffer
	for _, c := range components {
		if err := c.Render(ctx, &buf); err != nil {
			return fmt.Errorf("render fragment: %w", err)
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, buf.Bytes()); err != nil {
		return fmt.Errorf("write fragment: %w", err)
	}
	return nil
}

// ============================================================================
// Surface
// ============================================================================

func (s *Session) ShowLoading(ctx context.Context) error {
	return s.render(ctx, templates.Loading(true))
}

func (s *Session) ShowError(ctx context.Context, message string) error {
	return s.render(ctx, templates.ErrorMessage(message, true))
}

func (s *Session) RenderRound(ctx context.Context, r round.Round) error {
	view := templates.RoundView{
		RoundID:  r.ID,
		ImageURL: r.PromptImageURL,
		Options:  make([]templates.OptionView, 0, len(r.Options)),
	}
	for i, label := range r.Options {
		view.Options = append(view.Options, templates.OptionView{Index: i, Label: label})
	}
	return s.render(ctx, templates.Round(view, true))
}

func (s *Session) ShowAnswerFeedback(ctx context.Context, fb quiz.Feedback) error {
	return s.render(ctx, templates.AnswerButtons(feedbackView(fb), true))
}

func feedbackView(fb quiz.Feedback) templates.RoundView {
	view := templates.RoundView{
		RoundID: fb.RoundID,
		Locked:  true,
		Options: make([]templates.OptionView, 0, len(fb.Options)),
	}
	for i, label := range fb.Options {
		state := templates.OptionIdle
		switch {
		case label == fb.Selected && fb.IsCorrect():
			state = templates.OptionSelectedCorrect
		case label == fb.Selected:
			state = templates.OptionSelectedWrong
		case fb.Revealed && label == fb.Correct:
			state = templates.OptionRevealed
		}
		view.Options = append(view.Options, templates.OptionView{Index: i, Label: label, State: state})
	}
	return view
}

func (s *Session) UpdateScoreboard(ctx context.Context, state score.State) error {
	return s.render(ctx, templates.Scoreboard(templates.ScoreView{
		Correct:   state.Correct,
		Incorrect: state.Incorrect,
	}, true))
}

// ============================================================================
// Prompter
// ============================================================================

// Confirm opens a two-button dialog and waits for the player's choice. A
// newer dialog taking over the modal ends the wait with quiz.ErrDialogReplaced.
func (s *Session) Confirm(ctx context.Context, p quiz.Prompt) (bool, error) {
	d := s.openDialog()
	view := templates.DialogView{
		ID:           d.id,
		Title:        p.Title,
		Text:         p.Text,
		Tone:         string(p.Tone),
		ConfirmLabel: p.ConfirmLabel,
		CancelLabel:  p.CancelLabel,
	}
	if err := s.render(ctx, templates.Dialog(view, true)); err != nil {
		s.dropDialog(d)
		return false, err
	}

	select {
	case r := <-d.reply:
		if r.replaced {
			return false, quiz.ErrDialogReplaced
		}
		return r.confirmed, s.render(ctx, templates.NoDialog(true))
	case <-ctx.Done():
		s.dropDialog(d)
		return false, ctx.Err()
	case <-s.closed:
		s.dropDialog(d)
		return false, ErrSessionClosed
	}
}

// Notify opens a one-button dialog that closes on click or after its timeout.
func (s *Session) Notify(ctx context.Context, n quiz.Notice) error {
	d := s.openDialog()
	view := templates.DialogView{
		ID:           d.id,
		Title:        n.Title,
		Text:         n.Text,
		Tone:         string(n.Tone),
		ConfirmLabel: n.ButtonLabel,
	}
	if err := s.render(ctx, templates.Dialog(view, true)); err != nil {
		s.dropDialog(d)
		return err
	}

	var expired <-chan time.Time
	if n.Timeout > 0 {
		t := time.NewTimer(n.Timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case r := <-d.reply:
		if r.replaced {
			return nil
		}
	case <-expired:
		if !s.dropDialog(d) {
			return nil
		}
	case <-ctx.Done():
		s.dropDialog(d)
		return ctx.Err()
	case <-s.closed:
		s.dropDialog(d)
		return ErrSessionClosed
	}
	return s.render(ctx, templates.NoDialog(true))
}

// Resolve answers the open dialog. Replies to any other dialog are ignored.
func (s *Session) Resolve(dialogID string, confirmed bool) bool {
	s.mu.Lock()
	d := s.pending
	if d == nil || d.id != dialogID {
		s.mu.Unlock()
		s.logger.Debug("stale dialog reply ignored", "dialog_id", dialogID)
		return false
	}
	s.pending = nil
	s.mu.Unlock()

	d.reply <- dialogReply{confirmed: confirmed}
	return true
}

// openDialog registers a new dialog. A dialog still open resolves as
// replaced.
func (s *Session) openDialog() *pendingDialog {
	d := &pendingDialog{id: id.New(), reply: make(chan dialogReply, 1)}

	s.mu.Lock()
	old := s.pending
	s.pending = d
	s.mu.Unlock()

	if old != nil {
		old.reply <- dialogReply{replaced: true}
	}
	return d
}

// dropDialog unregisters d and reports whether it was still the open dialog.
func (s *Session) dropDialog(d *pendingDialog) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != d {
		return false
	}
	s.pending = nil
	return true
}
