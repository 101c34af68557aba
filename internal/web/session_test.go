package web_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/quiz"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/web"
)

const closedDialog = `<div id="dialog" hx-swap-oob="true"></div>`

// newSession returns a server-side session and the client end of its socket.
func newSession(t *testing.T) (*web.Session, *websocket.Conn) {
	t.Helper()

	sessions := make(chan *web.Session, 1)
	done := make(chan struct{})
	upgrader := websocket.Upgrader{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		sessions <- web.NewSession(conn, logger)
		<-done
	}))
	t.Cleanup(func() {
		close(done)
		srv.Close()
	})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case s := <-sessions:
		return s, client
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the session")
		return nil, nil
	}
}

type confirmResult struct {
	confirmed bool
	err       error
}

func confirmAsync(ctx context.Context, s *web.Session, p quiz.Prompt) <-chan confirmResult {
	out := make(chan confirmResult, 1)
	go func() {
		ok, err := s.Confirm(ctx, p)
		out <- confirmResult{confirmed: ok, err: err}
	}()
	return out
}

func notifyAsync(ctx context.Context, s *web.Session, n quiz.Notice) <-chan error {
	out := make(chan error, 1)
	go func() { out <- s.Notify(ctx, n) }()
	return out
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the dialog to return")
		var zero T
		return zero
	}
}

// openedDialog reads until a dialog is drawn and returns its id.
func openedDialog(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	msg := readUntil(t, conn, `"choice":"confirm"`)
	m := dialogPattern.FindStringSubmatch(msg)
	if m == nil {
		t.Fatalf("expected a dialog id in %q", msg)
	}
	return m[1]
}

var resetPrompt = quiz.Prompt{Title: "Skoru Sıfırla", ConfirmLabel: "Evet", CancelLabel: "İptal"}

func TestSession_ConfirmResolved(t *testing.T) {
	s, client := newSession(t)

	res := confirmAsync(context.Background(), s, resetPrompt)
	dialogID := openedDialog(t, client)

	if !s.Resolve(dialogID, true) {
		t.Fatal("expected the open dialog to accept the reply")
	}
	got := waitFor(t, res)
	if got.err != nil || !got.confirmed {
		t.Errorf("expected a confirmation, got %+v", got)
	}
	readUntil(t, client, closedDialog)
}

func TestSession_ConfirmReplacedByNewerDialog(t *testing.T) {
	s, client := newSession(t)

	first := confirmAsync(context.Background(), s, quiz.Prompt{Title: "İyi", ConfirmLabel: "Devam", CancelLabel: "Baştan"})
	firstID := openedDialog(t, client)

	second := confirmAsync(context.Background(), s, resetPrompt)
	got := waitFor(t, first)
	if !errors.Is(got.err, quiz.ErrDialogReplaced) || got.confirmed {
		t.Fatalf("expected the first dialog to be replaced, got %+v", got)
	}
	secondID := openedDialog(t, client)

	if s.Resolve(firstID, false) {
		t.Error("expected a reply to the replaced dialog to be ignored")
	}
	if !s.Resolve(secondID, false) {
		t.Fatal("expected the newer dialog to accept the reply")
	}
	got = waitFor(t, second)
	if got.err != nil || got.confirmed {
		t.Errorf("expected a cancellation, got %+v", got)
	}
}

func TestSession_NotifyReplacedReturnsQuietly(t *testing.T) {
	s, client := newSession(t)

	notice := notifyAsync(context.Background(), s, quiz.Notice{Title: "Bravo!", ButtonLabel: "Devam"})
	openedDialog(t, client)

	res := confirmAsync(context.Background(), s, resetPrompt)
	if err := waitFor(t, notice); err != nil {
		t.Errorf("expected a replaced notice to return nil, got %v", err)
	}
	s.Resolve(openedDialog(t, client), true)
	waitFor(t, res)
}

func TestSession_ResolveUnknownDialog(t *testing.T) {
	s, client := newSession(t)

	if s.Resolve("nothingopen00000", true) {
		t.Error("expected no dialog to accept a reply")
	}

	res := confirmAsync(context.Background(), s, resetPrompt)
	dialogID := openedDialog(t, client)

	if s.Resolve("someoneelse00000", true) {
		t.Error("expected a reply with the wrong id to be ignored")
	}
	if !s.Resolve(dialogID, true) {
		t.Fatal("expected the open dialog to accept the reply")
	}
	waitFor(t, res)

	if s.Resolve(dialogID, true) {
		t.Error("expected a second reply to the same dialog to be ignored")
	}
}

func TestSession_NotifyTimesOut(t *testing.T) {
	s, client := newSession(t)

	notice := notifyAsync(context.Background(), s, quiz.Notice{Title: "Bravo!", ButtonLabel: "Devam", Timeout: 20 * time.Millisecond})
	dialogID := openedDialog(t, client)

	if err := waitFor(t, notice); err != nil {
		t.Fatalf("expected the notice to expire quietly, got %v", err)
	}
	readUntil(t, client, closedDialog)

	if s.Resolve(dialogID, true) {
		t.Error("expected a click on an expired notice to be ignored")
	}
}

func TestSession_NotifyTimeoutRacesClick(t *testing.T) {
	s, client := newSession(t)

	for i := 0; i < 20; i++ {
		notice := notifyAsync(context.Background(), s, quiz.Notice{Title: "Bravo!", ButtonLabel: "Devam", Timeout: time.Millisecond})
		dialogID := openedDialog(t, client)

		s.Resolve(dialogID, true)
		if err := waitFor(t, notice); err != nil {
			t.Fatalf("round %d: expected nil, got %v", i, err)
		}
		if s.Resolve(dialogID, true) {
			t.Fatalf("round %d: expected the dialog to be closed", i)
		}
	}
}

func TestSession_CloseReleasesPendingDialog(t *testing.T) {
	s, client := newSession(t)

	res := confirmAsync(context.Background(), s, resetPrompt)
	dialogID := openedDialog(t, client)

	s.Close()
	got := waitFor(t, res)
	if !errors.Is(got.err, web.ErrSessionClosed) || got.confirmed {
		t.Errorf("expected ErrSessionClosed, got %+v", got)
	}
	if s.Resolve(dialogID, true) {
		t.Error("expected no dialog to remain open after close")
	}

	notice := notifyAsync(context.Background(), s, quiz.Notice{Title: "Bravo!", ButtonLabel: "Devam"})
	if err := waitFor(t, notice); !errors.Is(err, web.ErrSessionClosed) {
		t.Errorf("expected a notice on a closed session to fail, got %v", err)
	}
}

func TestSession_ContextCancelReleasesDialog(t *testing.T) {
	s, client := newSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	res := confirmAsync(ctx, s, resetPrompt)
	dialogID := openedDialog(t, client)

	cancel()
	got := waitFor(t, res)
	if !errors.Is(got.err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %+v", got)
	}
	if s.Resolve(dialogID, true) {
		t.Error("expected the cancelled dialog to be closed")
	}
}
