package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/id"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/quiz"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/web/templates"
)

// PlayerCookie identifies a browser across visits.
const PlayerCookie = "quiz_player"

const (
	pageTitle      = "Terörist Quiz"
	socketPath     = "/ws"
	maxMessageSize = 4096
	cookieMaxAge   = 365 * 24 * 60 * 60
)

//go:embed static
var staticFiles embed.FS

// Options configures the quiz pages.
type Options struct {
	IncludeDecoys  bool
	MilestoneEvery int
	Pacing         quiz.Pacing
	SecureCookie   bool
}

type Handler struct {
	builder  quiz.PoolBuilder
	scores   quiz.ScoreStore
	logger   *slog.Logger
	opts     Options
	upgrader websocket.Upgrader
}

func NewHandler(builder quiz.PoolBuilder, scores quiz.ScoreStore, logger *slog.Logger, opts Options) *Handler {
	return &Handler{
		builder: builder,
		scores:  scores,
		logger:  logger,
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Register mounts the page, the socket and the static assets on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}

	mux.HandleFunc("GET /{$}", h.servePage)
	mux.HandleFunc("GET "+socketPath, h.serveSocket)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
}

// ============================================================================
// Page
// ============================================================================

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request) {
	playerID, cookie := h.player(r)
	if cookie != nil {
		http.SetCookie(w, cookie)
	}

	state, err := h.scores.Load(r.Context(), playerID)
	if err != nil {
		h.logger.Warn("failed to load score for page", "player_id", playerID, "error", err)
	}

	page := templates.Page(templates.PageView{
		Title:         pageTitle,
		SocketPath:    socketPath,
		IncludeDecoys: h.opts.IncludeDecoys,
		Score:         templates.ScoreView{Correct: state.Correct, Incorrect: state.Incorrect},
	})
	templ.Handler(page).ServeHTTP(w, r)
}

// player returns the player id from the request cookie, or a new id with the
// cookie that stores it.
func (h *Handler) player(r *http.Request) (string, *http.Cookie) {
	if c, err := r.Cookie(PlayerCookie); err == nil && id.Valid(c.Value) {
		return c.Value, nil
	}

	playerID := id.New()
	return playerID, &http.Cookie{
		Name:     PlayerCookie,
		Value:    playerID,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// PlayerID reads the player id from the player query parameter or, failing
// that, the player cookie.
func PlayerID(r *http.Request) (string, bool) {
	if p := r.URL.Query().Get("player"); id.Valid(p) {
		return p, true
	}
	if c, err := r.Cookie(PlayerCookie); err == nil && id.Valid(c.Value) {
		return c.Value, true
	}
	return "", false
}

// ============================================================================
// Socket
// ============================================================================

// clientMessage is what htmx sends for a ws-send element: the hx-vals object
// merged with the values of the enclosing form.
type clientMessage struct {
	Action string `json:"action"`
	Round  string `json:"round"`
	Option string `json:"option"`
	Dialog string `json:"dialog"`
	Choice string `json:"choice"`
	Decoys string `json:"decoys"`
}

func (h *Handler) serveSocket(w http.ResponseWriter, r *http.Request) {
	playerID, cookie := h.player(r)
	header := http.Header{}
	if cookie != nil {
		header.Add("Set-Cookie", cookie.String())
	}

	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	connLogger := h.logger.With("conn_id", uuid.NewString())
	logger := connLogger.With("player_id", playerID)
	logger.Info("player connected")
	start := time.Now()

	ctx, cancel := context.WithCancel(r.Context())
	session := NewSession(conn, logger)
	ctrl := quiz.New(h.builder, h.scores, session, session, quiz.Options{
		PlayerID:       playerID,
		IncludeDecoys:  h.opts.IncludeDecoys,
		MilestoneEvery: h.opts.MilestoneEvery,
		Pacing:         h.opts.Pacing,
		Logger:         connLogger, // the controller adds player_id
	})

	var wg sync.WaitGroup
	dispatch := func(action string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !isDisconnect(err) {
				logger.Error("quiz action failed", "action", action, "error", err)
			}
		}()
	}

	dispatch("start", ctrl.Start)
	h.readLoop(conn, session, ctrl, logger, dispatch)

	cancel()
	session.Close()
	wg.Wait()
	logger.Info("player disconnected", "duration", time.Since(start).String())
}

// readLoop dispatches each client message until the socket closes. Actions
// run in their own goroutine so a pending dialog never blocks the reply that
// resolves it.
func (h *Handler) readLoop(conn *websocket.Conn, session *Session, ctrl *quiz.Controller, logger *slog.Logger, dispatch func(string, func(context.Context) error)) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("malformed client message", "error", err)
			continue
		}

		switch msg.Action {
		case "answer":
			index, err := strconv.Atoi(msg.Option)
			if err != nil {
				logger.Debug("invalid option index", "option", msg.Option)
				continue
			}
			roundID := msg.Round
			dispatch("answer", func(ctx context.Context) error {
				return ctrl.SelectOption(ctx, roundID, index)
			})
		case "toggle":
			enabled := msg.Decoys == "on"
			dispatch("toggle", func(ctx context.Context) error {
				return ctrl.ToggleDecoys(ctx, enabled)
			})
		case "reset":
			dispatch("reset", ctrl.ResetScore)
		case "dialog":
			session.Resolve(msg.Dialog, msg.Choice == "confirm")
		default:
			logger.Debug("unknown client action", "action", msg.Action)
		}
	}
}

func isDisconnect(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, ErrSessionClosed) ||
		errors.Is(err, websocket.ErrCloseSent)
}
