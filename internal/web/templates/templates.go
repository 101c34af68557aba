// Package templates renders the quiz page and the fragments pushed over the
// websocket. Fragments carry the id of the element they replace; when oob is
// set they are marked for an out-of-band swap.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
)

//go:embed html/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("quiz").
	Funcs(template.FuncMap{"label": label}).
	ParseFS(templatesFS, "html/*.html"))

// Element ids shared by the page and its fragments.
const (
	QuizContainerID = "quiz-container"
	AnswerButtonsID = "answer-buttons"
	ScoreboardID    = "scoreboard"
	DialogID        = "dialog"
	ResetButtonID   = "reset-button"
	DecoyToggleID   = "include-civilians-toggle"
)

// PlaceholderImage replaces a prompt image that fails to load.
const PlaceholderImage = "/static/placeholder.svg"

// ImageErrorAlt is the alt text of a prompt image that failed to load.
const ImageErrorAlt = "Fotoğraf Yüklenemedi"

// EscapeText escapes s for HTML text. Backticks are escaped too so a label can
// never close a template literal.
func EscapeText(s string) string {
	return strings.ReplaceAll(templ.EscapeString(s), "`", "&#96;")
}

// label renders player-facing text in element content.
func label(s string) template.HTML {
	return template.HTML(EscapeText(s))
}

// component renders the named template as a templ component.
func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := templates.ExecuteTemplate(w, name, data); err != nil {
			return fmt.Errorf("execute %s: %w", name, err)
		}
		return nil
	})
}

type fragment struct {
	OOB bool
}
