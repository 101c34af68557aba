package templates

import (
	"fmt"

	"github.com/a-h/templ"
)

// OptionState is how an answer button is drawn.
type OptionState int

const (
	OptionIdle OptionState = iota
	OptionSelectedCorrect
	OptionSelectedWrong
	OptionRevealed
)

func (s OptionState) class() string {
	switch s {
	case OptionSelectedCorrect, OptionRevealed:
		return "answer-button btn btn-success"
	case OptionSelectedWrong:
		return "answer-button btn btn-error"
	default:
		return "answer-button btn btn-outline"
	}
}

// OptionView is one answer button. Buttons reference their option by index
// so labels never reach an attribute that is parsed as JSON.
type OptionView struct {
	Index int
	Label string
	State OptionState
}

// RoundView is a rendered round.
type RoundView struct {
	RoundID  string
	ImageURL string
	Options  []OptionView
	Locked   bool // buttons no longer accept clicks
}

// ScoreView is the scoreboard.
type ScoreView struct {
	Correct   int
	Incorrect int
}

// DialogView is a modal. An empty CancelLabel draws a single button.
type DialogView struct {
	ID           string
	Title        string
	Text         string
	Tone         string
	ConfirmLabel string
	CancelLabel  string
}

type errorData struct {
	Message string
	OOB     bool
}

type buttonData struct {
	Index int
	Label string
	Class string
	Delay string
}

type roundData struct {
	RoundView
	Buttons []buttonData
	OOB     bool
}

func newRoundData(v RoundView, oob bool) roundData {
	d := roundData{RoundView: v, OOB: oob, Buttons: make([]buttonData, 0, len(v.Options))}
	for _, o := range v.Options {
		d.Buttons = append(d.Buttons, buttonData{
			Index: o.Index,
			Label: o.Label,
			Class: o.State.class(),
			Delay: fmt.Sprintf("%.1fs", float64(o.Index)*0.1),
		})
	}
	return d
}

type scoreData struct {
	ScoreView
	OOB bool
}

type dialogData struct {
	DialogView
	OOB bool
}

// Loading replaces the prompt with the loading message and clears the answers.
func Loading(oob bool) templ.Component {
	return component("loading", fragment{OOB: oob})
}

// ErrorMessage replaces the prompt with message and clears the answers.
func ErrorMessage(message string, oob bool) templ.Component {
	return component("error", errorData{Message: message, OOB: oob})
}

// Round draws the prompt image followed by the answer buttons.
func Round(v RoundView, oob bool) templ.Component {
	return component("round", newRoundData(v, oob))
}

// AnswerButtons draws the answer controls of a round.
func AnswerButtons(v RoundView, oob bool) templ.Component {
	return component("answer-buttons", newRoundData(v, oob))
}

func Scoreboard(v ScoreView, oob bool) templ.Component {
	return component("scoreboard", scoreData{ScoreView: v, OOB: oob})
}

// Dialog draws an open modal. Its buttons answer with the dialog id so late
// clicks on a replaced dialog are ignored.
func Dialog(v DialogView, oob bool) templ.Component {
	return component("dialog", dialogData{DialogView: v, OOB: oob})
}

// NoDialog closes any open modal.
func NoDialog(oob bool) templ.Component {
	return component("no-dialog", fragment{OOB: oob})
}
