package score

import "fmt"

// State is a player's running score.
type State struct {
	Correct   int
	Incorrect int
}

// Total is the number of answered questions.
func (s State) Total() int {
	return s.Correct + s.Incorrect
}

// Record returns the state with one more correct or incorrect answer.
func (s State) Record(correct bool) State {
	if correct {
		s.Correct++
	} else {
		s.Incorrect++
	}
	return s
}

// SuccessRate is correct/answered as a percentage. Zero answers yield 0.
func SuccessRate(correct, answered int) float64 {
	if answered <= 0 {
		return 0
	}
	return float64(correct) / float64(answered) * 100
}

// Tone drives the icon and colour of a dialog.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
	ToneInfo    Tone = "info"
)

// Tier is the summary message picked for a success rate.
type Tier struct {
	Title string
	Tone  Tone
}

var (
	TierExcellent = Tier{Title: "MIT göreve çağırıyor!", Tone: ToneSuccess}
	TierGood      = Tier{Title: "Yürü be babuş!", Tone: ToneSuccess}
	TierFair      = Tier{Title: "Ha gayret.", Tone: ToneWarning}
	TierPoor      = Tier{Title: "Hocam göz var izan var ya.", Tone: ToneError}
)

// TierFor selects the tier by thresholds 80, 60 and 40.
func TierFor(rate float64) Tier {
	switch {
	case rate >= 80:
		return TierExcellent
	case rate >= 60:
		return TierGood
	case rate >= 40:
		return TierFair
	default:
		return TierPoor
	}
}

// IsMilestone reports whether answered is a positive multiple of every.
func IsMilestone(answered, every int) bool {
	return every > 0 && answered > 0 && answered%every == 0
}

// Milestone summarises the player's performance at a checkpoint.
type Milestone struct {
	Answered int
	Rate     float64
	Tier     Tier
}

func NewMilestone(correct, answered int) Milestone {
	rate := SuccessRate(correct, answered)
	return Milestone{
		Answered: answered,
		Rate:     rate,
		Tier:     TierFor(rate),
	}
}

// Text is the dialog body, with the rate fixed to two decimals.
func (m Milestone) Text() string {
	return fmt.Sprintf("%%%.2f oranla doğru bildin. Devam mı baştan mı?", m.Rate)
}
