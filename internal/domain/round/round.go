package round

import (
	"errors"
	"math/rand"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/entry"
	"github.com/BayramReisbirligi/TeroristQuiz/internal/id"
)

// OptionCount is the number of answers offered when the pool has enough
// distinct labels.
const OptionCount = 4

var ErrEmptyPool = errors.New("cannot build a round from an empty pool")

// Round is one question: the prompt image, the label it belongs to, and the
// shuffled answer options.
type Round struct {
	ID             string
	CorrectLabel   string
	PromptImageURL string
	Options        []string
}

// Build picks a random prompt from the pool and draws up to three distinct
// wrong labels from the rest of the pool's labels. Fewer options are offered
// when the pool lacks label diversity. A nil rng uses the package-level source.
func Build(pool entry.Pool, rng *rand.Rand) (*Round, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}

	prompt := pool[intn(len(pool))]

	candidates := make([]string, 0, len(pool))
	for _, label := range pool.Labels() {
		if label != prompt.Label {
			candidates = append(candidates, label)
		}
	}

	options := make([]string, 0, OptionCount)
	options = append(options, prompt.Label)
	for len(options) < OptionCount && len(candidates) > 0 {
		i := intn(len(candidates))
		options = append(options, candidates[i])
		candidates = append(candidates[:i], candidates[i+1:]...)
	}

	swap := func(i, j int) { options[i], options[j] = options[j], options[i] }
	if rng != nil {
		rng.Shuffle(len(options), swap)
	} else {
		rand.Shuffle(len(options), swap)
	}

	return &Round{
		ID:             id.New(),
		CorrectLabel:   prompt.Label,
		PromptImageURL: prompt.ImageURL,
		Options:        options,
	}, nil
}

// Option returns the label at position i.
func (r *Round) Option(i int) (string, bool) {
	if i < 0 || i >= len(r.Options) {
		return "", false
	}
	return r.Options[i], true
}

// IndexOf returns the position of label in the options, or -1.
func (r *Round) IndexOf(label string) int {
	for i, o := range r.Options {
		if o == label {
			return i
		}
	}
	return -1
}

func (r *Round) IsCorrect(label string) bool {
	return label == r.CorrectLabel
}
