package entry

import (
	"errors"
	"math/rand"
)

var ErrMissingImage = errors.New("entry image url cannot be empty")

// Entry is one quiz subject: the label players must guess and the image shown
// as the prompt. Decoy entries share a single fixed label.
type Entry struct {
	Label    string
	ImageURL string
}

func New(label, imageURL string) (Entry, error) {
	if imageURL == "" {
		return Entry{}, ErrMissingImage
	}
	return Entry{Label: label, ImageURL: imageURL}, nil
}

// Pool is the working set of entries a round is drawn from.
type Pool []Entry

// Shuffled returns a new pool with the entries in random order.
// A nil rng uses the package-level source.
func (p Pool) Shuffled(rng *rand.Rand) Pool {
	shuffled := make(Pool, len(p))
	copy(shuffled, p)

	swap := func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if rng != nil {
		rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	return shuffled
}

// Labels returns the distinct labels in the pool, in order of first occurrence.
func (p Pool) Labels() []string {
	seen := make(map[string]struct{}, len(p))
	labels := make([]string, 0, len(p))
	for _, e := range p {
		if _, ok := seen[e.Label]; ok {
			continue
		}
		seen[e.Label] = struct{}{}
		labels = append(labels, e.Label)
	}
	return labels
}
