package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/BayramReisbirligi/TeroristQuiz/internal/domain/entry"
)

const tracerName = "github.com/BayramReisbirligi/TeroristQuiz/internal/dataset"

// ErrFetch marks every failure to retrieve the labeled dataset.
var ErrFetch = errors.New("dataset fetch failed")

// FetchError is returned when the labeled dataset could not be retrieved, so
// callers can tell "remote unreachable" from "remote answered with an error".
type FetchError struct {
	Reason  string
	Status  int // HTTP status, 0 when no response was received
	Wrapped error
}

func (e *FetchError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("dataset fetch failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("dataset fetch failed: %s", e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Wrapped
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// Config holds the remote endpoints and decoy settings.
type Config struct {
	DatasetURL    string        // JSON document with the labeled records
	ImageBaseURL  string        // prefix for each record's image path
	DecoyImageURL string        // random face endpoint used for decoys
	DecoyLabel    string        // label shared by every decoy
	DecoyCount    int           // decoys added when decoys are enabled
	Timeout       time.Duration // HTTP client timeout
	CacheTTL      time.Duration // 0 refetches on every call
}

// record is one element of the remote JSON array.
type record struct {
	Label      string          `json:"TOrgutAdi"`
	Images     json.RawMessage `json:"GorselURL"`
	FirstImage string          `json:"IlkGorselURL"`
}

// Fetcher retrieves labeled entries and synthesizes decoys.
type Fetcher struct {
	cfg    Config
	client *http.Client // reused across calls
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	cached   []entry.Entry
	cachedAt time.Time
}

func NewFetcher(cfg Config, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
		now:    time.Now,
	}
}

// ============================================================================
// Labeled entries
// ============================================================================

// FetchLabeledEntries downloads the dataset, drops records without images and
// prefixes each image path with the base URL. On failure it logs and returns
// an empty slice with a *FetchError.
func (f *Fetcher) FetchLabeledEntries(ctx context.Context) ([]entry.Entry, error) {
	if entries, ok := f.fromCache(); ok {
		return entries, nil
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "dataset.FetchLabeledEntries")
	defer span.End()

	entries, err := f.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		f.logger.Error("error fetching data", "url", f.cfg.DatasetURL, "error", err)
		return []entry.Entry{}, err
	}
	span.SetAttributes(attribute.Int("dataset.entries", len(entries)))

	f.store(entries)
	return entries, nil
}

func (f *Fetcher) fetch(ctx context.Context) ([]entry.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.DatasetURL, nil)
	if err != nil {
		return nil, &FetchError{Reason: "failed to create request", Wrapped: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Reason: "request failed", Wrapped: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Reason: fmt.Sprintf("remote returned status %d", resp.StatusCode), Status: resp.StatusCode}
	}

	var records []record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &FetchError{Reason: "failed to decode response", Status: resp.StatusCode, Wrapped: err}
	}

	entries := make([]entry.Entry, 0, len(records))
	for _, r := range records {
		if !hasImages(r.Images) {
			continue
		}
		e, err := entry.New(r.Label, f.cfg.ImageBaseURL+r.FirstImage)
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// hasImages reports whether the image field holds a non-empty string or list.
func hasImages(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch images := v.(type) {
	case nil:
		return false
	case string:
		return images != ""
	case []any:
		return len(images) > 0
	default:
		return false
	}
}

func (f *Fetcher) fromCache() ([]entry.Entry, bool) {
	if f.cfg.CacheTTL <= 0 {
		return nil, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached == nil || f.now().Sub(f.cachedAt) >= f.cfg.CacheTTL {
		return nil, false
	}

	entries := make([]entry.Entry, len(f.cached))
	copy(entries, f.cached)
	return entries, true
}

func (f *Fetcher) store(entries []entry.Entry) {
	if f.cfg.CacheTTL <= 0 || len(entries) == 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.cached = make([]entry.Entry, len(entries))
	copy(f.cached, entries)
	f.cachedAt = f.now()
}

// ============================================================================
// Decoys
// ============================================================================

// DecoyEntries synthesizes count decoys. Each URL carries a distinct
// timestamp query so browsers fetch a fresh face every time.
func (f *Fetcher) DecoyEntries(count int) []entry.Entry {
	if count <= 0 {
		return []entry.Entry{}
	}

	base := f.now().UnixMilli()
	entries := make([]entry.Entry, 0, count)
	for i := 0; i < count; i++ {
		entries = append(entries, entry.Entry{
			Label:    f.cfg.DecoyLabel,
			ImageURL: fmt.Sprintf("%s?timestamp=%d", f.cfg.DecoyImageURL, base+int64(i)),
		})
	}
	return entries
}

// ============================================================================
// Pool
// ============================================================================

// BuildPool fetches labeled entries, adds decoys when asked, and shuffles the
// result. A failed fetch yields an empty pool and the fetch error: decoys on
// their own never make a playable pool.
func (f *Fetcher) BuildPool(ctx context.Context, includeDecoys bool) (entry.Pool, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dataset.BuildPool",
		trace.WithAttributes(attribute.Bool("dataset.include_decoys", includeDecoys)),
	)
	defer span.End()

	var (
		labeled []entry.Entry
		decoys  []entry.Entry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		labeled, err = f.FetchLabeledEntries(gctx)
		return err
	})
	if includeDecoys {
		g.Go(func() error {
			decoys = f.DecoyEntries(f.cfg.DecoyCount)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return entry.Pool{}, err
	}

	if len(labeled) == 0 {
		return entry.Pool{}, nil
	}

	combined := make(entry.Pool, 0, len(labeled)+len(decoys))
	combined = append(combined, labeled...)
	combined = append(combined, decoys...)

	return combined.Shuffled(nil), nil
}
