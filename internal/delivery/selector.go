package delivery

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/taiwoajasa245/verse-courier/internal/corpus"
	"github.com/taiwoajasa245/verse-courier/internal/ledger"
	"github.com/taiwoajasa245/verse-courier/internal/search"
	"github.com/taiwoajasa245/verse-courier/internal/subscriber"
	"github.com/taiwoajasa245/verse-courier/internal/topic"
)

const (
	// DefaultCount is how many passages a scheduled or live delivery carries.
	DefaultCount = 2
	// SearchPoolSize bounds the candidate pool for free-text topics.
	SearchPoolSize = 20
)

// Random supplies uniform permutations.
type Random interface {
	Perm(n int) []int
}

type globalRandom struct{}

func (globalRandom) Perm(n int) []int { return rand.Perm(n) }

// Selector picks passages for a subscriber while avoiding same-day repeats.
type Selector struct {
	index        *corpus.Index
	catalog      *topic.Catalog
	engine       *search.Engine
	ledger       ledger.Ledger
	defaultTopic string
	random       Random
	locks        *keyedMutex
	logger       *zap.Logger
}

// Option configures a Selector.
type Option func(*Selector)

func WithRandom(r Random) Option {
	return func(s *Selector) { s.random = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Selector) { s.logger = l.Named("selector") }
}

func NewSelector(ix *corpus.Index, cat *topic.Catalog, engine *search.Engine, l ledger.Ledger, defaultTopic string, opts ...Option) *Selector {
	s := &Selector{
		index:        ix,
		catalog:      cat,
		engine:       engine,
		ledger:       l,
		defaultTopic: defaultTopic,
		random:       globalRandom{},
		locks:        newKeyedMutex(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns up to count passages for sub on day and records them in the
// ledger. Unseen passages are preferred; once the pool is exhausted for the
// day repeats are allowed. An empty result means nothing could be resolved
// even after falling back to the default topic. The only error is ctx's.
func (s *Selector) Select(ctx context.Context, sub subscriber.Subscriber, count int, day string) ([]corpus.Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}
	unlock, err := s.locks.Lock(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	log := s.logger.With(zap.String("subscriber_id", sub.ID), zap.String("day", day))

	sent, err := s.ledger.Get(ctx, sub.ID, day)
	if err != nil {
		log.Warn("reading ledger failed, treating as empty", zap.Error(err))
		sent = nil
	}

	working := s.workingPool(sub.Topic, sent)
	if len(working) == 0 && sub.Topic != s.defaultTopic {
		log.Debug("topic resolved to nothing, using default",
			zap.String("topic", sub.Topic), zap.String("default_topic", s.defaultTopic))
		working = s.workingPool(s.defaultTopic, sent)
	}
	if len(working) == 0 {
		log.Info("no passages available", zap.String("topic", sub.Topic))
		return nil, nil
	}

	n := min(count, len(working))
	perm := s.random.Perm(len(working))
	picked := make([]corpus.Passage, 0, n)
	for _, i := range perm[:n] {
		picked = append(picked, working[i])
	}

	for _, p := range picked {
		if err := s.ledger.Append(ctx, sub.ID, day, p.Ref.String()); err != nil {
			log.Warn("recording sent passage failed", zap.String("ref", p.Ref.String()), zap.Error(err))
		}
	}
	return picked, nil
}

// Pool resolves a topic to its full candidate pool: the catalog list for a
// curated label, otherwise the top search results for the text.
func (s *Selector) Pool(label string) []corpus.Passage {
	if s.catalog != nil && s.catalog.Has(label) {
		return s.catalog.Resolve(label, s.index)
	}
	if s.engine == nil {
		return nil
	}
	return search.Passages(s.engine.Search(label, SearchPoolSize))
}

// workingPool applies the exclusion step: unseen candidates if any remain,
// else the whole pool.
func (s *Selector) workingPool(label string, sent map[string]struct{}) []corpus.Passage {
	pool := s.Pool(label)
	unseen := make([]corpus.Passage, 0, len(pool))
	for _, p := range pool {
		if _, ok := sent[p.Ref.String()]; !ok {
			unseen = append(unseen, p)
		}
	}
	if len(unseen) > 0 {
		return unseen
	}
	return pool
}
