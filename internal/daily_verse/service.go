package dailyverse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taiwoajasa245/verse-courier/internal/corpus"
	"github.com/taiwoajasa245/verse-courier/internal/delivery"
	"github.com/taiwoajasa245/verse-courier/internal/ledger"
	"github.com/taiwoajasa245/verse-courier/internal/messaging"
	"github.com/taiwoajasa245/verse-courier/internal/search"
	"github.com/taiwoajasa245/verse-courier/internal/subscriber"
	"github.com/taiwoajasa245/verse-courier/internal/topic"
)

const (
	DefaultSearchLimit = 15
	MaxSearchLimit     = 50
	defaultSendTimeout = 30 * time.Second
)

var (
	ErrPassageNotFound = errors.New("passage not found")
	ErrEmptyTopic      = errors.New("topic must not be empty")
	ErrDeliveryFailed  = errors.New("delivery failed")
)

type DailyVerseService struct {
	index     *corpus.Index
	catalog   *topic.Catalog
	engine    *search.Engine
	selector  *delivery.Selector
	directory subscriber.Directory
	sender    messaging.Sender
	loc       *time.Location
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewDailyVerseService(
	ix *corpus.Index,
	cat *topic.Catalog,
	engine *search.Engine,
	selector *delivery.Selector,
	directory subscriber.Directory,
	sender messaging.Sender,
	loc *time.Location,
	sendTimeout time.Duration,
	logger *zap.Logger,
) DailyVerseService {
	if loc == nil {
		loc = time.UTC
	}
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return DailyVerseService{
		index:     ix,
		catalog:   cat,
		engine:    engine,
		selector:  selector,
		directory: directory,
		sender:    sender,
		loc:       loc,
		timeout:   sendTimeout,
		logger:    logger.Named("daily_verse"),
		now:       time.Now,
	}
}

// Ask answers a free-text request: a matching keyword picks its curated
// topic, otherwise the text itself is searched. The picked passages are sent
// to the subscriber and returned. Empty text falls back to the subscriber's
// saved topic.
func (s *DailyVerseService) Ask(ctx context.Context, subscriberID, text string) (*AskResult, error) {
	sub, created, err := s.directory.Ensure(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("subscriber registered", zap.String("subscriber_id", subscriberID))
	}

	result := &AskResult{Topic: sub.Topic}
	if text = strings.TrimSpace(text); text != "" {
		result.Topic = text
		if label, ok := s.catalog.Detect(text); ok {
			result.Topic, result.Detected = label, true
		}
	}

	query := *sub
	query.Topic = result.Topic
	passages, err := s.selector.Select(ctx, query, delivery.DefaultCount, ledger.Day(s.now(), s.loc))
	if err != nil {
		return nil, err
	}
	result.Verses = toVerses(passages)
	if len(passages) == 0 {
		return result, nil
	}

	result.Message = corpus.FormatPassages(passages)
	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.sender.Send(sendCtx, subscriberID, result.Message); err != nil {
		s.logger.Warn("live delivery failed", zap.String("subscriber_id", subscriberID), zap.Error(err))
		return result, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	result.Delivered = true
	return result, nil
}

func (s *DailyVerseService) GetSubscriber(ctx context.Context, subscriberID string) (*subscriber.Subscriber, error) {
	return s.directory.Get(ctx, subscriberID)
}

// UpdateSubscriber applies u, creating the subscriber first if needed.
func (s *DailyVerseService) UpdateSubscriber(ctx context.Context, subscriberID string, u subscriber.Update) (*subscriber.Subscriber, error) {
	if u.Topic != nil && strings.TrimSpace(*u.Topic) == "" {
		return nil, ErrEmptyTopic
	}
	if _, _, err := s.directory.Ensure(ctx, subscriberID); err != nil {
		return nil, err
	}
	return s.directory.Update(ctx, subscriberID, u)
}

func (s *DailyVerseService) SetTopic(ctx context.Context, subscriberID, label string) (*subscriber.Subscriber, error) {
	return s.UpdateSubscriber(ctx, subscriberID, subscriber.Update{Topic: &label})
}

func (s *DailyVerseService) SetSlots(ctx context.Context, subscriberID string, req SlotsRequest) (*subscriber.Subscriber, error) {
	return s.UpdateSubscriber(ctx, subscriberID, subscriber.Update{
		Morning:   req.Morning,
		Midday:    req.Midday,
		Afternoon: req.Afternoon,
		Evening:   req.Evening,
	})
}

func (s *DailyVerseService) Search(query string, limit int) []SearchResult {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)
	return toSearchResults(s.engine.Search(query, limit))
}

func (s *DailyVerseService) Topics() []TopicSummary {
	keywords := map[string][]string{}
	for _, k := range s.catalog.Keywords() {
		keywords[k.Topic] = append(keywords[k.Topic], k.Keyword)
	}
	unresolved := s.catalog.Unresolved(s.index)

	labels := s.catalog.Topics()
	out := make([]TopicSummary, 0, len(labels))
	for _, label := range labels {
		out = append(out, TopicSummary{
			Label:      label,
			Passages:   len(s.catalog.Resolve(label, s.index)),
			Unresolved: len(unresolved[label]),
			Keywords:   keywords[label],
		})
	}
	return out
}

func (s *DailyVerseService) Passage(book string, chapter, verse int) (*Verse, error) {
	p, ok := s.index.Resolve(corpus.Ref{Book: book, Chapter: chapter, Verse: verse})
	if !ok {
		return nil, ErrPassageNotFound
	}
	v := toVerse(p)
	return &v, nil
}
