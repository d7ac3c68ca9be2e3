// Package history keeps the short list of recently studied topics.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/knowflow/internal/skilltree"
	"github.com/abhisek/knowflow/internal/store"
)

// MaxEntries is how many sessions the list keeps.
const MaxEntries = 10

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("history entry not found")

// Item is one remembered session.
type Item struct {
	ID           string           `json:"id"`
	Topic        string           `json:"topic"`
	Nodes        []skilltree.Node `json:"nodes"`
	LastAccessed time.Time        `json:"lastAccessed"`
}

// Progress summarizes the item's nodes.
func (i Item) Progress() skilltree.Progress {
	return skilltree.ProgressOf(i.Nodes)
}

// Service reads and writes the history list.
type Service struct {
	repo   store.HistoryRepo
	logger *slog.Logger
	now    func() time.Time
}

// NewService wraps repo. A nil logger falls back to slog.Default.
func NewService(repo store.HistoryRepo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// List returns up to MaxEntries items, most recent first. Rows whose node
// snapshot cannot be decoded are skipped.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	items := lo.FilterMap(recs, func(rec store.HistoryRecord, _ int) (Item, bool) {
		item, err := decode(rec)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping corrupt history entry", "id", rec.ID, "err", err)
			return Item{}, false
		}
		return item, true
	})
	if len(items) > MaxEntries {
		items = items[:MaxEntries]
	}
	return items, nil
}

// Upsert stores the session at the front of the list, stamps it with the
// current time and drops anything past MaxEntries.
func (s *Service) Upsert(ctx context.Context, id, topic string, nodes []skilltree.Node) (Item, error) {
	item := Item{ID: id, Topic: topic, Nodes: skilltree.Clone(nodes), LastAccessed: s.now()}

	raw, err := json.Marshal(item.Nodes)
	if err != nil {
		return Item{}, fmt.Errorf("encode history %s: %w", id, err)
	}
	if err := s.repo.Put(ctx, store.HistoryRecord{
		ID:           id,
		Topic:        topic,
		Nodes:        raw,
		LastAccessed: item.LastAccessed,
	}); err != nil {
		return Item{}, err
	}
	if err := s.repo.Prune(ctx, MaxEntries); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Delete removes id. Unknown ids are a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	rec, err := s.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Item{}, err
	}
	return decode(*rec)
}

func decode(rec store.HistoryRecord) (Item, error) {
	var nodes []skilltree.Node
	if err := json.Unmarshal(rec.Nodes, &nodes); err != nil {
		return Item{}, fmt.Errorf("decode nodes: %w", err)
	}
	return Item{
		ID:           rec.ID,
		Topic:        rec.Topic,
		Nodes:        nodes,
		LastAccessed: rec.LastAccessed,
	}, nil
}
