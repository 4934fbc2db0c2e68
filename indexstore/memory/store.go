package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jimyoyo0329/socagent/indexstore"
	"github.com/jimyoyo0329/socagent/record"
)

type memoryStore struct {
	options indexstore.Options
	entries []indexstore.Entry
	mtx     sync.RWMutex
}

func (s *memoryStore) Add(ctx context.Context, entries []indexstore.Entry) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, e := range entries {
		if len(e.Id) == 0 {
			e.Id = uuid.New().String()
		}

		vec := make([]float32, len(e.Embedding))
		copy(vec, e.Embedding)
		e.Embedding = vec

		meta := make(map[string]string, len(e.Metadata))
		maps.Copy(meta, e.Metadata)
		e.Metadata = meta

		s.entries = append(s.entries, e)
	}

	return nil
}

func (s *memoryStore) Query(ctx context.Context, vector []float32, topK int, filter record.Filter) ([]indexstore.Result, error) {
	if topK < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	candidates := make([]indexstore.Result, 0, len(s.entries))

	for _, e := range s.entries {
		if len(filter) > 0 && !filter.Matches(e.Metadata) {
			continue
		}
		candidates = append(candidates, indexstore.Result{
			Entry:    e,
			Distance: 1 - indexstore.CosineSimilarity(vector, e.Embedding),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	return candidates, nil
}

func (s *memoryStore) Get(ctx context.Context, filter record.Filter, limit int) ([]indexstore.Entry, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var matched []indexstore.Entry

	for _, e := range s.entries {
		if len(filter) > 0 && !filter.Matches(e.Metadata) {
			continue
		}
		matched = append(matched, e)
		if limit > 0 && len(matched) >= limit {
			break
		}
	}

	return matched, nil
}

func (s *memoryStore) Count(ctx context.Context) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return len(s.entries), nil
}

func NewStore(opts ...indexstore.Option) indexstore.IndexStore {
	options := indexstore.NewOptions(opts...)

	s := &memoryStore{
		options: options,
		entries: []indexstore.Entry{},
		mtx:     sync.RWMutex{},
	}

	return s
}
