package lugha_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pitabwire/lugha"
)

type triple struct {
	resource, key, culture string
}

// fakeStore is an in-memory Store that counts FindOne probes so tests
// can assert on cache behaviour.
type fakeStore struct {
	mu    sync.Mutex
	rows  map[triple]string
	calls map[triple]int
	fail  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:  make(map[triple]string),
		calls: make(map[triple]int),
	}
}

func (f *fakeStore) seed(resource, key, culture, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[triple{resource, key, culture}] = value
}

func (f *fakeStore) findCalls(resource, key, culture string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[triple{resource, key, culture}]
}

func (f *fakeStore) rowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeStore) FindOne(_ context.Context, resource, key, culture string) (*lugha.Translation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return nil, false, errors.New("store unavailable")
	}

	id := triple{resource, key, culture}
	f.calls[id]++

	value, ok := f.rows[id]
	if !ok {
		return nil, false, nil
	}

	return &lugha.Translation{Resource: resource, Key: key, Culture: culture, Value: value}, true, nil
}

func (f *fakeStore) Upsert(_ context.Context, translation *lugha.Translation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return errors.New("store unavailable")
	}

	f.rows[triple{translation.Resource, translation.Key, translation.Culture}] = translation.Value
	return nil
}

func (f *fakeStore) Delete(_ context.Context, resource, key, culture string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return false, errors.New("store unavailable")
	}

	id := triple{resource, key, culture}
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

func (f *fakeStore) DistinctCultures(_ context.Context, resource string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[string]struct{})
	var cultures []string
	for id := range f.rows {
		if id.resource != resource {
			continue
		}
		if _, ok := seen[id.culture]; ok {
			continue
		}
		seen[id.culture] = struct{}{}
		cultures = append(cultures, id.culture)
	}
	return cultures, nil
}

func (f *fakeStore) DistinctKeys(_ context.Context, resource, culture string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []string
	for id := range f.rows {
		if id.resource == resource && id.culture == culture {
			keys = append(keys, id.key)
		}
	}
	return keys, nil
}

func (f *fakeStore) FindAll(_ context.Context, resource, culture string) ([]*lugha.Translation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return nil, errors.New("store unavailable")
	}

	var translations []*lugha.Translation
	for id, value := range f.rows {
		if id.resource == resource && id.culture == culture {
			translations = append(translations, &lugha.Translation{
				Resource: id.resource,
				Key:      id.key,
				Culture:  id.culture,
				Value:    value,
			})
		}
	}
	return translations, nil
}

// brokenCache fails every operation, standing in for a degraded cache
// tier.
type brokenCache struct{}

func (brokenCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (brokenCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return errors.New("cache down")
}

func (brokenCache) Delete(_ context.Context, _ string) error {
	return errors.New("cache down")
}

func (brokenCache) Exists(_ context.Context, _ string) (bool, error) {
	return false, errors.New("cache down")
}

func (brokenCache) Flush(_ context.Context) error {
	return errors.New("cache down")
}

func (brokenCache) Close() error {
	return nil
}

type publishedSingle struct {
	resource, key, culture string
}

type publishedBatch struct {
	resource string
	pairs    []lugha.Pair
}

// recordingPublisher captures every broadcast for assertions.
type recordingPublisher struct {
	mu      sync.Mutex
	singles []publishedSingle
	batches []publishedBatch
	fail    bool
}

func (p *recordingPublisher) PublishSingle(_ context.Context, resource, key, culture string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail {
		return errors.New("broker unreachable")
	}

	p.singles = append(p.singles, publishedSingle{resource, key, culture})
	return nil
}

func (p *recordingPublisher) PublishBatch(_ context.Context, resource string, pairs []lugha.Pair) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail {
		return errors.New("broker unreachable")
	}

	p.batches = append(p.batches, publishedBatch{resource: resource, pairs: pairs})
	return nil
}
