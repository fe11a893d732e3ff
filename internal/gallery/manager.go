package gallery

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Categories are the image buckets the site exposes. Each maps to the
// storage prefix gallery/<category>.
var Categories = []string{"campus-building", "girls-hostel", "library"}

var ErrUnknownCategory = errors.New("unknown gallery category")

// Manager hands out one Browser per known category, constructed lazily
// from shared dependencies.
type Manager struct {
	store ObjectStore
	log   zerolog.Logger
	base  Config

	mu       sync.Mutex
	browsers map[string]*Browser
}

func NewManager(store ObjectStore, log zerolog.Logger, base Config) *Manager {
	return &Manager{
		store:    store,
		log:      log,
		base:     base,
		browsers: make(map[string]*Browser),
	}
}

func (m *Manager) Browser(category string) (*Browser, error) {
	if !knownCategory(category) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.browsers[category]; ok {
		return b, nil
	}

	cfg := m.base
	cfg.Category = category
	cfg.Store = m.store
	cfg.Log = m.log

	b, err := NewBrowser(cfg)
	if err != nil {
		return nil, err
	}
	m.browsers[category] = b
	return b, nil
}

func knownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
