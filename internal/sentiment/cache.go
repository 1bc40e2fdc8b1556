package sentiment

import (
	"fmt"
	"sync"
)

// ClassifierFactory builds a classifier for a model name. Injected so tests
// run against a stub instead of real model artifacts.
type ClassifierFactory func(modelName string) (Classifier, error)

// Cache holds one initialized scorer per model name for the process
// lifetime. Loading a model is expensive; the lock ensures two concurrent
// pipeline passes requesting the same model trigger exactly one load, with
// the loser waiting and reusing the winner's instance.
type Cache struct {
	mu      sync.Mutex
	scorers map[string]*Scorer
	factory ClassifierFactory
}

func NewCache(factory ClassifierFactory) *Cache {
	return &Cache{
		scorers: make(map[string]*Scorer),
		factory: factory,
	}
}

// GetOrCreate returns the cached scorer for modelName, initializing one on
// first use. A scorer that fails to initialize is not cached, so the next
// call retries the load.
func (c *Cache) GetOrCreate(modelName string) (*Scorer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if scorer, ok := c.scorers[modelName]; ok {
		return scorer, nil
	}

	scorer := NewScorer(modelName, func() (Classifier, error) {
		return c.factory(modelName)
	})
	if !scorer.Initialize() {
		return nil, fmt.Errorf("failed to initialize model %s", modelName)
	}

	c.scorers[modelName] = scorer
	return scorer, nil
}

// IsLoaded reports whether a scorer for modelName is cached and usable.
func (c *Cache) IsLoaded(modelName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	scorer, ok := c.scorers[modelName]
	return ok && scorer.IsInitialized()
}
