package loader

import (
	"github.com/Carmen-Shannon/polygon/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - m: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, m *model.Model) LoaderBuilderOption {
	return func(l *loader) {
		if m != nil {
			l.modelCache[key] = m
		}
	}
}

// WithWorkers sets how many files LoadAll imports at once. Values below 1 are ignored.
//
// Parameters:
//   - n: the number of loader workers (default 4)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n >= 1 {
			l.workers = n
		}
	}
}
