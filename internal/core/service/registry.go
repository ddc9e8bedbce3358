package service

import (
	"fmt"
	"sort"
	"sync"

	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
)

// ComponentRegistry holds the pluggable adapters selected by configuration.
type ComponentRegistry struct {
	mu              sync.RWMutex
	reportStores    map[string]ports.ReportStore
	templateSources map[string]ports.TemplateSource
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		reportStores:    make(map[string]ports.ReportStore),
		templateSources: make(map[string]ports.TemplateSource),
	}
}

func (r *ComponentRegistry) RegisterReportStore(store ports.ReportStore) error {
	if store == nil {
		return errors.New(errors.CodeInternal, "attempted to register nil report store")
	}
	storeType := store.Type()
	if storeType == "" {
		return errors.New(errors.CodeInternal, "report store type cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reportStores[storeType]; exists {
		return errors.New(errors.CodeInternal, fmt.Sprintf("report store type '%s' already registered", storeType))
	}
	r.reportStores[storeType] = store
	return nil
}

func (r *ComponentRegistry) GetReportStore(storeType string) (ports.ReportStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, exists := r.reportStores[storeType]
	if !exists {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("report store type '%s' not found", storeType),
			fmt.Sprintf("Use one of: %v", sortedKeys(r.reportStores)))
	}
	return store, nil
}

func (r *ComponentRegistry) RegisterTemplateSource(source ports.TemplateSource) error {
	if source == nil {
		return errors.New(errors.CodeInternal, "attempted to register nil template source")
	}
	sourceType := source.Type()
	if sourceType == "" {
		return errors.New(errors.CodeInternal, "template source type cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templateSources[sourceType]; exists {
		return errors.New(errors.CodeInternal, fmt.Sprintf("template source type '%s' already registered", sourceType))
	}
	r.templateSources[sourceType] = source
	return nil
}

func (r *ComponentRegistry) GetTemplateSource(sourceType string) (ports.TemplateSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, exists := r.templateSources[sourceType]
	if !exists {
		return nil, errors.New(errors.CodeConfigValidation, fmt.Sprintf("template source type '%s' not found", sourceType))
	}
	return source, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
