package detection

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Detector is the capability an OCR engine exposes to this package:
// producing raw detections for an encoded page image. Model loading and
// inference live behind this interface in the serving layer.
type Detector interface {
	Detect(ctx context.Context, img []byte, width, height int) ([]RawDetection, error)
	Close() error
}

// Factory constructs a Detector for an engine with the given options key
// (typically language plus mode flags).
type Factory func(options string) (Detector, error)

// Manager owns detector lifecycles. Engines are registered by name and
// instantiated lazily, once per (engine, options) pair, then reused.
type Manager struct {
	mu        sync.Mutex
	factories map[string]Factory
	detectors map[managerKey]Detector
}

type managerKey struct {
	engine  string
	options string
}

// NewManager creates an empty detector manager.
func NewManager() *Manager {
	return &Manager{
		factories: make(map[string]Factory),
		detectors: make(map[managerKey]Detector),
	}
}

// Register adds an engine factory under the given name. Re-registering a
// name replaces the factory but leaves existing instances untouched.
func (m *Manager) Register(engine string, f Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[engine] = f
}

// Engines returns the registered engine names in sorted order.
func (m *Manager) Engines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.factories))
	for name := range m.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the detector for (engine, options), constructing it on first
// use. Construction failures are not cached; a later call retries.
func (m *Manager) Get(engine, options string) (Detector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := managerKey{engine: engine, options: options}
	if d, ok := m.detectors[key]; ok {
		return d, nil
	}

	f, ok := m.factories[engine]
	if !ok {
		return nil, fmt.Errorf("unknown detection engine %q", engine)
	}
	d, err := f(options)
	if err != nil {
		return nil, fmt.Errorf("initializing engine %q: %w", engine, err)
	}
	m.detectors[key] = d
	return d, nil
}

// Close releases every instantiated detector. The first error encountered
// is returned; remaining detectors are still closed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for key, d := range m.detectors {
		if err := d.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing engine %q: %w", key.engine, err)
		}
		delete(m.detectors, key)
	}
	return firstErr
}
