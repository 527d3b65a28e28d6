package media

import (
	"sync"
	"time"
)

// Mock is a test double for Primitive. It records every call and lets
// tests push events back through the sink.
type Mock struct {
	mu       sync.Mutex
	itemID   string
	sink     Sink
	loads    []Source
	calls    []string
	seeks    []time.Duration
	playing  bool
	muted    bool
	rate     float64
	released bool
	loadErr  error
}

// NewMock creates a mock primitive for itemID.
func NewMock(itemID string, sink Sink) *Mock {
	return &Mock{itemID: itemID, sink: sink, rate: 1.0}
}

func (m *Mock) Load(src Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "load")
	if m.loadErr != nil {
		return m.loadErr
	}
	if src.URI == "" {
		return ErrNoSource
	}
	m.loads = append(m.loads, src)
	m.playing = false
	return nil
}

func (m *Mock) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "play")
	m.playing = true
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "pause")
	m.playing = false
}

func (m *Mock) Seek(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "seek")
	m.seeks = append(m.seeks, pos)
}

func (m *Mock) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "mute")
	m.muted = muted
}

func (m *Mock) SetRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "rate")
	m.rate = rate
}

func (m *Mock) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "release")
	m.released = true
	m.playing = false
}

// Test helpers

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) Loads() []Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Source(nil), m.loads...)
}

func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Mock) Seeks() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seeks...)
}

func (m *Mock) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

func (m *Mock) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

// Generation returns the generation of the last successful load.
func (m *Mock) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.loads) == 0 {
		return 0
	}
	return m.loads[len(m.loads)-1].Generation
}

// Emit delivers an event of kind for the last loaded generation.
func (m *Mock) Emit(kind EventKind) {
	m.EmitEvent(Event{Kind: kind, Generation: m.Generation()})
}

// EmitEvent delivers e, filling in the item id.
func (m *Mock) EmitEvent(e Event) {
	e.ItemID = m.itemID
	if m.sink != nil {
		m.sink(e)
	}
}

// MockFactory creates mocks and keeps them by item id.
type MockFactory struct {
	mu    sync.Mutex
	mocks map[string]*Mock
	order []string
}

// NewMockFactory creates an empty factory.
func NewMockFactory() *MockFactory {
	return &MockFactory{mocks: make(map[string]*Mock)}
}

// New implements Factory. A released mock is replaced by a fresh one.
func (f *MockFactory) New(itemID string, sink Sink) Primitive {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := NewMock(itemID, sink)
	f.mocks[itemID] = m
	f.order = append(f.order, itemID)
	return m
}

// Get returns the latest mock created for itemID, or nil.
func (f *MockFactory) Get(itemID string) *Mock {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mocks[itemID]
}

// Created returns the item ids in creation order.
func (f *MockFactory) Created() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// Verify Mock implements Primitive at compile time.
var _ Primitive = (*Mock)(nil)
