package media

import (
	"slices"
	"sync"
)

// Pool hands out one primitive per item id.
type Pool struct {
	mu      sync.Mutex
	factory Factory
	sink    Sink
	live    map[string]Primitive
}

// NewPool creates a pool. Primitives it creates report to sink.
func NewPool(factory Factory, sink Sink) *Pool {
	return &Pool{
		factory: factory,
		sink:    sink,
		live:    make(map[string]Primitive),
	}
}

// Acquire returns the primitive for id, creating it on first use.
func (p *Pool) Acquire(id string) Primitive {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prim, ok := p.live[id]; ok {
		return prim
	}
	prim := p.factory(id, p.sink)
	p.live[id] = prim
	return prim
}

// Get returns the primitive for id if one was acquired.
func (p *Pool) Get(id string) (Primitive, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prim, ok := p.live[id]
	return prim, ok
}

// Release frees the primitive for id.
func (p *Pool) Release(id string) {
	p.mu.Lock()
	prim, ok := p.live[id]
	delete(p.live, id)
	p.mu.Unlock()
	if ok {
		prim.Release()
	}
}

// ReleaseAll frees every primitive.
func (p *Pool) ReleaseAll() {
	p.mu.Lock()
	live := p.live
	p.live = make(map[string]Primitive)
	p.mu.Unlock()
	for _, prim := range live {
		prim.Release()
	}
}

// IDs returns the ids holding a primitive, sorted.
func (p *Pool) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.live))
	for id := range p.live {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of live primitives.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}
