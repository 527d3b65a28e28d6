package keymap

import (
	"fmt"
	"slices"
)

// Resolver maps key presses to actions.
type Resolver struct {
	byKey     map[string]Binding
	byAction  map[Action][]string // in binding order, for help
	conflicts []string
}

// NewResolver creates a resolver from bindings. The first binding of a key
// wins; later bindings of the same key to another action are reported by
// Conflicts.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		byKey:    make(map[string]Binding),
		byAction: make(map[Action][]string),
	}
	for _, b := range bindings {
		for _, k := range b.Keys {
			if prev, ok := r.byKey[k]; ok {
				if prev.Action != b.Action {
					r.conflicts = append(r.conflicts,
						fmt.Sprintf("%q: %s shadows %s", k, prev.Action, b.Action))
				}
				continue
			}
			r.byKey[k] = b
		}
		for _, k := range b.Keys {
			if !slices.Contains(r.byAction[b.Action], k) {
				r.byAction[b.Action] = append(r.byAction[b.Action], k)
			}
		}
	}
	return r
}

// Resolve returns the action for a key, or empty string if not bound.
func (r *Resolver) Resolve(key string) Action {
	return r.byKey[key].Action
}

// Lookup returns the binding a key belongs to.
func (r *Resolver) Lookup(key string) (Binding, bool) {
	b, ok := r.byKey[key]
	return b, ok
}

// KeysFor returns the keys bound to an action in binding order.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// Conflicts describes keys bound to more than one action.
func (r *Resolver) Conflicts() []string {
	return r.conflicts
}
