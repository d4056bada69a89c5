// Package session holds the client-side state of the feed: the in-memory
// post list, per-post engagement caches, and the reconciliation path that
// merges optimistic writes, resolved transactions, and pushed updates by
// entity id.
package session

// State of a mutable client-side value.
type State int

const (
	// Confirmed means the value matches the store.
	Confirmed State = iota
	// Optimistic means a local mutation is awaiting its transaction result.
	Optimistic
	// Reverted means the last optimistic mutation was rolled back.
	Reverted
)

// Value is a three-state mutable field. A single reconciliation path
// (Confirm/Revert) consumes transaction results; there are no ad hoc
// "in flight" booleans scattered around callers.
type Value[T comparable] struct {
	state     State
	confirmed T
	pending   T
}

// NewValue returns a Value confirmed at v.
func NewValue[T comparable](v T) Value[T] {
	return Value[T]{state: Confirmed, confirmed: v}
}

// Get returns the currently visible value: the pending one while an
// optimistic mutation is outstanding, the confirmed one otherwise.
func (v *Value[T]) Get() T {
	if v.state == Optimistic {
		return v.pending
	}
	return v.confirmed
}

// State returns the current state.
func (v *Value[T]) State() State {
	return v.state
}

// Apply records an optimistic local mutation ahead of its transaction.
func (v *Value[T]) Apply(pending T) {
	v.pending = pending
	v.state = Optimistic
}

// Confirm resolves an outstanding mutation with the authoritative result:
// the optimistic value is kept when it matches, overwritten otherwise.
func (v *Value[T]) Confirm(authoritative T) {
	v.confirmed = authoritative
	v.state = Confirmed
}

// Revert rolls the value back to its pre-mutation state.
func (v *Value[T]) Revert() {
	v.state = Reverted
}
