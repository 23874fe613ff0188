package interaction

import (
	"context"
	"sync"
)

// Mutation is one in-flight toggle.
type Mutation struct {
	Key      Key
	Previous State
	Target   State

	once      sync.Once
	done      chan struct{}
	result    State
	err       error
	discarded bool
}

func (m *Mutation) finish(st State, err error, discarded bool) {
	m.once.Do(func() {
		m.result = st
		m.err = err
		m.discarded = discarded
		close(m.done)
	})
}

// Done is closed once the mutation has settled.
func (m *Mutation) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until the mutation settles or ctx is done.
func (m *Mutation) Wait(ctx context.Context) (State, error) {
	select {
	case <-m.done:
		return m.result, m.err
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Discarded reports whether the response arrived after the state was
// re-seeded or the store closed. Only meaningful after Done.
func (m *Mutation) Discarded() bool {
	select {
	case <-m.done:
		return m.discarded
	default:
		return false
	}
}
