package pty

// guard owns one OS resource during acquisition. release closes it at most
// once; take hands it to the caller and disarms the guard. Spawn paths defer
// release on every guard so any early return tears down what was acquired.
type guard[T any] struct {
	v     T
	free  func(T)
	armed bool
}

func newGuard[T any](v T, free func(T)) *guard[T] {
	return &guard[T]{v: v, free: free, armed: true}
}

// get returns the resource without changing ownership.
func (g *guard[T]) get() T { return g.v }

// take transfers ownership out of the guard.
func (g *guard[T]) take() T {
	g.armed = false
	return g.v
}

// release frees the resource if the guard still owns it.
func (g *guard[T]) release() {
	if g == nil || !g.armed {
		return
	}
	g.armed = false
	if g.free != nil {
		g.free(g.v)
	}
}

// teardown collects release funcs and runs them in reverse order, once.
type teardown struct {
	steps []func() error
	done  bool
}

func (t *teardown) add(step func() error) {
	t.steps = append(t.steps, step)
}

// run executes the steps last-added first and returns the first error.
func (t *teardown) run() error {
	if t.done {
		return nil
	}
	t.done = true
	var first error
	for i := len(t.steps) - 1; i >= 0; i-- {
		if err := t.steps[i](); err != nil && first == nil {
			first = err
		}
	}
	t.steps = nil
	return first
}
