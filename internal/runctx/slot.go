package runctx

// Slot is a typed, named entry in a Context. The producing task pushes a T
// and consuming tasks pull a T, so the key string lives in one place.
type Slot[T ~string] struct {
	key string
}

// NewSlot declares a slot stored under key.
func NewSlot[T ~string](key string) Slot[T] {
	return Slot[T]{key: key}
}

// Key returns the underlying context key.
func (s Slot[T]) Key() string {
	return s.key
}

// Push writes v into the slot.
func (s Slot[T]) Push(c *Context, v T) error {
	return c.Push(s.key, string(v))
}

// Pull reads the slot's value.
func (s Slot[T]) Pull(c *Context) (T, error) {
	v, err := c.Pull(s.key)
	if err != nil {
		var zero T
		return zero, err
	}
	return T(v), nil
}
