package runctx

import (
	"sort"
	"sync"
)

// Context is the write-once store owned by a single run. It is safe for
// concurrent readers and writers.
type Context struct {
	runID  string
	values sync.Map // Key: context key, Value: string
}

// New creates an empty context for the given run.
func New(runID string) *Context {
	return &Context{runID: runID}
}

// RunID returns the identifier of the run that owns this context.
func (c *Context) RunID() string {
	return c.runID
}

// Push stores value under key. It fails with ErrDuplicateKey if the key
// already holds a value; the stored value is left untouched in that case.
func (c *Context) Push(key, value string) error {
	if _, loaded := c.values.LoadOrStore(key, value); loaded {
		return &KeyError{Key: key, Err: ErrDuplicateKey}
	}
	return nil
}

// Pull returns the value stored under key, or ErrMissingKey.
func (c *Context) Pull(key string) (string, error) {
	v, ok := c.values.Load(key)
	if !ok {
		return "", &KeyError{Key: key, Err: ErrMissingKey}
	}
	return v.(string), nil
}

// Has reports whether key has been written.
func (c *Context) Has(key string) bool {
	_, ok := c.values.Load(key)
	return ok
}

// Keys returns the written keys in lexical order.
func (c *Context) Keys() []string {
	var keys []string
	c.values.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of every written key and value.
func (c *Context) Snapshot() map[string]string {
	out := make(map[string]string)
	c.values.Range(func(k, v any) bool {
		out[k.(string)] = v.(string)
		return true
	})
	return out
}
