package velocity

// Context holds the values a template renders against. Keys are flat
// strings; dotted names such as "item.index" are ordinary keys.
//
// A Context is mutated in place by #set and #foreach while rendering, so
// concurrent renders must each use their own Context.
type Context map[string]Value

// NewContext creates an empty context
func NewContext() Context {
	return make(Context)
}

// Get returns the value stored under key.
func (c Context) Get(key string) (Value, bool) {
	v, ok := c[key]
	return v, ok
}

// Set stores v under key, replacing any previous value.
func (c Context) Set(key string, v Value) {
	c[key] = v
}

// Clone returns a shallow copy of the context.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
