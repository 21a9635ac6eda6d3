package blackboard

// Key is a typed handle for a blackboard entry. Declaring keys as package
// level variables documents, structurally, which module owns each key: the
// Owner is the only module expected to produce writes for it.
type Key[T any] struct {
	// Name is the raw blackboard key.
	Name string
	// Owner is the id of the module that writes this key.
	Owner string
}

// Get reads the committed value for the key. ok is false when the key is
// absent or holds a value of the wrong type.
func (k Key[T]) Get(r Reader) (T, bool) {
	var zero T
	v, ok := r.Get(k.Name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// GetDefault reads the committed value for the key, or def when absent or
// mistyped.
func (k Key[T]) GetDefault(r Reader, def T) T {
	if v, ok := k.Get(r); ok {
		return v
	}
	return def
}

// Write returns the (key, value) pair to place in an Output's SharedWrites
// map. It exists so owning modules write through the typed key rather than
// a raw string.
func (k Key[T]) Write(v T) (string, any) {
	return k.Name, v
}
