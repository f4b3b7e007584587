package store

// Keys derives store keys from the configured prefix.
//
// Queue keys are prefix+name. Lock keys are prefix+"lock:"+category+":"+key.
// Broadcast channels are not prefixed.
type Keys struct {
	prefix string
}

// NewKeys returns a key builder for prefix.
func NewKeys(prefix string) Keys {
	return Keys{prefix: prefix}
}

// Prefix returns the configured prefix.
func (k Keys) Prefix() string { return k.prefix }

// Queue returns the key holding the named queue.
func (k Keys) Queue(name string) string {
	return k.prefix + name
}

// Lock returns the key guarding key within category.
func (k Keys) Lock(category, key string) string {
	return k.prefix + "lock:" + category + ":" + key
}

// Channel returns the broadcast channel for the named queue.
func (k Keys) Channel(name string) string {
	return name
}
