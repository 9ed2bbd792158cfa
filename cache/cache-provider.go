package cache

// Entry is a single cached resource: the response body together with the
// validators it was received with. Validator values are verbatim header
// strings and are never parsed; an empty string means the validator is
// absent. The originating URL is kept alongside for diagnostics, since
// it cannot be recovered from the key.
type Entry struct {
	Body         []byte
	ETag         string
	LastModified string
	URL          string
}

// CacheProvider is an interface for a cache provider.
// It stores and retrieves cache entries under opaque keys.
// Entries under different keys are fully independent.
//
// Implementations must tolerate concurrent use: a concurrent write to the
// same key may replace an entry at any time, but a reader must always see
// a complete entry (the last one committed), never a partial one.
type CacheProvider interface {
	// Get returns the entry stored under the given key, if it exists.
	// It also returns a boolean indicating whether an entry exists.
	// A missing entry is normal and is not an error.
	Get(key string) (Entry, bool, error)
	// Put stores the given entry under the given key,
	// replacing any previous entry in a single commit.
	Put(key string, entry Entry) error
	// Keys calls the given callback for each stored key.
	// It calls the callback in order to enable very large lists of keys to be
	// processable (provider implementation might use paging, for instance).
	Keys(cb func(string))
	// Purge removes the cache entry for the given key.
	// It is a utility method that is not used by the cache itself.
	Purge(key string) error
	// Has checks if the specified key exists in the cache.
	Has(key string) bool
}
