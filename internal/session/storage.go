package session

import "context"

// Storage is a string key/value store partitioned by session id. Each session
// sees only its own keys, the way a browser tab sees only its own sessionStorage.
type Storage interface {
	GetItem(ctx context.Context, sessionID, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, sessionID, key, value string) error
	RemoveItem(ctx context.Context, sessionID, key string) error
	// Touch marks the session as used, extending the lifetime of keys.
	Touch(ctx context.Context, sessionID string, keys ...string) error
}

// Evicter is implemented by storages that cannot expire sessions on their own.
// The registry calls Evict when it drops an idle session.
type Evicter interface {
	Evict(sessionID string)
}
