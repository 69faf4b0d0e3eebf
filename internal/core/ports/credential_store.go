package ports

import "context"

// Keys of the persisted credential record.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// CredentialStore is a string key/value store for the credential record.
// Get returns domain.ErrCredentialNotFound when the key is absent;
// Remove of a missing key is not an error.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report their readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}
