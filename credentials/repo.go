package credentials

import (
	"context"
)

// Key names one persisted credential field
type Key string

const (
	KeyAccessToken  Key = "token"
	KeyRefreshToken Key = "refresh_token"
	KeyExpiresAt    Key = "expires_at"
	KeyUser         Key = "user"
)

// AllKeys lists every field owned by the session core, in write order.
var AllKeys = []Key{KeyAccessToken, KeyRefreshToken, KeyExpiresAt, KeyUser}

// Entry is the four persisted fields. ExpiresAt is epoch seconds as a decimal string
// and User is the JSON encoded profile.
type Entry struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    string
	User         string
}

// Fields returns the non-empty fields of the entry keyed by their store key.
func (e Entry) Fields() map[Key]string {
	fields := make(map[Key]string, len(AllKeys))
	for key, value := range map[Key]string{
		KeyAccessToken:  e.AccessToken,
		KeyRefreshToken: e.RefreshToken,
		KeyExpiresAt:    e.ExpiresAt,
		KeyUser:         e.User,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

// EntryFromFields is the inverse of Entry.Fields.
func EntryFromFields(fields map[Key]string) Entry {
	return Entry{
		AccessToken:  fields[KeyAccessToken],
		RefreshToken: fields[KeyRefreshToken],
		ExpiresAt:    fields[KeyExpiresAt],
		User:         fields[KeyUser],
	}
}

// Repo is durable key to string persistence that survives process restarts.
// Get returns errors.ErrNotFound for an absent key. Save writes every non-empty
// field of the entry in one atomic operation, leaving the other keys untouched.
// Replace makes the store hold exactly the non-empty fields of the entry, also
// in one atomic operation.
type Repo interface {
	Get(ctx context.Context, key Key) (string, error)
	Set(ctx context.Context, key Key, value string) error
	Remove(ctx context.Context, keys ...Key) error
	Save(ctx context.Context, entry Entry) error
	Replace(ctx context.Context, entry Entry) error
	Load(ctx context.Context) (Entry, error)
}
