package port

import "context"

type KeyValue interface {
	// Get returns the stored value, or ok=false when the key is absent.
	Get(ctx context.Context, namespace, key string) (value string, ok bool, err error)
	Set(ctx context.Context, namespace, key, value string) error
	Remove(ctx context.Context, namespace, key string) error
}

// AdminList holds the privileged users of one room. Owners have implicit
// admin rights and cannot be added or removed through the bot.
type AdminList struct {
	Owners []int64
	Admins []int64
}

type AdminStore interface {
	GetAll(ctx context.Context, room string) (*AdminList, error)
	Add(ctx context.Context, room string, userID int64) error
	Remove(ctx context.Context, room string, userID int64) error
	IsAdmin(ctx context.Context, room string, userID int64) (bool, error)
}
