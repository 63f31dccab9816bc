package cache

import (
	"fmt"
	"time"

	"github.com/AugusDogus/whisp-sub001/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// TTL constants for different cache types
const (
	InboxTTL       = 2 * time.Minute
	UnreadCountTTL = 1 * time.Minute
)

// InboxCache handles inbox and unread-badge caching. All methods are
// nil-safe so the service runs cacheless when Redis is absent.
type InboxCache struct {
	redis *RedisCache
}

func NewInboxCache(redis *RedisCache) *InboxCache {
	return &InboxCache{redis: redis}
}

func inboxKey(userID uint) string {
	return fmt.Sprintf("inbox:%d", userID)
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("unread:%d", userID)
}

// GetInbox retrieves a cached inbox page
func (ic *InboxCache) GetInbox(userID uint) ([]models.InboxItemResponse, bool) {
	if ic == nil || ic.redis == nil {
		return nil, false
	}
	data, err := ic.redis.Get(inboxKey(userID))
	if err != nil || data == nil {
		return nil, false
	}

	var items []models.InboxItemResponse
	if err := msgpack.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

// SetInbox caches an inbox page
func (ic *InboxCache) SetInbox(userID uint, items []models.InboxItemResponse) error {
	if ic == nil || ic.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(items)
	if err != nil {
		return err
	}
	return ic.redis.Set(inboxKey(userID), data, InboxTTL)
}

// InvalidateInbox drops a user's cached inbox and unread count together;
// every write path that touches deliveries goes through here.
func (ic *InboxCache) InvalidateInbox(userID uint) error {
	if ic == nil || ic.redis == nil {
		return nil
	}
	if err := ic.redis.Delete(inboxKey(userID)); err != nil {
		return err
	}
	return ic.redis.Delete(unreadKey(userID))
}

// GetUnreadCount retrieves a cached unread badge count
func (ic *InboxCache) GetUnreadCount(userID uint) (int64, bool) {
	if ic == nil || ic.redis == nil {
		return 0, false
	}
	data, err := ic.redis.Get(unreadKey(userID))
	if err != nil || data == nil {
		return 0, false
	}

	var count int64
	if err := msgpack.Unmarshal(data, &count); err != nil {
		return 0, false
	}
	return count, true
}

// SetUnreadCount caches an unread badge count
func (ic *InboxCache) SetUnreadCount(userID uint, count int64) error {
	if ic == nil || ic.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(count)
	if err != nil {
		return err
	}
	return ic.redis.Set(unreadKey(userID), data, UnreadCountTTL)
}
