package slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/ParishReservationService/internal/domain"
)

const defaultTTL = 5 * time.Minute

var (
	// ErrCacheRead возвращается при ошибке чтения из Redis
	ErrCacheRead = errors.New("slots.cache: failed to read")

	// ErrCacheWrite возвращается при ошибке записи в Redis
	ErrCacheWrite = errors.New("slots.cache: failed to write")
)

// Cache кэш рассчитанных свободных слотов
//
// Каждая часовня имеет счетчик версии. Версия входит в ключ записи, поэтому
// Invalidate (INCR версии) делает недоступными все записи часовни разом,
// а старые записи истекают по TTL. Кэш с nil-клиентом ничего не хранит.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache создает кэш слотов
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Key строит ключ записи для текущей версии расписания часовни
// Пустой ключ означает, что кэш выключен
func (c *Cache) Key(ctx context.Context, chapelID, variantID int64, from, to time.Time) (string, error) {
	if c == nil || c.rdb == nil {
		return "", nil
	}

	version, err := c.rdb.Get(ctx, versionKey(chapelID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: Key - get version: %w", ErrCacheRead, err)
	}

	return fmt.Sprintf("slots:chapel:%d:v%d:variant:%d:%s:%s",
		chapelID, version, variantID, from.Format(domain.DateFormat), to.Format(domain.DateFormat)), nil
}

// Get читает слоты по ключу; ok=false при промахе
func (c *Cache) Get(ctx context.Context, key string) ([]domain.DaySlots, bool, error) {
	if c == nil || c.rdb == nil || key == "" {
		return nil, false, nil
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: Get: %w", ErrCacheRead, err)
	}

	var days []domain.DaySlots
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, false, fmt.Errorf("%w: Get - decode: %w", ErrCacheRead, err)
	}

	return days, true, nil
}

// Set сохраняет слоты по ключу на TTL
func (c *Cache) Set(ctx context.Context, key string, days []domain.DaySlots) error {
	if c == nil || c.rdb == nil || key == "" {
		return nil
	}

	raw, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("%w: Set - encode: %w", ErrCacheWrite, err)
	}

	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Set: %w", ErrCacheWrite, err)
	}

	return nil
}

// Invalidate сбрасывает все записи часовни
func (c *Cache) Invalidate(ctx context.Context, chapelID int64) error {
	if c == nil || c.rdb == nil {
		return nil
	}

	if err := c.rdb.Incr(ctx, versionKey(chapelID)).Err(); err != nil {
		return fmt.Errorf("%w: Invalidate: %w", ErrCacheWrite, err)
	}

	return nil
}

func versionKey(chapelID int64) string {
	return fmt.Sprintf("slots:chapel:%d:version", chapelID)
}
