package sequence

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/hms/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// counterTTL keeps daily counters around long enough for audits of the
// day's numbering without accumulating keys forever.
const counterTTL = 48 * time.Hour

// DayCounter counts the documents already recorded on a calendar day.
// Used to re-seed a sequence when the Redis counter is unavailable.
type DayCounter interface {
	CountByDay(ctx context.Context, day time.Time) (int64, error)
}

// RedisNumberGenerator issues per-day sequential document numbers
// backed by a Redis counter. The counter is shared across instances,
// so numbers stay unique under horizontal scaling.
//
// When Redis is unreachable the generator falls back to the day's
// document count where a counter is available, or a time-derived
// suffix otherwise. Either way the unique index on the number column
// is the final guarantee.
type RedisNumberGenerator struct {
	client      *redis.Client
	saleCounter DayCounter
	logger      *zap.Logger
}

// NewRedisNumberGenerator creates a generator from the Redis configuration
func NewRedisNumberGenerator(cfg config.RedisConfig, saleCounter DayCounter, logger *zap.Logger) (*RedisNumberGenerator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisNumberGeneratorWithClient(client, saleCounter, logger), nil
}

// NewRedisNumberGeneratorWithClient creates a generator with an existing
// Redis client, useful for testing or sharing a client across components
func NewRedisNumberGeneratorWithClient(client *redis.Client, saleCounter DayCounter, logger *zap.Logger) *RedisNumberGenerator {
	return &RedisNumberGenerator{
		client:      client,
		saleCounter: saleCounter,
		logger:      logger.Named("number_generator"),
	}
}

// NextSaleNumber issues the next SALE-yyyyMMdd-NNNNN number for the day
func (g *RedisNumberGenerator) NextSaleNumber(ctx context.Context, day time.Time) (string, error) {
	return g.next(ctx, "SALE", day, g.saleCounter)
}

// NextTransferNumber issues the next TRF-yyyyMMdd-NNNNN number for the day
func (g *RedisNumberGenerator) NextTransferNumber(ctx context.Context, day time.Time) (string, error) {
	return g.next(ctx, "TRF", day, nil)
}

func (g *RedisNumberGenerator) next(ctx context.Context, prefix string, day time.Time, counter DayCounter) (string, error) {
	datePart := day.UTC().Format("20060102")
	key := fmt.Sprintf("hms:seq:%s:%s", prefix, datePart)

	seq, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		g.logger.Warn("redis counter unavailable, using fallback numbering",
			zap.String("key", key),
			zap.Error(err))
		return g.fallback(ctx, prefix, datePart, day, counter)
	}
	if seq == 1 {
		// best effort; an unexpired counter only wastes a key
		g.client.Expire(ctx, key, counterTTL)
	}

	return fmt.Sprintf("%s-%s-%05d", prefix, datePart, seq), nil
}

func (g *RedisNumberGenerator) fallback(ctx context.Context, prefix, datePart string, day time.Time, counter DayCounter) (string, error) {
	if counter != nil {
		count, err := counter.CountByDay(ctx, day)
		if err == nil {
			return fmt.Sprintf("%s-%s-%05d", prefix, datePart, count+1), nil
		}
		g.logger.Warn("day count fallback failed, using time-derived number",
			zap.String("prefix", prefix),
			zap.Error(err))
	}
	// seconds-of-day plus jitter; collisions surface on the unique index
	now := time.Now().UTC()
	suffix := (now.Hour()*3600+now.Minute()*60+now.Second())*10 + rand.Intn(10)
	return fmt.Sprintf("%s-%s-9%05d", prefix, datePart, suffix), nil
}
