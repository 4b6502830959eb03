package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/shapematch/internal/model"
)

// DefaultRedisKey is the list holding result documents.
const DefaultRedisKey = "shapematch:results"

// RedisClient narrows the redis operations used by the result store.
type RedisClient interface {
	Time(ctx context.Context) (time.Time, error)
	RPush(ctx context.Context, key string, values ...any) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Close() error
}

// RedisAdapter wraps *redis.Client to satisfy RedisClient.
type RedisAdapter struct {
	client *redis.Client
}

// NewRedisAdapter builds a RedisClient adapter around a redis client.
func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) Time(ctx context.Context) (time.Time, error) {
	return r.client.Time(ctx).Result()
}

func (r *RedisAdapter) RPush(ctx context.Context, key string, values ...any) error {
	return r.client.RPush(ctx, key, values...).Err()
}

func (r *RedisAdapter) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.client.LRange(ctx, key, start, stop).Result()
}

func (r *RedisAdapter) Close() error {
	return r.client.Close()
}

var (
	newRedisClient = redis.NewClient
	redisPing      = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
)

type redisDocument struct {
	ID        string    `json:"id"`
	Clicks    int       `json:"clicks"`
	Timestamp time.Time `json:"timestamp"`
}

// Redis stores results as JSON documents appended to a redis list.
type Redis struct {
	client RedisClient
	key    string
}

// OpenRedis connects to redis and verifies the connection.
func OpenRedis(addr, password string, db int, key string) (*Redis, error) {
	client := newRedisClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisPing(ctx, client); err != nil {
		if cerr := client.Close(); cerr != nil {
			// Best-effort close on failed ping.
			_ = cerr
		}
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewRedis(NewRedisAdapter(client), key), nil
}

// NewRedis builds a store over an existing client. An empty key uses DefaultRedisKey.
func NewRedis(client RedisClient, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

// Close closes the redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Save appends a result stamped with the redis server clock.
func (r *Redis) Save(ctx context.Context, rec model.ResultRecord) (string, error) {
	now, err := r.client.Time(ctx)
	if err != nil {
		return "", fmt.Errorf("reading server time: %w", err)
	}
	doc := redisDocument{
		ID:        uuid.NewString(),
		Clicks:    rec.Clicks,
		Timestamp: now.UTC(),
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	if err := r.client.RPush(ctx, r.key, string(raw)); err != nil {
		return "", fmt.Errorf("appending result: %w", err)
	}
	return doc.ID, nil
}

// QueryAll returns every result, oldest first.
func (r *Redis) QueryAll(ctx context.Context) ([]model.ResultRecord, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	records := make([]model.ResultRecord, 0, len(raw))
	for i, item := range raw {
		var doc redisDocument
		if err := json.Unmarshal([]byte(item), &doc); err != nil {
			return nil, fmt.Errorf("decoding result %d: %w", i, err)
		}
		records = append(records, model.ResultRecord{
			ID:        doc.ID,
			Clicks:    doc.Clicks,
			Timestamp: doc.Timestamp,
		})
	}
	return records, nil
}
