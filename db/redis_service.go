package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"student-manager-go/config"
	"student-manager-go/models"
)

// RedisPersistence keeps the collection as one JSON string under Key
type RedisPersistence struct {
	Client *redis.Client
	Key    string
}

// NewRedisPersistence creates a new RedisPersistence instance
func NewRedisPersistence(client *redis.Client, key string) *RedisPersistence {
	return &RedisPersistence{
		Client: client,
		Key:    key,
	}
}

// Load reads the stored blob. A missing key, a failed read or a corrupt
// payload all yield an empty collection.
func (s *RedisPersistence) Load(ctx context.Context) []models.Student {
	data, err := s.Client.Get(ctx, s.Key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("Error reading key %s from Redis, starting empty: %v", s.Key, err)
		}
		return []models.Student{}
	}
	students, ok := DecodeStudents(data)
	if !ok {
		log.Warnf("Stored value under %s is not a student list, starting empty", s.Key)
	}
	return students
}

// Save overwrites the stored blob with the full collection
func (s *RedisPersistence) Save(ctx context.Context, students []models.Student) error {
	data, err := EncodeStudents(students)
	if err != nil {
		return err
	}
	if err := s.Client.Set(ctx, s.Key, data, 0).Err(); err != nil {
		log.Errorf("Error saving %d students to Redis: %v", len(students), err)
		return fmt.Errorf("failed to save students to Redis: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (s *RedisPersistence) Close() error {
	return s.Client.Close()
}

// InitializeRedisClient creates and tests a Redis client connection
func InitializeRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Ping Redis to check connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", cfg.Addr, err)
	}

	log.Infof("Successfully connected to Redis %s DB %d", cfg.Addr, cfg.DB)
	return rdb, nil
}
