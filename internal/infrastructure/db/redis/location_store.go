package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

const locationTTL = 24 * time.Hour

// LocationStore keeps each rider's last known GPS position in Redis.
// Key format: location:<rider_id>; entries expire after locationTTL so stale
// positions drop out on their own.
type LocationStore struct {
	client *redis.Client
}

func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

type locationValue struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Set overwrites the rider's last known position.
func (s *LocationStore) Set(ctx context.Context, loc domain.RiderLocation) error {
	payload, err := json.Marshal(locationValue{
		Lat:        loc.Lat,
		Lng:        loc.Lng,
		RecordedAt: loc.RecordedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}
	return s.client.Set(ctx, s.key(loc.RiderID), payload, locationTTL).Err()
}

// Get returns the rider's position, or nil when none is known.
func (s *LocationStore) Get(ctx context.Context, riderID string) (*domain.RiderLocation, error) {
	raw, err := s.client.Get(ctx, s.key(riderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return s.decode(riderID, raw)
}

// All scans the keyspace and returns every live position.
func (s *LocationStore) All(ctx context.Context) ([]domain.RiderLocation, error) {
	var locations []domain.RiderLocation
	iter := s.client.Scan(ctx, 0, "location:*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // expired between SCAN and GET
			}
			return nil, fmt.Errorf("get location: %w", err)
		}
		loc, err := s.decode(key[len("location:"):], raw)
		if err != nil {
			return nil, err
		}
		locations = append(locations, *loc)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan locations: %w", err)
	}
	return locations, nil
}

func (s *LocationStore) Delete(ctx context.Context, riderID string) error {
	return s.client.Del(ctx, s.key(riderID)).Err()
}

func (s *LocationStore) decode(riderID string, raw []byte) (*domain.RiderLocation, error) {
	var val locationValue
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	return &domain.RiderLocation{
		RiderID:    riderID,
		Lat:        val.Lat,
		Lng:        val.Lng,
		RecordedAt: val.RecordedAt,
	}, nil
}

func (s *LocationStore) key(riderID string) string {
	return "location:" + riderID
}
