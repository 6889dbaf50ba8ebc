package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/weather-trip-planner/internal/forecast"
	"github.com/neexbeast/weather-trip-planner/internal/location"
	"github.com/neexbeast/weather-trip-planner/internal/planner"
)

const (
	defaultTTL = time.Hour
	// Search rows change far less often than forecasts.
	searchTTL = 24 * time.Hour
	reportTTL = time.Hour
)

// Cache wraps a Redis client and stores forecasts by location identifier and
// raw search rows by query.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with a 1-hour forecast TTL.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: defaultTTL}
}

// NewCacheWithTTL constructs a Cache with a custom forecast TTL; non-positive
// values use the default.
func NewCacheWithTTL(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func forecastKey(locationID string) string {
	return "forecast:" + strings.TrimSpace(locationID)
}

func reportKey(id string) string {
	return "report:" + id
}

func searchKey(query string) string {
	return "search:" + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// GetForecast returns the cached forecast for a location.
// Returns nil, nil on a cache miss.
func (c *Cache) GetForecast(ctx context.Context, locationID string) ([]forecast.Day, error) {
	var days []forecast.Day
	hit, err := c.get(ctx, forecastKey(locationID), &days)
	if err != nil || !hit {
		return nil, err
	}
	return days, nil
}

// SetForecast stores a forecast with the configured TTL. Empty forecasts are
// not cached.
func (c *Cache) SetForecast(ctx context.Context, locationID string, days []forecast.Day) error {
	if len(days) == 0 {
		return nil
	}
	return c.set(ctx, forecastKey(locationID), days, c.ttl)
}

// GetSearch returns cached search rows for a query. Returns nil, nil on a miss.
func (c *Cache) GetSearch(ctx context.Context, query string) ([]location.Candidate, error) {
	var rows []location.Candidate
	hit, err := c.get(ctx, searchKey(query), &rows)
	if err != nil || !hit {
		return nil, err
	}
	return rows, nil
}

// SetSearch stores search rows for a query. Empty results are not cached.
func (c *Cache) SetSearch(ctx context.Context, query string, rows []location.Candidate) error {
	if len(rows) == 0 {
		return nil
	}
	return c.set(ctx, searchKey(query), rows, searchTTL)
}

// GetReport returns a cached report. Returns nil, nil on a cache miss.
func (c *Cache) GetReport(ctx context.Context, id string) (*planner.Report, error) {
	var report planner.Report
	hit, err := c.get(ctx, reportKey(id), &report)
	if err != nil || !hit {
		return nil, err
	}
	return &report, nil
}

// SetReport stores a report for one hour.
func (c *Cache) SetReport(ctx context.Context, report *planner.Report) error {
	return c.set(ctx, reportKey(report.ID.String()), report, reportTTL)
}

// DeleteForecast removes the cached forecast for a location.
func (c *Cache) DeleteForecast(ctx context.Context, locationID string) error {
	if err := c.client.Del(ctx, forecastKey(locationID)).Err(); err != nil {
		return fmt.Errorf("cache delete for %s: %w", locationID, err)
	}
	return nil
}

func (c *Cache) get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get for %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return false, fmt.Errorf("unmarshaling cached value for %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling value for %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("cache set for %s: %w", key, err)
	}
	return nil
}
