package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	goredis "github.com/redis/go-redis/v9"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/pkg/metrics"
)

// SearchCache stores job search results and job details with a TTL
type SearchCache struct {
	client *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewSearchCache creates a Redis-backed search cache
func NewSearchCache(client *Client, ttl time.Duration) *SearchCache {
	return &SearchCache{
		client: client.Client,
		ttl:    ttl,
		prefix: "jobs:",
	}
}

// searchKey normalizes a query so "Backend  Developer" and "backend developer" share an entry
func (c *SearchCache) searchKey(query, country string, page int) string {
	return fmt.Sprintf("%ssearch:%s:%s:%d", c.prefix, country, slug.Make(query), page)
}

func (c *SearchCache) jobKey(jobID string) string {
	return c.prefix + "job:" + jobID
}

// GetSearch returns cached results; ok is false on a miss
func (c *SearchCache) GetSearch(ctx context.Context, query, country string, page int) (jobs []*entities.Job, ok bool, err error) {
	ok, err = c.get(ctx, c.searchKey(query, country, page), &jobs)
	metrics.RecordCacheLookup("job_search", ok)
	return jobs, ok, err
}

// PutSearch caches results for a query
func (c *SearchCache) PutSearch(ctx context.Context, query, country string, page int, jobs []*entities.Job) error {
	return c.put(ctx, c.searchKey(query, country, page), jobs)
}

// GetJob returns a cached job; ok is false on a miss
func (c *SearchCache) GetJob(ctx context.Context, jobID string) (job *entities.Job, ok bool, err error) {
	ok, err = c.get(ctx, c.jobKey(jobID), &job)
	metrics.RecordCacheLookup("job_details", ok)
	return job, ok, err
}

// PutJob caches a single job
func (c *SearchCache) PutJob(ctx context.Context, job *entities.Job) error {
	return c.put(ctx, c.jobKey(job.ID), job)
}

func (c *SearchCache) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dst); err != nil {
		// drop entries written by an incompatible version
		c.client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

func (c *SearchCache) put(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
