// Package metrics records request counts and latencies of cache clients in prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/frame-go/cachekit/cache"
	"github.com/frame-go/cachekit/errors"
)

const (
	ResultOK    = "ok"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Collector holds the metric vectors shared by all wrapped clients.
// Register it once in a prometheus.Registerer.
type Collector struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates the vectors under namespace, e.g. "myapp" gives myapp_cache_requests_total
func NewCollector(namespace string) *Collector {
	labels := []string{"cache", "op"}
	return &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache requests by cache name, operation and result.",
		}, append(labels, "result")),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "request_duration_seconds",
			Help:      "Cache request latency by cache name and operation.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, labels),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requests.Describe(ch)
	c.latency.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requests.Collect(ch)
	c.latency.Collect(ch)
}

// Wrap returns client instrumented under the cache label name
func (c *Collector) Wrap(name string, client cache.Client) cache.Client {
	if client == nil {
		return nil
	}
	return &instrumentedClient{Client: client, name: name, collector: c}
}

func (c *Collector) observe(name, op string, start time.Time, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
		if errors.Is(err, cache.Nil) {
			result = ResultMiss
		}
	}
	c.requests.WithLabelValues(name, op, result).Inc()
	c.latency.WithLabelValues(name, op).Observe(time.Since(start).Seconds())
}

type instrumentedClient struct {
	cache.Client
	name      string
	collector *Collector
}

func (c *instrumentedClient) Add(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	start := time.Now()
	ok, err := c.Client.Add(ctx, key, value, expiration)
	c.collector.observe(c.name, "add", start, err)
	return ok, err
}

func (c *instrumentedClient) Delete(ctx context.Context, keys ...string) (int, error) {
	start := time.Now()
	n, err := c.Client.Delete(ctx, keys...)
	c.collector.observe(c.name, "delete", start, err)
	return n, err
}

func (c *instrumentedClient) Exists(ctx context.Context, keys ...string) (int, error) {
	start := time.Now()
	n, err := c.Client.Exists(ctx, keys...)
	c.collector.observe(c.name, "exists", start, err)
	return n, err
}

func (c *instrumentedClient) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	start := time.Now()
	ok, err := c.Client.Expire(ctx, key, expiration)
	c.collector.observe(c.name, "expire", start, err)
	return ok, err
}

func (c *instrumentedClient) Get(ctx context.Context, key string, value any) error {
	start := time.Now()
	err := c.Client.Get(ctx, key, value)
	c.collector.observe(c.name, "get", start, err)
	return err
}

func (c *instrumentedClient) IncrBy(ctx context.Context, key string, value int64) (int64, error) {
	start := time.Now()
	n, err := c.Client.IncrBy(ctx, key, value)
	c.collector.observe(c.name, "incrby", start, err)
	return n, err
}

func (c *instrumentedClient) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	start := time.Now()
	err := c.Client.Set(ctx, key, value, expiration)
	c.collector.observe(c.name, "set", start, err)
	return err
}

func (c *instrumentedClient) Update(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	start := time.Now()
	ok, err := c.Client.Update(ctx, key, value, expiration)
	c.collector.observe(c.name, "update", start, err)
	return ok, err
}
