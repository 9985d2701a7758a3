package tracer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/yairfalse/kartta/internal/logger"
	"github.com/yairfalse/kartta/pkg/types"
)

// Client fetches traces from the log collector by correlation ID. A failed
// or timed-out fetch degrades to an empty trace so one unreachable journey
// never aborts a discovery run.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *TraceCache
	log        logger.Logger
}

// NewClient creates a trace store client with a bounded per-fetch timeout.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: log,
	}
}

// WithCache enables trace memoization for repeated runs within the TTL.
func (c *Client) WithCache(cache *TraceCache) *Client {
	c.cache = cache
	return c
}

// traceResponse is the collector's wire format for one trace.
type traceResponse struct {
	Trace []wireEvent `json:"trace"`
}

// wireEvent keeps the timestamp as a string because the collector emits
// ISO-8601 without a timezone suffix.
type wireEvent struct {
	Service   string `json:"service"`
	Endpoint  string `json:"endpoint"`
	Timestamp string `json:"timestamp"`
}

// Health probes the collector before a discovery run.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trace store unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trace store unhealthy: HTTP %d", resp.StatusCode)
	}
	return nil
}

// FetchTrace returns the ordered event list for one correlation ID. Any
// failure is logged and reported as an empty trace.
func (c *Client) FetchTrace(ctx context.Context, ref types.JourneyRef) types.Trace {
	trace := types.Trace{
		CorrelationID: ref.CorrelationID,
		JourneyName:   ref.Name,
		Events:        []types.Event{},
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(ref.CorrelationID); ok {
			c.log.WithField("correlation_id", ref.CorrelationID).Debug("trace served from cache")
			cached.JourneyName = ref.Name
			return cached
		}
	}

	endpoint := c.baseURL + "/api/trace/" + url.PathEscape(ref.CorrelationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.log.WithField("correlation_id", ref.CorrelationID).Error("building trace request failed", err)
		return trace
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithField("correlation_id", ref.CorrelationID).Error("trace fetch failed", err)
		return trace
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.WithFields(map[string]interface{}{
			"correlation_id": ref.CorrelationID,
			"status":         resp.StatusCode,
		}).Warn("trace fetch returned non-200, treating as empty trace")
		io.Copy(io.Discard, resp.Body)
		return trace
	}

	var payload traceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.WithField("correlation_id", ref.CorrelationID).Error("malformed trace payload", err)
		return trace
	}

	for _, we := range payload.Trace {
		trace.Events = append(trace.Events, types.Event{
			Service:   we.Service,
			Endpoint:  we.Endpoint,
			Timestamp: parseTimestamp(we.Timestamp),
		})
	}

	if c.cache != nil {
		c.cache.Put(trace)
	}
	return trace
}

// FetchAll fetches every journey's trace using a bounded worker pool.
// Results keep the order of refs regardless of completion order, so the
// inferred journey list is stable across runs.
func (c *Client) FetchAll(ctx context.Context, refs []types.JourneyRef, workers int) []types.Trace {
	if workers < 1 {
		workers = 1
	}
	if workers > len(refs) {
		workers = len(refs)
	}

	traces := make([]types.Trace, len(refs))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				traces[i] = c.FetchTrace(ctx, refs[i])
			}
		}()
	}

	for i := range refs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return traces
}

// timestampFormats covers RFC3339 and the collector's naive ISO-8601.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
