package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/punchlab/punchd/internal/adapters/mq/queue"
	"github.com/punchlab/punchd/internal/adapters/mq/worker"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// sender delivers generated submissions to the service. It satisfies the
// dispatch pool's Sender contract.
type sender struct {
	client  *HTTPClient
	baseURL string

	sent     atomic.Int64
	accepted atomic.Int64
	failed   atomic.Int64
}

func newSender(client *HTTPClient, baseURL string) *sender {
	return &sender{client: client, baseURL: baseURL}
}

// Send posts one submission, routing judged punches through /v1/punch.
func (s *sender) Send(ctx context.Context, sub Submission) error {
	url := s.baseURL + "/v1/scores"
	if sub.Description != "" {
		url = s.baseURL + "/v1/punch"
	}

	s.sent.Add(1)

	resp, err := s.client.Post(ctx, url, sub)
	if err != nil {
		s.failed.Add(1)
		return fmt.Errorf("post failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		s.failed.Add(1)
		return fmt.Errorf("read response failed: %w", err)
	}

	if resp.StatusCode != StatusCreated {
		s.failed.Add(1)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	s.accepted.Add(1)
	return nil
}

// dispatchSubmissions pushes submissions through the queue and worker pool.
func dispatchSubmissions(ctx context.Context, config *Config, subs []Submission, stats *Stats) error {
	log.Printf("dispatching %d submissions with %d workers", len(subs), config.Workers)

	client := newHTTPClient(config.Timeout)
	snd := newSender(client, config.BaseURL)

	q := queue.NewInMemoryQueue(queue.WithBufferSize(config.QueueSize))
	pool := worker.NewPool(config.Workers, q, snd)
	pool.Start(ctx)

	lastReport := time.Now()
	for i := range subs {
		for !q.Enqueue(ctx, subs[i]) {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during dispatch: %w", ctx.Err())
			case <-time.After(time.Millisecond):
			}
		}

		if time.Since(lastReport) >= progressInterval {
			lastReport = time.Now()
			log.Printf("enqueued %d/%d (accepted: %d, failed: %d)",
				i+1, len(subs), snd.accepted.Load(), snd.failed.Load())
		}
	}

	// Close the queue and wait for the workers to drain it.
	if err := pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("dispatch pool shutdown failed: %w", err)
	}

	stats.SubmissionsSent = int(snd.sent.Load())
	stats.SubmissionsAccepted = int(snd.accepted.Load())
	stats.SubmissionsFailed = int(snd.failed.Load())

	log.Printf("dispatch completed: accepted %d, failed %d",
		stats.SubmissionsAccepted, stats.SubmissionsFailed)

	return nil
}

// getLeaderboard fetches the current top entries.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/v1/leaderboard?limit=" + strconv.Itoa(config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("leaderboard request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("leaderboard request returned status %d", resp.StatusCode)
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}

	stats.LeaderboardEntries = len(entries)
	return entries, nil
}

// samplePositions queries the position endpoint for a sample of board scores.
func samplePositions(ctx context.Context, config *Config, entries []Entry, stats *Stats) (map[int]int, error) {
	client := newHTTPClient(config.Timeout)

	sample := len(entries)
	if sample > positionSampleSize {
		sample = positionSampleSize
	}

	positions := make(map[int]int, sample)
	for i := 0; i < sample; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		score := entries[i].Score
		if _, seen := positions[score]; seen {
			continue
		}

		url := config.BaseURL + "/v1/position?score=" + strconv.Itoa(score)
		resp, err := client.Get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("position request failed: %w", err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to read position response: %w", err)
		}
		if resp.StatusCode != StatusOK {
			return nil, fmt.Errorf("position request returned status %d", resp.StatusCode)
		}

		var pr positionResponse
		if err := json.Unmarshal(body, &pr); err != nil {
			return nil, fmt.Errorf("failed to decode position: %w", err)
		}
		positions[score] = pr.Position
		stats.PositionsRetrieved++
	}

	return positions, nil
}
