// Package igasync pulls payment collections from the upstream revenue
// gateway and reconciles them into the local tables. A run sends the last
// fetched cursor, walks the returned rows through find-or-create for centre,
// customer and GFS code, then upserts collections on a stable natural key.
package igasync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const cursorLayout = "2006-01-02T15:04:05"

type gatewayClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
	limiter  <-chan time.Time
}

func newGatewayClient() (*gatewayClient, error) {
	endpoint := strings.TrimSpace(os.Getenv("IGA_API_URL"))
	if endpoint == "" {
		return nil, errors.New("IGA_API_URL is not set")
	}
	apiKey := strings.TrimSpace(os.Getenv("IGA_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("IGA_API_KEY is not set")
	}

	rateLimitPerMin := int64(10)
	if v := strings.TrimSpace(os.Getenv("IGA_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}

	return &gatewayClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 60 * time.Second},
		limiter:  time.Tick(time.Minute / time.Duration(rateLimitPerMin)),
	}, nil
}

type fetchRequest struct {
	LastFetchedDate string `json:"lastFetchedDate"`
	ApiKey          string `json:"apiKey"`
}

// fetchSince posts the cursor and returns the raw rows. The gateway answers
// either with a bare array or with the rows wrapped under "data".
func (c *gatewayClient) fetchSince(ctx context.Context, cursor time.Time) ([]json.RawMessage, error) {
	<-c.limiter

	payload, err := json.Marshal(fetchRequest{
		LastFetchedDate: cursor.Format(cursorLayout),
		ApiKey:          c.apiKey,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}

	var wrapped struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected gateway response: %w", err)
	}
	return wrapped.Data, nil
}
