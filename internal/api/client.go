// ABOUTME: Pull-side REST client for the orchestrator's list/get queries.
// ABOUTME: Fetches agent, task, event, and health snapshots with bearer auth.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client queries the orchestrator's REST API. A failed query returns an
// error and nothing else; callers treat it as "no data this cycle", never as
// a reason to clear existing state.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client for the given base URL. token may be empty when the
// orchestrator does not require authentication.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// AgentList is the paginated response from GET /api/agents.
type AgentList struct {
	Items []Agent `json:"items"`
	Total int     `json:"total"`
}

// TaskList is the paginated response from GET /api/tasks.
type TaskList struct {
	Items []Task `json:"items"`
	Total int     `json:"total"`
}

// ListAgents fetches the current agent roster.
func (c *Client) ListAgents(ctx context.Context) (*AgentList, error) {
	var list AgentList
	if err := c.get(ctx, "/api/agents", nil, &list); err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	return &list, nil
}

// ListTasks fetches the current task list.
func (c *Client) ListTasks(ctx context.Context) (*TaskList, error) {
	var list TaskList
	if err := c.get(ctx, "/api/tasks", nil, &list); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return &list, nil
}

// ListEvents fetches up to limit recent events from the history endpoint.
func (c *Client) ListEvents(ctx context.Context, limit int) (*EventList, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var list EventList
	if err := c.get(ctx, "/api/events", query, &list); err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return &list, nil
}

// Health fetches the orchestrator's component health summary.
func (c *Client) Health(ctx context.Context) (*HealthReport, error) {
	var report HealthReport
	if err := c.get(ctx, "/health", nil, &report); err != nil {
		return nil, fmt.Errorf("fetching health: %w", err)
	}
	return &report, nil
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
