// ABOUTME: Tests for the REST pull client.
// ABOUTME: Validates request shape, auth headers, decoding, and error paths.

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListAgents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/agents", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{"id": "agent-1", "name": "researcher", "type": "research", "status": "idle",
				 "capabilities": ["search"], "created_at": "2026-08-23T10:00:00Z",
				 "updated_at": "2026-08-23T10:05:00Z"}
			],
			"total": 1
		}`))
	}))
	defer server.Close()

	client := New(server.URL, "test-token")
	list, err := client.ListAgents(context.Background())
	require.NoError(t, err)

	require.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Total)
	agent := list.Items[0]
	assert.Equal(t, "agent-1", agent.ID)
	assert.Equal(t, "idle", agent.Status)
	assert.Equal(t, []string{"search"}, agent.Capabilities)
}

func TestClient_ListTasks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks", r.URL.Path)
		w.Write([]byte(`{
			"items": [
				{"id": "task-1", "description": "summarize report", "priority": 3,
				 "status": "in_progress", "agent_id": "agent-1", "progress": 0.4,
				 "created_at": "2026-08-23T09:00:00Z"}
			],
			"total": 1
		}`))
	}))
	defer server.Close()

	client := New(server.URL, "")
	list, err := client.ListTasks(context.Background())
	require.NoError(t, err)

	require.Len(t, list.Items, 1)
	task := list.Items[0]
	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, "in_progress", task.Status)
	assert.Equal(t, 0.4, task.Progress)
}

func TestClient_ListEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		w.Write([]byte(`{
			"events": [
				{"id": "evt-1", "kind": "task.completed", "timestamp": "2026-08-23T10:00:00Z",
				 "severity": "success", "message": "done", "task_id": "task-1"}
			],
			"total": 1
		}`))
	}))
	defer server.Close()

	client := New(server.URL, "")
	list, err := client.ListEvents(context.Background(), 25)
	require.NoError(t, err)

	require.Len(t, list.Events, 1)
	assert.Equal(t, "evt-1", list.Events[0].ID)
	assert.Equal(t, "task.completed", list.Events[0].Kind)
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{
			"status": "healthy",
			"timestamp": "2026-08-23T10:00:00Z",
			"version": "1.4.2",
			"components": [{"name": "queue", "status": "healthy", "latency_ms": 1.5}]
		}`))
	}))
	defer server.Close()

	client := New(server.URL, "")
	report, err := client.Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, "1.4.2", report.Version)
	require.Len(t, report.Components, 1)
	assert.Equal(t, "queue", report.Components[0].Name)
}

func TestClient_NoAuthHeaderWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"items": [], "total": 0}`))
	}))
	defer server.Close()

	client := New(server.URL, "")
	_, err := client.ListAgents(context.Background())
	require.NoError(t, err)
}

func TestClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, "")
	_, err := client.ListAgents(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"items": [broken`))
	}))
	defer server.Close()

	client := New(server.URL, "")
	_, err := client.ListTasks(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing response")
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(server.URL, "")
	_, err := client.Health(ctx)
	require.Error(t, err)
}

func TestAgentFields(t *testing.T) {
	hb := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	agent := Agent{
		ID:            "agent-1",
		Name:          "researcher",
		Type:          "research",
		Status:        "busy",
		Capabilities:  []string{"search", "summarize"},
		LastHeartbeat: &hb,
	}

	fields := agent.Fields()
	assert.Equal(t, "busy", fields["status"])
	assert.Equal(t, hb, fields["last_heartbeat"])
	assert.NotContains(t, fields, "id", "the ID keys the cache, not the attribute map")
}

func TestTaskFields_OmitsUnsetOptionals(t *testing.T) {
	task := Task{ID: "task-1", Description: "d", Status: "pending"}

	fields := task.Fields()
	assert.Equal(t, "pending", fields["status"])
	assert.NotContains(t, fields, "agent_id")
	assert.NotContains(t, fields, "started_at")
	assert.NotContains(t, fields, "completed_at")
}
