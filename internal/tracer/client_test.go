package tracer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yairfalse/kartta/pkg/types"
)

func TestFetchTrace_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/trace/corr-42", r.URL.Path)
		fmt.Fprint(w, `{"trace":[
			{"service":"auth","endpoint":"/login","timestamp":"2025-06-01T10:00:00.000123"},
			{"service":"product","endpoint":"/search","timestamp":"2025-06-01T10:00:01Z"}
		]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	trace := client.FetchTrace(context.Background(), types.JourneyRef{Name: "browse", CorrelationID: "corr-42"})

	require.Len(t, trace.Events, 2)
	assert.Equal(t, "auth", trace.Events[0].Service)
	assert.Equal(t, "/login", trace.Events[0].Endpoint)
	assert.False(t, trace.Events[0].Timestamp.IsZero())
	assert.False(t, trace.Events[1].Timestamp.IsZero())
	assert.Equal(t, "browse", trace.JourneyName)
}

func TestFetchTrace_Non200IsEmptyTrace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	trace := client.FetchTrace(context.Background(), types.JourneyRef{CorrelationID: "missing"})

	assert.True(t, trace.IsEmpty())
	assert.Equal(t, "missing", trace.CorrelationID)
}

func TestFetchTrace_UnreachableIsEmptyTrace(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond, testLogger())
	trace := client.FetchTrace(context.Background(), types.JourneyRef{CorrelationID: "corr-1"})

	assert.True(t, trace.IsEmpty())
}

func TestFetchTrace_TimeoutIsEmptyTrace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, 50*time.Millisecond, testLogger())
	trace := client.FetchTrace(context.Background(), types.JourneyRef{CorrelationID: "slow"})

	assert.True(t, trace.IsEmpty())
}

func TestFetchTrace_MalformedPayloadIsEmptyTrace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"trace": "oops"`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	trace := client.FetchTrace(context.Background(), types.JourneyRef{CorrelationID: "bad"})

	assert.True(t, trace.IsEmpty())
}

func TestFetchAll_PreservesRefOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/api/trace/"):]
		// Later IDs answer faster to shuffle completion order.
		if id == "corr-0" {
			time.Sleep(50 * time.Millisecond)
		}
		fmt.Fprintf(w, `{"trace":[{"service":"svc-%s","endpoint":"/e","timestamp":"2025-06-01T10:00:00Z"}]}`, id)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	refs := []types.JourneyRef{
		{Name: "first", CorrelationID: "corr-0"},
		{Name: "second", CorrelationID: "corr-1"},
		{Name: "third", CorrelationID: "corr-2"},
	}
	traces := client.FetchAll(context.Background(), refs, 3)

	require.Len(t, traces, 3)
	assert.Equal(t, "corr-0", traces[0].CorrelationID)
	assert.Equal(t, "svc-corr-0", traces[0].Events[0].Service)
	assert.Equal(t, "corr-2", traces[2].CorrelationID)
}

func TestHealth(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		fmt.Fprint(w, `{"status":"healthy"}`)
	}))
	defer healthy.Close()

	client := NewClient(healthy.URL, time.Second, testLogger())
	assert.NoError(t, client.Health(context.Background()))

	down := NewClient("http://127.0.0.1:1", 200*time.Millisecond, testLogger())
	assert.Error(t, down.Health(context.Background()))
}
