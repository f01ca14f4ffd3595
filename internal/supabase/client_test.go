package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pocket-migrate/internal/entities"
)

func TestClient_Probe(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{name: "reachable", statusCode: http.StatusOK},
		{name: "service unavailable", statusCode: http.StatusServiceUnavailable, wantErr: true},
		{name: "unauthorized", statusCode: http.StatusUnauthorized, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/rest/v1/links", r.URL.Path)
				assert.Equal(t, "count", r.URL.Query().Get("select"))
				assert.Equal(t, "1", r.URL.Query().Get("limit"))
				assert.Equal(t, "test-key", r.Header.Get("apikey"))
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "links", time.Second)
			err := client.Probe(context.Background())

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnavailable)

			var rejected *RejectedError
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, tt.statusCode, rejected.StatusCode)
		})
	}
}

func TestClient_Probe_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "key", "links", time.Second)
	err := client.Probe(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
	var transport *TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestClient_ProbeReusesConnectionForInsert(t *testing.T) {
	var newConns atomic.Int32
	server := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`[{"count":1234}]`))
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	server.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			newConns.Add(1)
		}
	}
	server.Start()
	defer server.Close()

	client := NewClient(server.URL, "k", "links", time.Second)
	require.NoError(t, client.Probe(context.Background()))
	require.NoError(t, client.Insert(context.Background(), []entities.Link{{ID: "1"}}))

	assert.Equal(t, int32(1), newConns.Load())
}

func TestClient_Insert(t *testing.T) {
	title := "Example"
	links := []entities.Link{
		{ID: "id-1", UserID: "user", RawURL: "http://a", Title: &title, List: "read", Status: "unread", DeviceSaved: "import_script", CreatedAt: "2024-01-01T00:00:00+00:00"},
		{ID: "id-2", UserID: "user", RawURL: "http://b", List: "read", Status: "unread", DeviceSaved: "import_script", CreatedAt: "2024-01-01T00:00:00+00:00"},
	}

	var received []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "links", time.Second)
	err := client.Insert(context.Background(), links)

	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Equal(t, "http://a", received[0]["raw_url"])
	assert.Equal(t, "Example", received[0]["title"])
	assert.Nil(t, received[1]["title"])
	assert.Contains(t, received[0], "resolved_url")
	assert.Nil(t, received[0]["resolved_url"])
	assert.Equal(t, "read", received[0]["list"])
	assert.Equal(t, "import_script", received[0]["device_saved"])
}

func TestClient_Insert_AcceptsOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := NewClient(server.URL, "k", "links", time.Second).Insert(context.Background(), []entities.Link{{ID: "1"}})

	assert.NoError(t, err)
}

func TestClient_Insert_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"null value in column \"raw_url\""}`))
	}))
	defer server.Close()

	err := NewClient(server.URL, "k", "links", time.Second).Insert(context.Background(), []entities.Link{{ID: "1"}})

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusBadRequest, rejected.StatusCode)
	assert.Contains(t, rejected.Body, "raw_url")
	assert.Contains(t, err.Error(), "400 - ")
}

func TestClient_Insert_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	err := NewClient(server.URL, "k", "links", time.Second).Insert(context.Background(), []entities.Link{{ID: "1"}})

	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestNewClient_Endpoint(t *testing.T) {
	client := NewClient("https://project.supabase.co/", "k", "links", 0)

	assert.Equal(t, "https://project.supabase.co/rest/v1/links", client.Endpoint())
	assert.Equal(t, defaultTimeout, client.httpClient.Timeout)
}
