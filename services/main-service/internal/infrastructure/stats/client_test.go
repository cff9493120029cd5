package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	appCtx "github.com/baechuer/explore-with-me/services/main-service/internal/pkg/context"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Hit_PostsWireFormat(t *testing.T) {
	var got map[string]string
	var rid string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/hit", r.URL.Path)
		rid = r.Header.Get(requestIDHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, zerolog.Nop())
	ctx := appCtx.WithRequestID(context.Background(), "rid-7")
	err := c.Hit(ctx, domain.Hit{
		App:       "ewm-main-service",
		URI:       "/events/1",
		IP:        "10.0.0.1",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "rid-7", rid)
	assert.Equal(t, map[string]string{
		"app":       "ewm-main-service",
		"uri":       "/events/1",
		"ip":        "10.0.0.1",
		"timestamp": "2026-03-01 12:00:00",
	}, got)
}

func TestClient_Hit_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zerolog.Nop())
	err := c.Hit(context.Background(), domain.Hit{URI: "/events/1", Timestamp: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_Stats_EncodesQueryAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2026-01-01 00:00:00", q.Get("start"))
		assert.Equal(t, "2026-03-01 12:00:00", q.Get("end"))
		assert.Equal(t, []string{"/events/1", "/events/2"}, q["uris"])
		assert.Equal(t, "true", q.Get("unique"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"app":"ewm-main-service","uri":"/events/1","hits":2},{"app":"ewm-main-service","uri":"/events/2","hits":1}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zerolog.Nop())
	out, err := c.Stats(context.Background(),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		[]string{"/events/1", "/events/2"}, true)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, domain.ViewStats{App: "ewm-main-service", URI: "/events/1", Hits: 2}, out[0])
	assert.Equal(t, int64(1), out[1].Hits)
}

func TestClient_Stats_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zerolog.Nop())
	_, err := c.Stats(context.Background(), time.Now(), time.Now(), nil, false)
	require.Error(t, err)
}

func TestClient_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, 200*time.Millisecond, zerolog.Nop())
	_, err := c.Stats(context.Background(), time.Now(), time.Now(), []string{"/events/1"}, true)
	require.Error(t, err)
}
