package dto

import (
	"testing"
	"time"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitReq_ToDomain(t *testing.T) {
	t.Run("parses_wire_timestamp_as_utc", func(t *testing.T) {
		h, err := HitReq{App: "ewm", URI: "/events/1", IP: "10.0.0.1", Timestamp: "2026-03-01 10:15:00"}.ToDomain()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC), h.Timestamp)
	})

	t.Run("blank_timestamp_stays_zero", func(t *testing.T) {
		h, err := HitReq{App: "ewm", URI: "/events/1", IP: "10.0.0.1", Timestamp: " "}.ToDomain()
		require.NoError(t, err)
		assert.True(t, h.Timestamp.IsZero())
	})

	t.Run("iso_timestamp_is_rejected", func(t *testing.T) {
		_, err := HitReq{App: "ewm", URI: "/", IP: "10.0.0.1", Timestamp: "2026-03-01T10:15:00Z"}.ToDomain()
		assert.ErrorContains(t, err, domain.TimeLayout)
	})
}

func TestFromViewStats_EmptyIsArray(t *testing.T) {
	out := FromViewStats(nil)
	assert.NotNil(t, out)
	assert.Len(t, out, 0)
}

func TestFromHit_FormatsTimestamp(t *testing.T) {
	resp := FromHit(domain.Hit{ID: 3, Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)})
	assert.Equal(t, "2026-01-02 03:04:05", resp.Timestamp)
}
