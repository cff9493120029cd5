package validate

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name" validate:"required"`
	IP   string `json:"ip" validate:"omitempty,ip"`
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid_json_decoding", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name": "Sydney", "ip": "10.0.0.1"}`))

		var dst sample
		require.NoError(t, DecodeJSON(req, &dst))
		assert.Equal(t, "Sydney", dst.Name)
	})

	t.Run("fail_on_unknown_fields", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name": "Syd", "unknown_field": true}`))

		var dst sample
		err := DecodeJSON(req, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown field")
	})

	t.Run("fail_on_malformed_json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name": "Syd",`))

		var dst sample
		assert.Error(t, DecodeJSON(req, &dst))
	})
}

func TestStruct(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, Struct(&sample{Name: "a", IP: "::1"}))
	})

	t.Run("reports_json_field_name", func(t *testing.T) {
		err := Struct(&sample{Name: "a", IP: "999.1.1.1"})

		var ae *domain.AppError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, domain.CodeInvalid, ae.Code)
		assert.Equal(t, "ip", ae.Meta["field"])
		assert.Equal(t, "ip", ae.Meta["rule"])
	})

	t.Run("required", func(t *testing.T) {
		err := Struct(&sample{})

		var ae *domain.AppError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, "name", ae.Meta["field"])
		assert.Equal(t, "required", ae.Meta["rule"])
	})
}

func TestBody_MalformedIsInvalid(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader("nope"))

	var dst sample
	err := Body(req, &dst)

	var ae *domain.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, domain.CodeInvalid, ae.Code)
	assert.Contains(t, ae.Message, "malformed json body")
}
