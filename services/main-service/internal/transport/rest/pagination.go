package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

const defaultPageSize = 10

// parsePage reads from/size offset paging; from >= 0, size > 0.
func parsePage(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	from, err := intParam(q.Get("from"), 0)
	if err != nil || from < 0 {
		return 0, 0, domain.Invalid(domain.ReasonValidation, "from must be a non-negative integer")
	}
	size, err := intParam(q.Get("size"), defaultPageSize)
	if err != nil || size <= 0 {
		return 0, 0, domain.Invalid(domain.ReasonValidation, "size must be a positive integer")
	}
	return from, size, nil
}

func intParam(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func pathInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, domain.Invalid(domain.ReasonValidation, "invalid "+name)
	}
	return v, nil
}

func pathInt32(r *http.Request, name string) (int32, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 32)
	if err != nil || v <= 0 {
		return 0, domain.Invalid(domain.ReasonValidation, "invalid "+name)
	}
	return int32(v), nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, domain.Invalid(domain.ReasonValidation, name+" is required")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, domain.Invalid(domain.ReasonValidation, "invalid "+name)
	}
	return v, nil
}

// listParam accepts both ?k=1&k=2 and ?k=1,2.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func int64List(r *http.Request, name string) ([]int64, error) {
	var out []int64
	for _, p := range listParam(r, name) {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, domain.Invalid(domain.ReasonValidation, "invalid "+name+": "+p)
		}
		out = append(out, v)
	}
	return out, nil
}

func int32List(r *http.Request, name string) ([]int32, error) {
	var out []int32
	for _, p := range listParam(r, name) {
		v, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return nil, domain.Invalid(domain.ReasonValidation, "invalid "+name+": "+p)
		}
		out = append(out, int32(v))
	}
	return out, nil
}

func boolParam(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.Invalid(domain.ReasonValidation, name+" must be true or false")
	}
	return &v, nil
}

func timeParam(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(domain.TimeLayout, raw, time.UTC)
	if err != nil {
		return nil, domain.Invalid(domain.ReasonValidation, name+" must look like "+domain.TimeLayout)
	}
	return &t, nil
}
