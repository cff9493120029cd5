package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
)

const maxBodyBytes = 1 << 20

var v = func() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}()

func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// Struct runs the validate tags on dst and reports the first failing field.
func Struct(dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return domain.ErrInvalidMeta(
			fmt.Sprintf("field %s failed on %s", fe.Field(), fe.Tag()),
			map[string]string{"field": fe.Field(), "rule": fe.Tag()},
		)
	}
	return domain.ErrInvalid(err.Error())
}

// Body decodes and validates in one step; decode errors are reported as invalid.
func Body(r *http.Request, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return domain.ErrInvalid("malformed json body: " + err.Error())
	}
	return Struct(dst)
}
