package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// registerValidation reports fields by their JSON or query name and adds the
// isodate rule used by date fields.
func registerValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, key := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, _, err := parseISODate(fl.Field().String())
			return err == nil
		})
	})
}

var isoLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseISODate accepts full timestamps and plain dates; dateOnly reports the latter.
func parseISODate(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err = time.Parse(layout, s); err == nil {
			return t, layout == "2006-01-02", nil
		}
	}
	return time.Time{}, false, fmt.Errorf("%q is not an ISO 8601 date", s)
}

// parseRangeEnd makes a plain date cover the whole day.
func parseRangeEnd(s string) (time.Time, error) {
	t, dateOnly, err := parseISODate(s)
	if err != nil {
		return t, err
	}
	if dateOnly {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperr.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
		}
		return apperr.Validation("validation failed", fields...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Validation("validation failed", apperr.FieldError{
			Field:   typeErr.Field,
			Message: "must be a " + typeErr.Type.String(),
		})
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) {
		return apperr.InvalidInput("request body must be valid JSON")
	}
	return apperr.InvalidInput(err.Error())
}

// fieldPath drops the struct name from the namespace: "createBookingRequest.passengers" -> "passengers".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "len":
		return "must be " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "isodate":
		return "must be an ISO 8601 date"
	default:
		return "is invalid"
	}
}
