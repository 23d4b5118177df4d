package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UmangSachdeva/fintrack/money"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrBadBody    = errors.New("malformed request body")
)

// FieldError names the first field that failed validation.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (e *FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %q failed %q (%s)", ErrValidation, e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("%s: %q failed %q", ErrValidation, e.Field, e.Rule)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

var (
	validate     *validator.Validate
	validateOnce sync.Once
	validateErr  error
)

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		// Unsigned amounts with up to two decimals. Blank text is rejected so a
		// present but empty amount never reads as zero.
		"money": func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" || strings.HasPrefix(s, "-") {
				return false
			}
			_, err := money.NormalizeToUnsigned(s)
			return err == nil
		},
		"objectid": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || primitive.IsValidObjectID(s)
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %q: %w", tag, err)
		}
	}

	return v, nil
}

// Validate checks payload against its validate tags.
func Validate(payload any) error {
	validateOnce.Do(func() {
		validate, validateErr = newValidator()
	})
	if validateErr != nil {
		return validateErr
	}

	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return &FieldError{Field: errs[0].Field(), Rule: errs[0].Tag(), Param: errs[0].Param()}
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// DecodeJSON reads a JSON body into payload and validates it.
func DecodeJSON(r *http.Request, payload any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(payload); err != nil {
		return fmt.Errorf("%w: %w", ErrBadBody, err)
	}
	return Validate(payload)
}
