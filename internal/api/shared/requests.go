package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes bounds a JSON request body.
const MaxBodyBytes = 1 << 20

// ErrInvalidBody is returned when a request body is not a JSON object.
var ErrInvalidBody = errors.New("invalid request body")

// Global validator instance for reuse
var validate = validator.New()

// DecodeJSON decodes the request body into v. Unknown keys are ignored.
func DecodeJSON(r *http.Request, v any) error {
	_, err := DecodeJSONWithKeys(r, v)
	return err
}

// DecodeJSONWithKeys decodes the request body into v and also returns the
// top-level keys the client sent, so updates can be checked against an
// allow-list before anything is applied.
func DecodeJSONWithKeys(r *http.Request, v any) ([]string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if len(body) > MaxBodyBytes {
		return nil, fmt.Errorf("%w: body too large", ErrInvalidBody)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidBody)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	return keys, nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v any) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}
