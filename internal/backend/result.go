package backend

import (
	"bytes"
	"encoding/json"
	"strings"

	"proedualt/internal/errors"
)

// Outcome tags a decoded backend payload
type Outcome int

const (
	// Empty means the payload had neither an error nor the expected shape.
	Empty Outcome = iota
	// OK means the payload decoded into the expected value.
	OK
	// Err means the backend reported a business error.
	Err
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Err:
		return "error"
	default:
		return "empty"
	}
}

// Result is the tagged form of every backend payload. Transport failures are
// never represented here; they are returned as errors alongside the Result.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	Message string
}

func okResult[T any](v T) Result[T] {
	return Result[T]{Outcome: OK, Value: v}
}

func errResult[T any](msg string) Result[T] {
	return Result[T]{Outcome: Err, Message: msg}
}

func emptyResult[T any]() Result[T] {
	return Result[T]{Outcome: Empty}
}

// IsOK reports whether the result carries a value
func (r Result[T]) IsOK() bool { return r.Outcome == OK }

// IsErr reports whether the backend rejected the request
func (r Result[T]) IsErr() bool { return r.Outcome == Err }

// IsEmpty reports whether the payload was unusable
func (r Result[T]) IsEmpty() bool { return r.Outcome == Empty }

// Unwrap converts the result into a value or an application error
func (r Result[T]) Unwrap() (T, error) {
	switch r.Outcome {
	case OK:
		return r.Value, nil
	case Err:
		var zero T
		return zero, errors.NewBackendError(errors.ErrCodeBackendRejected, r.Message, nil)
	default:
		var zero T
		return zero, errors.NewDecodeError(errors.ErrCodeMalformedPayload, "unexpected response from the backend", nil)
	}
}

// businessError extracts a backend-reported error message from an object
// payload. It looks at "error" first and then at FastAPI's "detail".
func businessError(body []byte) (string, bool) {
	fields, ok := objectFields(body)
	if !ok {
		return "", false
	}
	for _, key := range []string{"error", "detail"} {
		raw, present := fields[key]
		if !present {
			continue
		}
		if msg := messageText(raw); msg != "" {
			return msg, true
		}
	}
	return "", false
}

// messageText renders a JSON value as a user-facing message. Strings are
// returned verbatim, validation detail lists are joined by their "msg" field,
// anything else falls back to its compact JSON text.
func messageText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("false")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err == nil {
		return compact.String()
	}
	return string(raw)
}

func objectFields(body []byte) (map[string]json.RawMessage, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func isList(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// decodeList decodes an error-or-list payload. Error is checked first, then
// list-ness; anything else is Empty.
func decodeList[T any](body []byte) Result[[]T] {
	if msg, ok := businessError(body); ok {
		return errResult[[]T](msg)
	}
	if !isList(body) {
		return emptyResult[[]T]()
	}
	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return emptyResult[[]T]()
	}
	if items == nil {
		items = []T{}
	}
	return okResult(items)
}

// decodeListField decodes an error-or-{field: [...]} payload
func decodeListField[T any](body []byte, field string) Result[[]T] {
	if msg, ok := businessError(body); ok {
		return errResult[[]T](msg)
	}
	fields, ok := objectFields(body)
	if !ok {
		return emptyResult[[]T]()
	}
	raw, ok := fields[field]
	if !ok || !isList(raw) {
		return emptyResult[[]T]()
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return emptyResult[[]T]()
	}
	if items == nil {
		items = []T{}
	}
	return okResult(items)
}

// decodeObject decodes an error-or-object payload; required names a field
// that must be present for the payload to count as OK.
func decodeObject[T any](body []byte, required string) Result[T] {
	if msg, ok := businessError(body); ok {
		return errResult[T](msg)
	}
	fields, ok := objectFields(body)
	if !ok {
		return emptyResult[T]()
	}
	if required != "" {
		if _, present := fields[required]; !present {
			return emptyResult[T]()
		}
	}
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return emptyResult[T]()
	}
	return okResult(v)
}
