package tool

import (
	"encoding/json"
	"fmt"
)

// Result is the structured outcome of one tool invocation.
// A failed result always carries a non-empty Error. A successful result
// always carries its Primary key in Payload.
type Result struct {
	Success bool           `json:"success"`
	Payload map[string]any `json:"payload,omitempty"`
	Primary string         `json:"-"`
	Error   string         `json:"error,omitempty"`
}

// Success builds a successful result whose primary field is key.
func Success(key string, value any) Result {
	return Result{
		Success: true,
		Payload: map[string]any{key: value},
		Primary: key,
	}
}

// With returns a copy of r with an extra payload field.
func (r Result) With(key string, value any) Result {
	payload := make(map[string]any, len(r.Payload)+1)
	for k, v := range r.Payload {
		payload[k] = v
	}
	payload[key] = value
	r.Payload = payload
	return r
}

// Failure builds a failed result from err.
func Failure(err error) Result {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return failure(msg)
}

// Failuref builds a failed result from a formatted message.
func Failuref(format string, args ...any) Result {
	return failure(fmt.Sprintf(format, args...))
}

func failure(msg string) Result {
	if msg == "" {
		msg = "unknown error"
	}
	return Result{Success: false, Error: msg}
}

// PrimaryValue returns the value shown to the user: the primary field on
// success, the error message on failure.
func (r Result) PrimaryValue() any {
	if !r.Success {
		return r.Error
	}
	return r.Payload[r.Primary]
}

// LLMContent serializes the result for the model.
func (r Result) LLMContent() string {
	var body map[string]any
	if r.Success {
		body = make(map[string]any, len(r.Payload)+1)
		for k, v := range r.Payload {
			body[k] = v
		}
		body["success"] = true
	} else {
		body = map[string]any{"success": false, "error": r.Error}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":%q}`, "unserializable result: "+err.Error())
	}
	return string(data)
}
