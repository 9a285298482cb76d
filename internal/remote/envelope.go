package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// envelope is the wrapper most endpoints put around their payload.
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

var envelopeStatuses = map[string]bool{
	"SUCCESS": true,
	"ERROR":   true,
	"FAILURE": true,
	"FAILED":  true,
}

// decodeData unwraps an envelope or a bare payload into out. A 2xx envelope
// that reports a non-success status becomes an *APIError.
func decodeData(op string, status int, body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		if out == nil {
			return nil
		}
		return fmt.Errorf("%s: %w: empty body", op, ErrMalformedResponse)
	}

	if trimmed[0] == '[' {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(trimmed, out); err != nil {
			return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
		}
		return nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &keys); err != nil {
		if out == nil {
			return nil
		}
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}

	var env envelope
	_ = json.Unmarshal(trimmed, &env)
	_, hasData := keys["data"]
	isEnvelope := hasData || envelopeStatuses[strings.ToUpper(env.Status)]

	if !isEnvelope {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(trimmed, out); err != nil {
			return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
		}
		return nil
	}

	if env.Status != "" && !strings.EqualFold(env.Status, "SUCCESS") {
		msg := firstNonEmpty(env.Message, env.Error)
		if msg == "" {
			msg = fmt.Sprintf("%s failed", op)
		}
		return &APIError{Op: op, StatusCode: status, Message: msg}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}
	return nil
}

// messageFrom extracts the human-readable reason from an error response:
// message, then error, then the raw body, then the status text.
func messageFrom(body []byte, status int) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil {
			if msg := firstNonEmpty(env.Message, env.Error); msg != "" {
				return msg
			}
			var nested envelope
			if len(env.Data) > 0 && json.Unmarshal(env.Data, &nested) == nil {
				if msg := firstNonEmpty(nested.Message, nested.Error); msg != "" {
					return msg
				}
			}
		}
	}
	if len(trimmed) > 0 && trimmed[0] != '{' && trimmed[0] != '<' {
		return string(trimmed)
	}
	return http.StatusText(status)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
