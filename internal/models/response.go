package models

import (
	"encoding/json"
	"time"
)

// Envelope is the uniform response wrapper shared by the proxy and its
// clients. Exactly one of Data, Error or Errors is set, keyed by Success.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   any             `json:"error,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
}

func Success(data json.RawMessage) Envelope {
	return Envelope{Success: true, Data: data}
}

// Failure wraps either an upstream error body or a message string.
func Failure(err any) Envelope {
	return Envelope{Success: false, Error: err}
}

func Invalid(errs []string) Envelope {
	return Envelope{Success: false, Errors: errs}
}

// ErrorMessage returns the error as text when it is a plain message.
func (e Envelope) ErrorMessage() (string, bool) {
	msg, ok := e.Error.(string)
	return msg, ok
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

const HealthStatusOK = "OK"
