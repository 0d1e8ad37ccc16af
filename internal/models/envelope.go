package models

import "encoding/json"

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Envelope is the uniform wrapper of every API response. Data is kept raw so
// callers decode it into the type the endpoint returns.
type Envelope struct {
	Result  string          `json:"result"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// OK reports whether the envelope carries a success result.
func (e Envelope) OK() bool { return e.Result == ResultSuccess }

// Reason returns the most specific human-readable failure text.
func (e Envelope) Reason() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
