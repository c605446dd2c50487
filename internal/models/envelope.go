package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Envelope types
const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeEvent    = "event"
)

// Request methods
const (
	MethodMonitors  = "monitors"
	MethodWindows   = "windows"
	MethodCommand   = "command"
	MethodSubscribe = "subscribe"
)

// Error codes carried in ErrorInfo.Code
const (
	CodeProtocol        = "protocol_error"
	CodeInvalidCommand  = "invalid_command"
	CodeInvalidParams   = "invalid_params"
	CodeUnknownMethod   = "unknown_method"
	CodeNotFound        = "not_found"
	CodePolicyRejection = "policy_rejection"
	CodeStructural      = "structural_integrity"
	CodeCommandFailed   = "command_failed"
	CodeUnavailable     = "unavailable"
	CodeInternal        = "internal"
)

// ErrMalformed is returned by Validate for envelopes that cannot be served
var ErrMalformed = errors.New("malformed message")

var validate = validator.New()

// MessageEnvelope is the top-level message structure for all communications
type MessageEnvelope struct {
	Type     string    `json:"type" validate:"required,oneof=request response event"`
	Request  *Request  `json:"request,omitempty" validate:"required_if=Type request"`
	Response *Response `json:"response,omitempty"`
	Event    *Event    `json:"event,omitempty"`
}

// Request represents an RPC request
type Request struct {
	ID     string                 `json:"id" validate:"required"`
	Method string                 `json:"method" validate:"required"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// Response represents an RPC response
type Response struct {
	ID     string                 `json:"id"`
	Result map[string]interface{} `json:"result,omitempty"`
	Error  *ErrorInfo             `json:"error,omitempty"`
}

// ErrorInfo represents an error in a response
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Event represents an asynchronous event from the server
type Event struct {
	EventType string                 `json:"eventType"`
	Seq       uint64                 `json:"seq"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewRequest creates a new request envelope
func NewRequest(id, method string, params map[string]interface{}) *MessageEnvelope {
	return &MessageEnvelope{
		Type: TypeRequest,
		Request: &Request{
			ID:     id,
			Method: method,
			Params: params,
		},
	}
}

// NewResponse creates a success response envelope
func NewResponse(id string, result map[string]interface{}) *MessageEnvelope {
	return &MessageEnvelope{
		Type:     TypeResponse,
		Response: &Response{ID: id, Result: result},
	}
}

// NewErrorResponse creates a failure response envelope
func NewErrorResponse(id, code, message string) *MessageEnvelope {
	return &MessageEnvelope{
		Type: TypeResponse,
		Response: &Response{
			ID:    id,
			Error: &ErrorInfo{Code: code, Message: message},
		},
	}
}

// NewEvent creates an event envelope
func NewEvent(eventType string, seq uint64, data map[string]interface{}, ts time.Time) *MessageEnvelope {
	return &MessageEnvelope{
		Type: TypeEvent,
		Event: &Event{
			EventType: eventType,
			Seq:       seq,
			Data:      data,
			Timestamp: ts,
		},
	}
}

// Validate checks that an inbound envelope is a well-formed request
func (m *MessageEnvelope) Validate() error {
	if err := validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q check", ErrMalformed, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// IsError returns true if the response contains an error
func (r *Response) IsError() bool {
	return r.Error != nil
}

// GetError returns the error message if present
func (r *Response) GetError() string {
	if r.Error != nil {
		return fmt.Sprintf("%s: %s", r.Error.Code, r.Error.Message)
	}
	return ""
}

// DecodeResult converts the result map into v
func (r *Response) DecodeResult(v interface{}) error {
	return Remarshal(r.Result, v)
}

// Remarshal converts between JSON-compatible representations, typically a
// struct and a map
func Remarshal(from, to interface{}) error {
	data, err := json.Marshal(from)
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	if err := json.Unmarshal(data, to); err != nil {
		return fmt.Errorf("failed to unmarshal: %w", err)
	}
	return nil
}

// ToMap renders a struct as a JSON object map
func ToMap(v interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := Remarshal(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarshalJSON implements custom JSON marshaling for MessageEnvelope
func (m *MessageEnvelope) MarshalJSON() ([]byte, error) {
	type Alias MessageEnvelope
	return json.Marshal(&struct {
		*Alias
	}{
		Alias: (*Alias)(m),
	})
}
