package config

import (
	"maps"
	"slices"
)

// ErrorCode is a stable user-facing error identifier ("E" + 3 digits).
type ErrorCode string

const (
	ErrorMissingAPIKey   ErrorCode = "E001"
	ErrorAudioSystem     ErrorCode = "E002"
	ErrorNetwork         ErrorCode = "E003"
	ErrorHighTemperature ErrorCode = "E004"
	ErrorLowMemory       ErrorCode = "E005"
)

// ErrorCatalog maps error codes to spoken/displayed messages.
// The zero value answers every lookup with an empty fallback.
type ErrorCatalog struct {
	messages map[ErrorCode]string
	fallback string
}

func newErrorCatalog(messages map[ErrorCode]string, fallback string) ErrorCatalog {
	return ErrorCatalog{messages: maps.Clone(messages), fallback: fallback}
}

// Message returns the dedicated message for code, or the fallback.
func (c ErrorCatalog) Message(code ErrorCode) string {
	if msg, ok := c.messages[code]; ok {
		return msg
	}
	return c.fallback
}

// Lookup reports whether code has a dedicated message.
func (c ErrorCatalog) Lookup(code ErrorCode) (string, bool) {
	msg, ok := c.messages[code]
	return msg, ok
}

// Fallback returns the message used for codes without a dedicated entry.
func (c ErrorCatalog) Fallback() string {
	return c.fallback
}

// Codes returns the codes with dedicated messages in ascending order.
func (c ErrorCatalog) Codes() []ErrorCode {
	codes := make([]ErrorCode, 0, len(c.messages))
	for code := range c.messages {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// MarshalYAML renders the catalog as a flat code → message mapping.
func (c ErrorCatalog) MarshalYAML() (any, error) {
	out := make(map[string]string, len(c.messages)+1)
	for code, msg := range c.messages {
		out[string(code)] = msg
	}
	out["DEFAULT"] = c.fallback
	return out, nil
}
