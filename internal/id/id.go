// Package id generates identifiers for events, stream clients and commands.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes used across the preferences core.
const (
	PrefixEvent  = "evt"
	PrefixClient = "sse"
)

// Generate creates a prefixed NanoID, e.g. "evt-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewCorrelationID returns a random UUID tying a command to the events it produced.
func NewCorrelationID() string {
	return uuid.NewString()
}
