// Package completion wraps the chat-completion provider behind a small
// interface so the chapter service can swap credentials per request and
// tests can substitute a fake.
package completion

import (
	"context"

	"github.com/chapterforge/chapterforge-server/internal/errors"
)

// Request is a single chat completion exchange: one system message and
// one user message.
type Request struct {
	System      string
	User        string
	Temperature float32
}

// Client produces a completion for a request.
type Client interface {
	// Complete returns the assistant reply text. Failures are reported as
	// coded errors: CREDENTIAL_INVALID, RATE_LIMITED or
	// COMPLETION_UNAVAILABLE.
	Complete(ctx context.Context, req Request) (string, error)
}

// Factory builds clients bound to a credential. The server credential is
// fixed at construction time; user credentials arrive with each request.
type Factory interface {
	// Server returns a client bound to the server-side credential, or a
	// CREDENTIAL_MISSING error when none is configured.
	Server() (Client, error)
	// ForKey returns a client bound to a caller-supplied credential.
	ForKey(key string) Client
}

// errNoServerKey is returned by Factory.Server when the deployment has no
// server-side credential configured.
func errNoServerKey() error {
	return errors.CredentialMissing("no server completion credential configured")
}
