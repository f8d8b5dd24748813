package controlroom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/zoobzio/zyn"
)

// Provider defines the interface for LLM providers backing the response
// layer. This matches zyn.Provider for compatibility.
type Provider interface {
	Call(ctx context.Context, messages []zyn.Message, temperature float32) (*zyn.ProviderResponse, error)
	Name() string
}

// Context key for provider.
type providerKeyType struct{}

var providerKey = providerKeyType{}

// Global provider fallback.
var (
	globalProvider   Provider
	globalProviderMu sync.RWMutex
)

// ErrNoProvider is returned when no provider can be resolved.
var ErrNoProvider = errors.New("no provider configured: set via context, responder-level, or global")

// SetProvider sets the global fallback provider.
func SetProvider(p Provider) {
	globalProviderMu.Lock()
	defer globalProviderMu.Unlock()
	globalProvider = p
}

// WithProvider adds a provider to the context. This is the preferred method
// for provider management.
func WithProvider(ctx context.Context, p Provider) context.Context {
	return context.WithValue(ctx, providerKey, p)
}

// ResolveProvider determines which provider to use: responder-level first,
// then context, then the global fallback, else ErrNoProvider.
func ResolveProvider(ctx context.Context, responderProvider Provider) (Provider, error) {
	if responderProvider != nil {
		return responderProvider, nil
	}
	if p, ok := ctx.Value(providerKey).(Provider); ok {
		return p, nil
	}

	globalProviderMu.RLock()
	p := globalProvider
	globalProviderMu.RUnlock()

	if p != nil {
		return p, nil
	}
	return nil, ErrNoProvider
}

// Responder is the response-generation collaborator: it consumes a
// directive plus the raw guest message and produces the prose shown to the
// guest. The turn engine treats it as a black box: all decisions are
// already fixed in the directive, and the responder must not second-guess
// the strategy, guardrails, or safety mode.
type Responder struct {
	provider Provider
	session  *zyn.Session
}

// NewResponder creates a responder. A nil provider defers resolution to the
// context or the global fallback at call time.
func NewResponder(provider Provider) *Responder {
	return &Responder{
		provider: provider,
		session:  zyn.NewSession(),
	}
}

// Respond renders the next interviewer line under the directive's
// constraints. Grounding directives bypass generation entirely: the fixed
// safety copy is returned verbatim.
func (r *Responder) Respond(ctx context.Context, directive Directive, userMessage string) (string, error) {
	if directive.Guardrails.SafetyMode == SafetyModeStopAndGround {
		return directive.Instruction, nil
	}

	provider, err := ResolveProvider(ctx, r.provider)
	if err != nil {
		return "", err
	}

	synapse, err := zyn.Transform(
		"Write the interviewer's next line under the booth directive",
		provider,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create response synapse: %w", err)
	}

	envelope, err := json.Marshal(directive)
	if err != nil {
		return "", fmt.Errorf("failed to encode directive: %w", err)
	}

	out, err := synapse.FireWithInput(ctx, r.session, zyn.TransformInput{
		Text:    userMessage,
		Context: string(envelope),
		Style: fmt.Sprintf(
			"You are the interviewer's earpiece made voice. Strategy %q with device %q. "+
				"Posture: %s, tone %s. Follow the instruction exactly, respect every guardrail, "+
				"and never mention the directive, the booth, or any detected pattern unless the "+
				"instruction says to.",
			directive.Strategy, directive.Device,
			directive.Posture.Lean, directive.Posture.Tone,
		),
	})
	if err != nil {
		return "", fmt.Errorf("response synapse execution failed: %w", err)
	}
	return out, nil
}
