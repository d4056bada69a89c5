// Package identity defines the collaborator interface for the external
// identity provider. The engine never reaches for ambient session state; an
// explicit Provider is injected into every component that needs one.
package identity

import "context"

// Identity is the caller snapshot handed to the engine.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoRef    string `json:"photo_ref,omitempty"`
}

// Provider resolves the current caller and privilege checks.
type Provider interface {
	// Current returns the identity attached to ctx, or false when the
	// caller is anonymous.
	Current(ctx context.Context) (Identity, bool)
	// IsPrivileged reports whether id may resolve or delete flagged content.
	IsPrivileged(ctx context.Context, id Identity) bool
}

type contextKey int

const (
	identityKey contextKey = iota
	privilegedKey
)

// WithIdentity attaches the caller's identity and privilege flag to ctx.
// Transport middleware calls this once per request; nothing downstream
// reaches for ambient session state.
func WithIdentity(ctx context.Context, id Identity, privileged bool) context.Context {
	ctx = context.WithValue(ctx, identityKey, id)
	return context.WithValue(ctx, privilegedKey, privileged)
}

// FromContext returns the identity attached by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// ContextProvider is the Provider backed by request-scoped context values.
type ContextProvider struct{}

// Current implements Provider.
func (ContextProvider) Current(ctx context.Context) (Identity, bool) {
	return FromContext(ctx)
}

// IsPrivileged implements Provider. Only the caller's own privilege is
// knowable from the request context.
func (ContextProvider) IsPrivileged(ctx context.Context, id Identity) bool {
	current, ok := FromContext(ctx)
	if !ok || current.ID != id.ID {
		return false
	}
	privileged, _ := ctx.Value(privilegedKey).(bool)
	return privileged
}

// Static is a fixed-table Provider used by tests and the seed command.
type Static struct {
	Identity   Identity
	Privileged map[string]bool
}

// Current implements Provider.
func (s Static) Current(context.Context) (Identity, bool) {
	return s.Identity, s.Identity.ID != ""
}

// IsPrivileged implements Provider.
func (s Static) IsPrivileged(_ context.Context, id Identity) bool {
	return s.Privileged[id.ID]
}
