package helpers

import "context"

const (
	RoleAdmin = "admin"
)

// Identity is the resolved caller of a dashboard request.
type Identity struct {
	UserID    string `json:"id"`
	SessionID string `json:"-"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
	Role      string `json:"role"`
}

func (id *Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by the session gate, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
