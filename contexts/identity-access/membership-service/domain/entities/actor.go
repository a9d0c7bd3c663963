package entities

// Actor is the stable identifier supplied by the external identity provider.
// IsPlatformAdmin bypasses every organization-scoped check.
type Actor struct {
	ID              string `json:"actor_id"`
	IsPlatformAdmin bool   `json:"is_platform_admin"`
}
