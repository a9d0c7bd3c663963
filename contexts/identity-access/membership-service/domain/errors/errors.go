package errors

import "errors"

var (
	ErrInvalidActorID       = errors.New("invalid actor id")
	ErrInvalidOrgID         = errors.New("invalid organization id")
	ErrInvalidRegistryKey   = errors.New("invalid registry key")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidStatus        = errors.New("invalid membership status")
	ErrUnknownAction        = errors.New("unknown action")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrOrganizationExists   = errors.New("organization already registered")
	ErrLastOwner            = errors.New("organization must keep at least one active owner")
)
