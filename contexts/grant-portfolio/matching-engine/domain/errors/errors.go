package errors

import "errors"

var (
	ErrInvalidActorID       = errors.New("invalid actor id")
	ErrInvalidOrgID         = errors.New("invalid organization id")
	ErrInvalidGrantID       = errors.New("invalid grant id")
	ErrInvalidGrant         = errors.New("invalid grant record")
	ErrInvalidStatus        = errors.New("invalid assignment status")
	ErrInvalidTransition    = errors.New("assignment transition not allowed")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrGrantNotFound        = errors.New("grant not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrAssignmentExists     = errors.New("assignment already exists")
	ErrConflict             = errors.New("conflicting concurrent write")
)
