package errors

import "errors"

var (
	ErrInvalidActorID    = errors.New("invalid actor id")
	ErrInvalidOrgID      = errors.New("invalid organization id")
	ErrInvalidGrantID    = errors.New("invalid grant id")
	ErrInvalidDraftID    = errors.New("invalid draft id")
	ErrInvalidVersionID  = errors.New("invalid version id")
	ErrInvalidTitle      = errors.New("invalid draft title")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrDraftNotFound     = errors.New("draft not found")
	ErrVersionNotFound   = errors.New("draft version not found")
	ErrLineageCorrupt    = errors.New("draft lineage corrupt")
	ErrCrossDraftVersion = errors.New("version belongs to another draft")
	ErrConflict          = errors.New("conflicting concurrent write")
)
