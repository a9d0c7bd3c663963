package services

import (
	"grantstw/contexts/grant-portfolio/drafting-service/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/drafting-service/domain/errors"
)

// Lineage walks parent pointers from the head version back to the root and
// returns the chain head-first. A dangling parent or a cycle means the
// stored history is corrupt; the walk is bounded by the version count so a
// cycle cannot loop forever.
func Lineage(headID string, byID map[string]entities.DraftVersion) ([]entities.DraftVersion, error) {
	head, ok := byID[headID]
	if !ok {
		return nil, domainerrors.ErrVersionNotFound
	}

	chain := make([]entities.DraftVersion, 0, len(byID))
	seen := make(map[string]struct{}, len(byID))
	current := head
	for {
		if _, dup := seen[current.VersionID]; dup {
			return nil, domainerrors.ErrLineageCorrupt
		}
		seen[current.VersionID] = struct{}{}
		chain = append(chain, current)

		if current.ParentVersionID == "" {
			return chain, nil
		}
		parent, ok := byID[current.ParentVersionID]
		if !ok {
			return nil, domainerrors.ErrLineageCorrupt
		}
		current = parent
	}
}
