package evolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/lixenwraith/redking/store"
)

// Lineage returns the record with id followed by its ancestors, nearest first
// The walk stops quietly at a parent that no longer exists or at a repeated id
func Lineage(ctx context.Context, s store.Store, id string) ([]store.RunRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	chain := []store.RunRecord{rec}
	seen := map[string]bool{rec.ID: true}
	for rec.HasParent() && !seen[rec.ParentID] {
		parent, err := s.Get(ctx, rec.ParentID)
		if errors.Is(err, store.ErrNotFound) {
			break
		}
		if err != nil {
			return chain, fmt.Errorf("resolve parent %s: %w", rec.ParentID, err)
		}
		seen[parent.ID] = true
		chain = append(chain, parent)
		rec = parent
	}
	return chain, nil
}

// Children groups record ids by parent id; roots are listed under ""
func Children(records []store.RunRecord) map[string][]string {
	out := make(map[string][]string)
	for _, rec := range records {
		out[rec.ParentID] = append(out[rec.ParentID], rec.ID)
	}
	return out
}
