// Package store persists run records.
//
// Records are appended once on a successful run. Afterwards only the fitness and the
// feedback counters change. ParentID is a plain identifier: parents are never owned
// and removing one leaves its children untouched.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("record already exists")
	ErrNotInitialized = errors.New("store is not initialized")
)

// RunRecord is one completed generation
type RunRecord struct {
	ID        string    `toml:"id" yaml:"id"`
	CreatedAt time.Time `toml:"created_at" yaml:"created_at"`
	BaseName  string    `toml:"base_name" yaml:"base_name"`
	Length    int       `toml:"length" yaml:"length"`
	Params    string    `toml:"params" yaml:"params"`
	Upvotes   int       `toml:"upvotes" yaml:"upvotes"`
	Downvotes int       `toml:"downvotes" yaml:"downvotes"`
	Fitness   float64   `toml:"fitness" yaml:"fitness"`
	ParentID  string    `toml:"parent_id,omitempty" yaml:"parent_id,omitempty"`
}

// HasParent reports whether the record links to a parent
func (r RunRecord) HasParent() bool {
	return r.ParentID != ""
}

// Store is the record repository
type Store interface {
	Init(ctx context.Context) error
	// ListAll returns every record in creation order
	ListAll(ctx context.Context) ([]RunRecord, error)
	Get(ctx context.Context, id string) (RunRecord, error)
	Append(ctx context.Context, rec RunRecord) error
	UpdateFitness(ctx context.Context, id string, fitness float64) error
	// AddFeedback adds to the vote counters; fitness is left to the fitness tracker
	AddFeedback(ctx context.Context, id string, up, down int) error
}
