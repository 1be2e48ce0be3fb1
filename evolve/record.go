package evolve

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/redking/store"
)

// BaseName derives the artifact file stem from serialized parameters
// Identical parameters always map to the same name
func BaseName(params string) string {
	sum := md5.Sum([]byte(params))
	return hex.EncodeToString(sum[:])
}

// Recorder appends successful runs to the store
type Recorder struct {
	store store.Store
	now   func() time.Time
	newID func() string
}

func NewRecorder(s store.Store) *Recorder {
	return &Recorder{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Record writes a new record linked to parent when one is given
func (r *Recorder) Record(ctx context.Context, baseName string, length int, params string, parent *store.RunRecord) (store.RunRecord, error) {
	rec := store.RunRecord{
		ID:        r.newID(),
		CreatedAt: r.now(),
		BaseName:  baseName,
		Length:    length,
		Params:    params,
	}
	if parent != nil {
		rec.ParentID = parent.ID
	}
	if err := r.store.Append(ctx, rec); err != nil {
		return store.RunRecord{}, fmt.Errorf("append record: %w", err)
	}
	return rec, nil
}
