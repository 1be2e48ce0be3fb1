package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/lixenwraith/redking/constant"
)

func sampleRecord(id, parent string, at time.Time) RunRecord {
	return RunRecord{
		ID:        id,
		CreatedAt: at,
		BaseName:  "base-" + id,
		Length:    40,
		Params:    "v1:amin=1.5;amax=4",
		ParentID:  parent,
	}
}

// backends returns one fresh, initialized store per kind
func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	out := map[string]Store{
		constant.StoreMemory: NewMemoryStore(),
		constant.StoreTOML:   NewTOMLStore(filepath.Join(dir, "runs.toml")),
		constant.StoreSQLite: NewSQLiteStore(filepath.Join(dir, "runs.db")),
	}
	for name, s := range out {
		if err := s.Init(context.Background()); err != nil {
			t.Fatalf("%s init: %v", name, err)
		}
		t.Cleanup(func() { _ = CloseIfSupported(s) })
	}
	return out
}

func TestStoreContract(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := s.ListAll(ctx)
			if err != nil {
				t.Fatalf("list empty: %v", err)
			}
			if len(empty) != 0 {
				t.Fatalf("expected empty store, got %d", len(empty))
			}

			a := sampleRecord("a", "", base)
			b := sampleRecord("b", "a", base.Add(time.Second))
			c := sampleRecord("c", "missing-parent", base.Add(2*time.Second))
			for _, rec := range []RunRecord{a, b, c} {
				if err := s.Append(ctx, rec); err != nil {
					t.Fatalf("append %s: %v", rec.ID, err)
				}
			}

			if err := s.Append(ctx, a); !errors.Is(err, ErrDuplicate) {
				t.Errorf("expected ErrDuplicate, got %v", err)
			}

			all, err := s.ListAll(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if diff := cmp.Diff([]RunRecord{a, b, c}, all, cmpopts.EquateApproxTime(time.Microsecond)); diff != "" {
				t.Errorf("list mismatch (-want +got):\n%s", diff)
			}

			if err := s.UpdateFitness(ctx, "b", 2.5); err != nil {
				t.Fatalf("update fitness: %v", err)
			}
			if err := s.AddFeedback(ctx, "b", 3, 1); err != nil {
				t.Fatalf("add feedback: %v", err)
			}
			if err := s.AddFeedback(ctx, "b", 1, 0); err != nil {
				t.Fatalf("add feedback: %v", err)
			}

			got, err := s.Get(ctx, "b")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Fitness != 2.5 || got.Upvotes != 4 || got.Downvotes != 1 {
				t.Errorf("unexpected record after updates: %+v", got)
			}
			if got.ParentID != "a" || !got.HasParent() {
				t.Errorf("parent link lost: %+v", got)
			}

			if _, err := s.Get(ctx, "zzz"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
			if err := s.UpdateFitness(ctx, "zzz", 1); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound on update, got %v", err)
			}
			if err := s.AddFeedback(ctx, "zzz", 1, 0); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound on feedback, got %v", err)
			}
		})
	}
}

func TestStoreNotInitialized(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for name, s := range map[string]Store{
		constant.StoreMemory: NewMemoryStore(),
		constant.StoreTOML:   NewTOMLStore(filepath.Join(dir, "runs.toml")),
		constant.StoreSQLite: NewSQLiteStore(filepath.Join(dir, "runs.db")),
	} {
		if _, err := s.ListAll(ctx); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("%s: expected ErrNotInitialized, got %v", name, err)
		}
		if err := s.Append(ctx, sampleRecord("x", "", time.Now())); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("%s: expected ErrNotInitialized on append, got %v", name, err)
		}
	}
}

func TestPersistentStoresReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	at := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, kind := range []string{constant.StoreTOML, constant.StoreSQLite} {
		t.Run(kind, func(t *testing.T) {
			path := filepath.Join(dir, "reopen-"+kind)

			first, err := NewStore(kind, path)
			if err != nil {
				t.Fatalf("new store: %v", err)
			}
			if err := first.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			if err := first.Append(ctx, sampleRecord("r1", "", at)); err != nil {
				t.Fatalf("append: %v", err)
			}
			if err := first.UpdateFitness(ctx, "r1", -1); err != nil {
				t.Fatalf("update: %v", err)
			}
			if err := CloseIfSupported(first); err != nil {
				t.Fatalf("close: %v", err)
			}

			second, err := NewStore(kind, path)
			if err != nil {
				t.Fatalf("new store: %v", err)
			}
			if err := second.Init(ctx); err != nil {
				t.Fatalf("reinit: %v", err)
			}
			defer CloseIfSupported(second)

			got, err := second.Get(ctx, "r1")
			if err != nil {
				t.Fatalf("get after reopen: %v", err)
			}
			if got.Fitness != -1 || !got.CreatedAt.Equal(at) {
				t.Errorf("record not persisted: %+v", got)
			}
		})
	}
}

func TestTOMLStoreRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.toml")
	if err := os.WriteFile(path, []byte("version = 9\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := NewTOMLStore(path).Init(context.Background()); err == nil {
		t.Fatal("expected version error")
	}
}

func TestNewStore(t *testing.T) {
	for _, kind := range []string{"", constant.StoreMemory, constant.StoreTOML, constant.StoreSQLite} {
		s, err := NewStore(kind, "x")
		if err != nil || s == nil {
			t.Errorf("kind %q: store=%v err=%v", kind, s, err)
		}
	}
	if _, err := NewStore("unknown", ""); err == nil {
		t.Fatal("expected unsupported store error")
	}
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Fatal("expected path error")
	}
}
