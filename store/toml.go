package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// fileDTO is the on-disk layout of a TOML store
type fileDTO struct {
	Version int         `toml:"version"`
	Runs    []RunRecord `toml:"runs"`
}

const tomlVersion = 1

// TOMLStore keeps all records in one TOML file, rewritten through a temp file and
// rename on every change
type TOMLStore struct {
	path string

	mu  sync.Mutex
	mem *MemoryStore
}

func NewTOMLStore(path string) *TOMLStore {
	return &TOMLStore{path: path}
}

func (s *TOMLStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("toml store path is required")
	}

	mem := NewMemoryStore()
	_ = mem.Init(ctx)

	dto, err := s.load()
	if err != nil {
		return err
	}
	for _, rec := range dto.Runs {
		if err := mem.Append(ctx, rec); err != nil {
			return fmt.Errorf("load %s: %w", s.path, err)
		}
	}
	s.mem = mem
	return nil
}

func (s *TOMLStore) ListAll(ctx context.Context) ([]RunRecord, error) {
	mem, err := s.getMem()
	if err != nil {
		return nil, err
	}
	return mem.ListAll(ctx)
}

func (s *TOMLStore) Get(ctx context.Context, id string) (RunRecord, error) {
	mem, err := s.getMem()
	if err != nil {
		return RunRecord{}, err
	}
	return mem.Get(ctx, id)
}

func (s *TOMLStore) Append(ctx context.Context, rec RunRecord) error {
	return s.write(ctx, func(mem *MemoryStore) error { return mem.Append(ctx, rec) })
}

func (s *TOMLStore) UpdateFitness(ctx context.Context, id string, fitness float64) error {
	return s.write(ctx, func(mem *MemoryStore) error { return mem.UpdateFitness(ctx, id, fitness) })
}

func (s *TOMLStore) AddFeedback(ctx context.Context, id string, up, down int) error {
	return s.write(ctx, func(mem *MemoryStore) error { return mem.AddFeedback(ctx, id, up, down) })
}

func (s *TOMLStore) getMem() (*MemoryStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mem == nil {
		return nil, ErrNotInitialized
	}
	return s.mem, nil
}

// write applies fn in memory, then persists; memory is rolled back if saving fails
func (s *TOMLStore) write(ctx context.Context, fn func(*MemoryStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mem == nil {
		return ErrNotInitialized
	}
	prev, err := s.mem.ListAll(ctx)
	if err != nil {
		return err
	}
	if err := fn(s.mem); err != nil {
		return err
	}
	runs, err := s.mem.ListAll(ctx)
	if err != nil {
		return err
	}
	if err := s.save(fileDTO{Version: tomlVersion, Runs: runs}); err != nil {
		s.mem = memoryFrom(ctx, prev)
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	return nil
}

func memoryFrom(ctx context.Context, runs []RunRecord) *MemoryStore {
	mem := NewMemoryStore()
	_ = mem.Init(ctx)
	for _, rec := range runs {
		_ = mem.Append(ctx, rec)
	}
	return mem
}

func (s *TOMLStore) load() (fileDTO, error) {
	var dto fileDTO
	if _, err := toml.DecodeFile(s.path, &dto); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileDTO{Version: tomlVersion}, nil
		}
		return dto, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if dto.Version != tomlVersion {
		return dto, fmt.Errorf("%s: unsupported version %d", s.path, dto.Version)
	}
	return dto, nil
}

func (s *TOMLStore) save(dto fileDTO) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(dto); err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
