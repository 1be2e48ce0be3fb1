package store

import (
	"fmt"

	"github.com/lixenwraith/redking/constant"
)

// NewStore builds a backend by kind; path is ignored for memory
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", constant.StoreMemory:
		return NewMemoryStore(), nil
	case constant.StoreTOML:
		return NewTOMLStore(path), nil
	case constant.StoreSQLite:
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
