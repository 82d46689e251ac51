package kv

import "fmt"

// Open selects and opens a storage backend by driver name. An empty driver
// falls back to memory so tests and quick starts need no configuration.
func Open(driver, basePath, databasePath, databaseURL string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		return NewFilesystemStore(basePath)
	case "sqlite":
		db, err := NewSQLiteDB(databasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return NewSQLStore(db), nil
	case "postgres":
		db, err := NewPostgresDB(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
