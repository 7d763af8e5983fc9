package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/guileen/nativeplan/storage"
	"github.com/guileen/nativeplan/types"
)

var (
	// ErrTableNotFound indicates the table does not exist in the catalog
	ErrTableNotFound = errors.New("table not found")
	// ErrTableExists indicates a table with the same name already exists
	ErrTableExists = errors.New("table already exists")
)

// ColumnDefinition defines a table column
type ColumnDefinition struct {
	Name     string           `json:"name"`
	Type     types.ColumnType `json:"type"`
	Nullable bool             `json:"nullable"`
}

// TableDefinition defines a table schema
type TableDefinition struct {
	ID      uuid.UUID          `json:"id"`
	Name    string             `json:"name"`
	Columns []ColumnDefinition `json:"columns"`
}

// Column returns the definition of the named column, if present
func (t *TableDefinition) Column(name string) (ColumnDefinition, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnDefinition{}, false
}

// Manager persists table definitions in a KV store
type Manager struct {
	kv storage.KV
}

// NewManager creates a catalog manager over the given store
func NewManager(kv storage.KV) *Manager {
	return &Manager{kv: kv}
}

func tableKey(name string) []byte {
	return []byte("table/" + name)
}

// CreateTable registers a new table definition. The definition is assigned
// a fresh ID; validation rejects unknown column types.
func (m *Manager) CreateTable(ctx context.Context, def *TableDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if len(def.Columns) == 0 {
		return fmt.Errorf("table %q needs at least one column", def.Name)
	}
	for _, col := range def.Columns {
		if !types.IsValidColumnType(col.Type) {
			return fmt.Errorf("table %q column %q: invalid type %q", def.Name, col.Name, col.Type)
		}
	}

	if _, err := m.kv.Get(ctx, tableKey(def.Name)); err == nil {
		return fmt.Errorf("%w: %s", ErrTableExists, def.Name)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("check table %q: %w", def.Name, err)
	}

	def.ID = uuid.New()
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode table %q: %w", def.Name, err)
	}
	if err := m.kv.Set(ctx, tableKey(def.Name), data); err != nil {
		return fmt.Errorf("store table %q: %w", def.Name, err)
	}
	return nil
}

// GetTable loads a table definition by name
func (m *Manager) GetTable(ctx context.Context, name string) (*TableDefinition, error) {
	data, err := m.kv.Get(ctx, tableKey(name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
		return nil, fmt.Errorf("load table %q: %w", name, err)
	}

	var def TableDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode table %q: %w", name, err)
	}
	return &def, nil
}

// ListTables returns all table definitions, ordered by name
func (m *Manager) ListTables(ctx context.Context) ([]*TableDefinition, error) {
	var defs []*TableDefinition
	var decodeErr error

	err := m.kv.Scan(ctx, []byte("table/"), func(key, value []byte) bool {
		var def TableDefinition
		if err := json.Unmarshal(value, &def); err != nil {
			decodeErr = fmt.Errorf("decode %q: %w", key, err)
			return false
		}
		defs = append(defs, &def)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan tables: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return defs, nil
}

// DropTable removes a table definition
func (m *Manager) DropTable(ctx context.Context, name string) error {
	if _, err := m.GetTable(ctx, name); err != nil {
		return err
	}
	if err := m.kv.Delete(ctx, tableKey(name)); err != nil {
		return fmt.Errorf("drop table %q: %w", name, err)
	}
	return nil
}
