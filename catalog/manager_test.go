package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileen/nativeplan/storage"
	"github.com/guileen/nativeplan/types"
)

func newTestManager(t *testing.T) *Manager {
	kv, err := storage.NewPebbleKV(storage.DefaultPebbleConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return NewManager(kv)
}

func empDefinition() *TableDefinition {
	return &TableDefinition{
		Name: "emp",
		Columns: []ColumnDefinition{
			{Name: "dept", Type: types.ColumnTypeText},
			{Name: "salary", Type: types.ColumnTypeInteger},
		},
	}
}

func TestCreateAndGetTable(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	def := empDefinition()
	require.NoError(t, m.CreateTable(ctx, def))
	assert.NotEqual(t, uuid.Nil, def.ID)

	got, err := m.GetTable(ctx, "emp")
	require.NoError(t, err)
	assert.Equal(t, def.ID, got.ID)
	assert.Equal(t, def.Columns, got.Columns)
}

func TestCreateTableDuplicate(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.CreateTable(ctx, empDefinition()))
	err := m.CreateTable(ctx, empDefinition())
	require.ErrorIs(t, err, ErrTableExists)
}

func TestCreateTableInvalidType(t *testing.T) {
	m := newTestManager(t)

	def := &TableDefinition{
		Name:    "bad",
		Columns: []ColumnDefinition{{Name: "c", Type: "tensor"}},
	}
	err := m.CreateTable(context.Background(), def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid type")
}

func TestGetTableNotFound(t *testing.T) {
	m := newTestManager(t)

	_, err := m.GetTable(context.Background(), "missing")
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestListTables(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.CreateTable(ctx, empDefinition()))
	require.NoError(t, m.CreateTable(ctx, &TableDefinition{
		Name:    "dept",
		Columns: []ColumnDefinition{{Name: "name", Type: types.ColumnTypeText}},
	}))

	defs, err := m.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "dept", defs[0].Name)
	assert.Equal(t, "emp", defs[1].Name)
}

func TestDropTable(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.CreateTable(ctx, empDefinition()))
	require.NoError(t, m.DropTable(ctx, "emp"))

	_, err := m.GetTable(ctx, "emp")
	require.ErrorIs(t, err, ErrTableNotFound)

	err = m.DropTable(ctx, "emp")
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestTableDefinitionColumn(t *testing.T) {
	def := empDefinition()

	col, ok := def.Column("salary")
	require.True(t, ok)
	assert.Equal(t, types.ColumnTypeInteger, col.Type)

	_, ok = def.Column("bonus")
	assert.False(t, ok)
}
