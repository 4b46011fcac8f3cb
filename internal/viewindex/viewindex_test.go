package viewindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBuildFoldersAndRootSentinel(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "finance/orders.view.lkml", "view: orders {\n}\n")
	write(t, dir, "customers.view.lkml", "view: customers {\n}\n")

	x, err := Build(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "finance", x.Folders["orders"])
	assert.Equal(t, RootFolder, x.Folders["customers"])
	assert.Equal(t, []string{"customers", "orders"}, x.Names())
}

func TestBuildCoverage(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "orders.view.lkml", `view: orders {
  dimension: id {
    primary_key: yes
    description: "Order identifier"
  }
  dimension: status { }
  dimension_group: created {
    description: "When the order was placed"
  }
  measure: total { type: count }
}
`)
	write(t, dir, "empty.view.lkml", "view: empty {\n}\n")

	x, err := Build(context.Background(), dir)
	require.NoError(t, err)

	cov := x.Coverage["orders"]
	assert.Equal(t, 4, cov.Total)
	assert.Equal(t, 2, cov.Described)
	assert.True(t, cov.Defined())
	assert.Equal(t, 50, cov.Percent())

	empty := x.Coverage["empty"]
	assert.Equal(t, 0, empty.Total)
	assert.False(t, empty.Defined())
}

func TestBuildExtendsAndPrimaryKey(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "orders.view.lkml", `view: orders {
  extends: [base_orders, shared_fields]
  dimension: id { primary_key: yes }
}
`)
	write(t, dir, "loose.view.lkml", `view: loose {
  dimension: name { }
}
`)

	x, err := Build(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"base_orders", "shared_fields"}, x.Extends["orders"])

	has, known := x.HasPrimaryKey("orders")
	assert.True(t, known)
	assert.True(t, has)

	has, known = x.HasPrimaryKey("loose")
	assert.True(t, known)
	assert.False(t, has)

	_, known = x.HasPrimaryKey("ghost")
	assert.False(t, known)
}

func TestBuildMultiViewFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "pair.view.lkml", "view: first {\n}\nview: second {\n}\n")

	x, err := Build(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"pair.view.lkml"}, x.MultiViewFiles)
	assert.Contains(t, x.Folders, "first")
	assert.Contains(t, x.Folders, "second")
}

func TestBuildDuplicateViewNameLastWins(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a/orders.view.lkml", "view: orders {\n}\n")
	write(t, dir, "b/orders.view.lkml", "view: orders {\n}\n")

	x, err := Build(context.Background(), dir)
	require.NoError(t, err)

	// Scan order is sorted, so b wins.
	assert.Equal(t, "b", x.Folders["orders"])
	require.Len(t, x.Diagnostics, 1)
	assert.Contains(t, x.Diagnostics[0].Message, "already mapped")
}

func TestBuildFileWithoutViewBlock(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "finance/legacy.view.lkml", "# nothing but comments\n")

	x, err := Build(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "finance", x.Folders["legacy"])
	assert.NotContains(t, x.Coverage, "legacy")
}

func TestBuildMissingRoot(t *testing.T) {
	_, err := Build(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}
