package analyze

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/datagrunn/lookmap/internal/model"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func project(t *testing.T) (views, models string) {
	t.Helper()
	root := t.TempDir()
	views = filepath.Join(root, "views")
	models = filepath.Join(root, "models")
	require.NoError(t, os.MkdirAll(views, 0o755))
	require.NoError(t, os.MkdirAll(models, 0o755))
	return views, models
}

func TestParseModelOverrides(t *testing.T) {
	rows, diags := ParseModel("sales.model.lkml", `explore: orders {
  from: order_facts
  join: customers {
    from: customer_dim
  }
}
`)
	require.Empty(t, diags)

	want := []model.UsageRow{
		{ModelFile: "sales.model.lkml", Explore: "orders", Role: model.Primary, View: "order_facts"},
		{ModelFile: "sales.model.lkml", Explore: "orders", Role: model.Join, JoinName: "customers", View: "customer_dim"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseModelNoOverride(t *testing.T) {
	rows, diags := ParseModel("users.model.lkml", "explore: users { }\n")
	require.Empty(t, diags)

	want := []model.UsageRow{
		{ModelFile: "users.model.lkml", Explore: "users", Role: model.Primary, View: "users"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRunEndToEnd(t *testing.T) {
	views, models := project(t)
	write(t, views, "facts/order_facts.view.lkml", `view: order_facts {
  dimension: id {
    primary_key: yes
    description: "Order id"
  }
  dimension: status { }
}
`)
	write(t, views, "customer_dim.view.lkml", `view: customer_dim {
  dimension: id { primary_key: yes }
}
`)
	write(t, models, "sales.model.lkml", `explore: orders {
  from: order_facts
  join: customers {
    from: customer_dim
  }
}
`)

	res, err := Run(context.Background(), Options{ViewsDir: views, ModelsDir: models})
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	want := []model.UsageRow{
		{ModelFile: "sales.model.lkml", Explore: "orders", Role: model.Primary, View: "order_facts", Folder: "facts"},
		{ModelFile: "sales.model.lkml", Explore: "orders", Role: model.Join, JoinName: "customers", View: "customer_dim", Folder: "(root)"},
	}
	if diff := cmp.Diff(want, res.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, 1, res.Stats.Models)
	require.Equal(t, 2, res.Stats.Views)
	require.Equal(t, 1, res.Stats.Explores)
	require.Equal(t, 1, res.Stats.Joins)
	require.Equal(t, 50, res.Coverage["order_facts"].Percent())
	require.Empty(t, res.JoinedWithoutPK)
}

func TestRunUnknownViewKeepsRow(t *testing.T) {
	views, models := project(t)
	write(t, models, "m.model.lkml", `explore: orders {
  join: ghosts { }
}
`)

	res, err := Run(context.Background(), Options{ViewsDir: views, ModelsDir: models})
	require.NoError(t, err)

	require.Len(t, res.Rows, 2)
	for _, row := range res.Rows {
		require.Empty(t, row.Folder)
	}
	// The joined view has no file, so it cannot have a primary key.
	require.Equal(t, []string{"ghosts"}, res.JoinedWithoutPK)
}

func TestRunMalformedFileDoesNotAbortOthers(t *testing.T) {
	views, models := project(t)
	write(t, models, "bad.model.lkml", "explore: broken { no close\n")
	write(t, models, "good.model.lkml", "explore: users { }\n")

	res, err := Run(context.Background(), Options{ViewsDir: views, ModelsDir: models})
	require.NoError(t, err)

	require.Len(t, res.Rows, 1)
	require.Equal(t, "users", res.Rows[0].View)
	require.Len(t, res.Diagnostics, 1)
	require.Equal(t, "bad.model.lkml", res.Diagnostics[0].File)
}

func TestRunDeterministicOrder(t *testing.T) {
	views, models := project(t)
	write(t, models, "b.model.lkml", `explore: zz { }
explore: aa {
  join: m { }
  join: k { }
}
`)
	write(t, models, "a.model.lkml", "explore: solo { }\n")

	res, err := Run(context.Background(), Options{ViewsDir: views, ModelsDir: models})
	require.NoError(t, err)

	var got []string
	for _, r := range res.Rows {
		got = append(got, r.ModelFile+"/"+r.Explore+"/"+string(r.Role)+"/"+r.JoinName)
	}
	want := []string{
		"a.model.lkml/solo/primary/",
		"b.model.lkml/aa/primary/",
		"b.model.lkml/aa/join/k",
		"b.model.lkml/aa/join/m",
		"b.model.lkml/zz/primary/",
	}
	require.Equal(t, want, got)
}

func TestRunMissingModelsRootFatal(t *testing.T) {
	views, _ := project(t)

	_, err := Run(context.Background(), Options{
		ViewsDir:  views,
		ModelsDir: filepath.Join(t.TempDir(), "absent"),
	})
	require.Error(t, err)
}
