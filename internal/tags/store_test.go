package tags

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "tags.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestCreateAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "bot:latest", "import/abc:latest")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Error("created tag has no ID")
	}
	if created.CreatedAt.IsZero() {
		t.Error("created tag has no timestamp")
	}

	got, err := store.Get(ctx, "bot:latest")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID || got.Target != "import/abc:latest" {
		t.Errorf("got = %+v, want %+v", got, created)
	}
}

func TestCreateDuplicate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "bot:latest", "a"); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := store.Create(ctx, "bot:latest", "b")
	if !errors.Is(err, ErrExists) {
		t.Fatalf("err = %v, want ErrExists", err)
	}
}

func TestCreateInvalidName(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Create(context.Background(), "no-tag-component", "a")
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("err = %v, want ErrInvalidName", err)
	}
}

func TestCreateResolvesTagTarget(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "bot:v1", "import/abc:latest"); err != nil {
		t.Fatalf("create v1: %v", err)
	}

	// Pointing at an existing tag resolves to its underlying target.
	alias, err := store.Create(ctx, "bot:latest", "bot:v1")
	if err != nil {
		t.Fatalf("create alias: %v", err)
	}
	if alias.Target != "import/abc:latest" {
		t.Errorf("alias target = %q, want import/abc:latest", alias.Target)
	}

	// A tag-shaped target with no matching record is stored as given.
	direct, err := store.Create(ctx, "bot:v2", "python:3.11-slim")
	if err != nil {
		t.Fatalf("create direct: %v", err)
	}
	if direct.Target != "python:3.11-slim" {
		t.Errorf("direct target = %q", direct.Target)
	}
}

func TestUpdate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "bot:latest", "old-target")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := store.Update(ctx, "bot:latest", "new-target")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Error("update must preserve the tag ID")
	}
	if updated.Target != "new-target" {
		t.Errorf("target = %q, want new-target", updated.Target)
	}

	_, err = store.Update(ctx, "missing:tag", "x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "bot:latest", "a"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Delete(ctx, "bot:latest"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := store.Get(ctx, "bot:latest")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete = %v, want ErrNotFound", err)
	}

	if err := store.Delete(ctx, "bot:latest"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}

func TestListPagination(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	names := []string{"a:1", "b:1", "c:1", "d:1", "e:1"}
	for _, name := range names {
		if _, err := store.Create(ctx, name, "target-"+name); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		// created_at granularity must separate the rows for ordering.
		time.Sleep(2 * time.Millisecond)
	}

	page, err := store.List(ctx, 0, 2, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 5 {
		t.Errorf("total = %d, want 5", page.Total)
	}
	if len(page.Data) != 2 {
		t.Fatalf("len(data) = %d, want 2", len(page.Data))
	}

	// Newest first.
	if page.Data[0].Name != "e:1" || page.Data[1].Name != "d:1" {
		t.Errorf("page 1 = %s, %s", page.Data[0].Name, page.Data[1].Name)
	}

	page, err = store.List(ctx, 4, 2, "")
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].Name != "a:1" {
		t.Errorf("last page = %+v", page.Data)
	}
}

func TestListTargetFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "bot:v1", "shared-target"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(ctx, "bot:v2", "shared-target"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(ctx, "other:v1", "other-target"); err != nil {
		t.Fatal(err)
	}

	page, err := store.List(ctx, 0, 10, "shared-target")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 || len(page.Data) != 2 {
		t.Errorf("filtered page = %+v", page)
	}
	for _, rec := range page.Data {
		if rec.Target != "shared-target" {
			t.Errorf("unexpected target %q", rec.Target)
		}
	}
}

func TestCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	n, err := store.Count(ctx)
	if err != nil || n != 0 {
		t.Fatalf("count = %d, %v; want 0, nil", n, err)
	}

	if _, err := store.Create(ctx, "bot:latest", "a"); err != nil {
		t.Fatal(err)
	}

	n, err = store.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("count = %d, %v; want 1, nil", n, err)
	}
}
