package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"polaris-hq/polaris/pkg/policy"
)

// storeFactories lets every test run against both backends.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "bundles.db")})
			if err != nil {
				t.Fatalf("NewSQLiteStore() error = %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func testBundle(version string) *policy.PolicyBundle {
	return &policy.PolicyBundle{
		Version: version,
		Rules: []*policy.PolicyRule{
			{ID: "r1", Agent: "*", Action: "*", Effect: policy.EffectAllow, Priority: 10},
		},
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			bundle := testBundle("v1")
			if err := s.Create(ctx, bundle); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if bundle.ID == "" {
				t.Fatal("Create() did not assign an id")
			}

			got, err := s.Get(ctx, bundle.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Version != "v1" || len(got.Rules) != 1 || got.Rules[0].ID != "r1" {
				t.Errorf("Get() = %+v, want version v1 with rule r1", got)
			}

			byVersion, err := s.GetByVersion(ctx, "v1")
			if err != nil {
				t.Fatalf("GetByVersion() error = %v", err)
			}
			if byVersion.ID != bundle.ID {
				t.Errorf("GetByVersion() id = %q, want %q", byVersion.ID, bundle.ID)
			}

			if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_DuplicateVersion(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			if err := s.Create(ctx, testBundle("v1")); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := s.Create(ctx, testBundle("v1")); !errors.Is(err, ErrDuplicateVersion) {
				t.Errorf("Create(duplicate) error = %v, want ErrDuplicateVersion", err)
			}
		})
	}
}

func TestStore_UpdateAllAtomic(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			a := testBundle("v1")
			b := testBundle("v2")
			if err := s.Create(ctx, a); err != nil {
				t.Fatalf("Create(a) error = %v", err)
			}
			if err := s.Create(ctx, b); err != nil {
				t.Fatalf("Create(b) error = %v", err)
			}

			a.Active = false
			a.CanaryPct = 0
			b.Active = true
			b.CanaryPct = 10
			b.ActivatedAt = time.Now().UTC()
			if err := s.UpdateAll(ctx, a, b); err != nil {
				t.Fatalf("UpdateAll() error = %v", err)
			}

			active, err := s.ActiveBundles(ctx)
			if err != nil {
				t.Fatalf("ActiveBundles() error = %v", err)
			}
			if len(active) != 1 || active[0].Version != "v2" {
				t.Errorf("ActiveBundles() = %d bundles, want exactly v2 active", len(active))
			}

			// An update batch containing an unknown bundle writes nothing.
			ghost := testBundle("ghost")
			ghost.ID = "does-not-exist"
			a.Active = true
			if err := s.UpdateAll(ctx, a, ghost); !errors.Is(err, ErrNotFound) {
				t.Fatalf("UpdateAll(with ghost) error = %v, want ErrNotFound", err)
			}
			got, err := s.Get(ctx, a.ID)
			if err != nil {
				t.Fatalf("Get(a) error = %v", err)
			}
			if got.Active {
				t.Error("failed UpdateAll leaked a partial write")
			}
		})
	}
}

func TestStore_LastActivatedBefore(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

			older := testBundle("v1")
			mid := testBundle("v2")
			current := testBundle("v3")
			never := testBundle("v4")

			for _, b := range []*policy.PolicyBundle{older, mid, current, never} {
				if err := s.Create(ctx, b); err != nil {
					t.Fatalf("Create(%s) error = %v", b.Version, err)
				}
			}

			older.ActivatedAt = base
			mid.ActivatedAt = base.Add(1 * time.Hour)
			current.ActivatedAt = base.Add(2 * time.Hour)
			if err := s.UpdateAll(ctx, older, mid, current); err != nil {
				t.Fatalf("UpdateAll() error = %v", err)
			}

			prev, err := s.LastActivatedBefore(ctx, current.ActivatedAt, current.ID)
			if err != nil {
				t.Fatalf("LastActivatedBefore() error = %v", err)
			}
			if prev.Version != "v2" {
				t.Errorf("LastActivatedBefore() = %q, want v2", prev.Version)
			}

			// The earliest activated bundle has no predecessor.
			if _, err := s.LastActivatedBefore(ctx, older.ActivatedAt, older.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("LastActivatedBefore(oldest) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_ListOrdersByCreation(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			for _, v := range []string{"v1", "v2", "v3"} {
				b := testBundle(v)
				if err := s.Create(ctx, b); err != nil {
					t.Fatalf("Create(%s) error = %v", v, err)
				}
			}

			list, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(list) != 3 {
				t.Fatalf("List() returned %d bundles, want 3", len(list))
			}
		})
	}
}
