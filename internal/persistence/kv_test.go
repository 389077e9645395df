package persistence

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/intranet-portal/internal/config"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	out := map[string]KV{"memory": NewMemoryKV()}

	lite, err := OpenSQLite(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { lite.Close() })
	out["sqlite"] = lite

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	out["redis"] = NewRedisKV(rdb)

	if dsn := os.Getenv("PORTAL_TEST_POSTGRES_DSN"); dsn != "" {
		pg, err := NewPostgres(ctx, config.PostgresConfig{DSN: dsn}, logger)
		if err != nil {
			t.Fatalf("NewPostgres: %v", err)
		}
		t.Cleanup(pg.Close)
		if err := RunMigrations(ctx, pg, logger); err != nil {
			t.Fatalf("RunMigrations: %v", err)
		}
		kv := NewPostgresKV(pg.PoolHandle())
		_ = kv.Delete(ctx, "it:token", "it:user", "it:other")
		out["postgres"] = kv
	}
	return out
}

func TestKVContract(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := kv.Get(ctx, "it:token"); err != nil || ok {
				t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
			}

			if err := kv.SetMany(ctx, map[string]string{"it:token": "t1", "it:user": `{"nome":"Ana"}`}); err != nil {
				t.Fatalf("SetMany: %v", err)
			}
			val, ok, err := kv.Get(ctx, "it:user")
			if err != nil || !ok || val != `{"nome":"Ana"}` {
				t.Fatalf("Get user = %q,%v,%v", val, ok, err)
			}

			if err := kv.SetMany(ctx, map[string]string{"it:token": "t2"}); err != nil {
				t.Fatalf("SetMany overwrite: %v", err)
			}
			if val, _, _ := kv.Get(ctx, "it:token"); val != "t2" {
				t.Fatalf("overwrite not applied, got %q", val)
			}

			if err := kv.SetMany(ctx, map[string]string{"it:other": "keep"}); err != nil {
				t.Fatalf("SetMany other: %v", err)
			}
			if err := kv.Delete(ctx, "it:token", "it:user"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := kv.Delete(ctx, "it:token", "it:user"); err != nil {
				t.Fatalf("second Delete: %v", err)
			}
			for _, key := range []string{"it:token", "it:user"} {
				if _, ok, _ := kv.Get(ctx, key); ok {
					t.Fatalf("%s survived Delete", key)
				}
			}
			if val, ok, _ := kv.Get(ctx, "it:other"); !ok || val != "keep" {
				t.Fatal("Delete removed an unrelated key")
			}

			if err := kv.Ping(ctx); err != nil {
				t.Fatalf("Ping: %v", err)
			}
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/session.db"

	first, err := OpenSQLite(ctx, path, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := first.SetMany(ctx, map[string]string{"ns:token": "t2"}); err != nil {
		t.Fatalf("SetMany: %v", err)
	}
	first.Close()

	second, err := OpenSQLite(ctx, path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	val, ok, err := second.Get(ctx, "ns:token")
	if err != nil || !ok || val != "t2" {
		t.Fatalf("value lost across reopen: %q,%v,%v", val, ok, err)
	}
}

func TestOpenKVSelectsDriver(t *testing.T) {
	ctx := context.Background()
	cfg := config.Defaults()

	cfg.Store.Driver = config.StoreDriverMemory
	kv, cleanup, err := OpenKV(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenKV memory: %v", err)
	}
	defer cleanup()
	if _, ok := kv.(*MemoryKV); !ok {
		t.Fatalf("expected *MemoryKV, got %T", kv)
	}

	cfg.Store.Driver = config.StoreDriverSQLite
	cfg.Store.SQLitePath = t.TempDir() + "/open.db"
	kv, cleanupLite, err := OpenKV(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenKV sqlite: %v", err)
	}
	defer cleanupLite()
	if _, ok := kv.(*SQLiteKV); !ok {
		t.Fatalf("expected *SQLiteKV, got %T", kv)
	}

	cfg.Store.Driver = "etcd"
	if _, _, err := OpenKV(ctx, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
