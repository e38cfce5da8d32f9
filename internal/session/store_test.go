package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/bank_terminal/internal/account"
	"github.com/congo-pay/bank_terminal/internal/logging"
)

func setupRedis(t *testing.T, ttl time.Duration) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return NewRedisStorage(client, ttl), mr
}

func sampleHistory() []account.Transaction {
	return []account.Transaction{
		{Kind: account.KindWithdraw, Amount: 450, Timestamp: "1/2/2024, 10:00:01 AM", Balance: 50},
		{Kind: account.KindDeposit, Amount: 500, Timestamp: "1/2/2024, 10:00:00 AM", Balance: 500},
	}
}

func TestStoreLoadDefaultsWhenEmpty(t *testing.T) {
	store := NewStore(NewMemoryStorage(), "s1", logging.Discard())

	balance, history, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if balance != 0 || len(history) != 0 {
		t.Fatalf("expected fresh state, got balance=%v history=%d", balance, len(history))
	}
}

func TestStoreRoundTripAndClear(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := NewStore(storage, "s1", logging.Discard())

	if err := store.Save(ctx, 50, sampleHistory()); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, ok, _ := storage.GetItem(ctx, "s1", BalanceKey)
	if !ok || raw != "50" {
		t.Fatalf("expected stored balance \"50\", got %q (ok=%v)", raw, ok)
	}

	balance, history, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if balance != 50 || len(history) != 2 || history[0] != sampleHistory()[0] {
		t.Fatalf("unexpected load balance=%v history=%+v", balance, history)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	balance, history, _ = store.Load(ctx)
	if balance != 0 || len(history) != 0 {
		t.Fatalf("expected fresh state after clear, got %v / %d", balance, len(history))
	}
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	if err := NewStore(storage, "a", nil).Save(ctx, 10, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	balance, _, _ := NewStore(storage, "b", nil).Load(ctx)
	if balance != 0 {
		t.Fatalf("session b saw session a balance %v", balance)
	}
}

func TestStoreKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	_ = storage.SetItem(ctx, "s1", BalanceKey, "75.25")
	_ = storage.SetItem(ctx, "s1", TransactionsKey, "{not json")

	balance, history, err := NewStore(storage, "s1", logging.Discard()).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if balance != 75.25 || len(history) != 0 {
		t.Fatalf("expected balance kept and history dropped, got %v / %d", balance, len(history))
	}

	_ = storage.SetItem(ctx, "s1", BalanceKey, "garbage")
	balance, _, _ = NewStore(storage, "s1", logging.Discard()).Load(ctx)
	if balance != 0 {
		t.Fatalf("expected corrupt balance to reset to 0, got %v", balance)
	}
}

func TestRedisStorageWritesWithTTL(t *testing.T) {
	ctx := context.Background()
	storage, mr := setupRedis(t, time.Minute)
	store := NewStore(storage, "abc", logging.Discard())

	if err := store.Save(ctx, 500, sampleHistory()); err != nil {
		t.Fatalf("save: %v", err)
	}

	key := redisKey("abc", BalanceKey)
	if got, err := mr.Get(key); err != nil || got != "500" {
		t.Fatalf("expected %s=500, got %q (%v)", key, got, err)
	}
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %s", ttl)
	}

	balance, history, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if balance != 500 || len(history) != 2 {
		t.Fatalf("unexpected load %v / %d", balance, len(history))
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists(key) || mr.Exists(redisKey("abc", TransactionsKey)) {
		t.Fatal("expected keys removed")
	}
}

func TestRedisStorageExpiresIdleSession(t *testing.T) {
	ctx := context.Background()
	storage, mr := setupRedis(t, time.Minute)

	if err := storage.SetItem(ctx, "abc", BalanceKey, "10"); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, err := storage.GetItem(ctx, "abc", BalanceKey); err != nil || ok {
		t.Fatalf("expected expired key, ok=%v err=%v", ok, err)
	}
}

func TestStoreTouchKeepsActiveSession(t *testing.T) {
	ctx := context.Background()
	storage, mr := setupRedis(t, time.Minute)
	store := NewStore(storage, "abc", logging.Discard())

	if err := store.Save(ctx, 500, sampleHistory()); err != nil {
		t.Fatalf("save: %v", err)
	}
	for i := 0; i < 4; i++ {
		mr.FastForward(40 * time.Second)
		if err := store.Touch(ctx); err != nil {
			t.Fatalf("touch: %v", err)
		}
	}

	balance, history, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if balance != 500 || len(history) != 2 {
		t.Fatalf("expected touched keys to survive, got %v / %d", balance, len(history))
	}
	if ttl := mr.TTL(redisKey("abc", TransactionsKey)); ttl != time.Minute {
		t.Fatalf("expected refreshed 1m ttl, got %s", ttl)
	}
}

func TestMemoryStorageEvict(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	_ = storage.SetItem(ctx, "a", BalanceKey, "1")
	_ = storage.SetItem(ctx, "b", BalanceKey, "2")

	storage.(Evicter).Evict("a")

	if _, ok, _ := storage.GetItem(ctx, "a", BalanceKey); ok {
		t.Fatal("expected evicted session to be empty")
	}
	if v, ok, _ := storage.GetItem(ctx, "b", BalanceKey); !ok || v != "2" {
		t.Fatalf("other session must survive, got %q ok=%v", v, ok)
	}
}

func TestRedisStorageSurfacesErrors(t *testing.T) {
	storage, mr := setupRedis(t, time.Minute)
	mr.Close()

	if _, _, err := NewStore(storage, "abc", nil).Load(context.Background()); err == nil {
		t.Fatal("expected error from closed redis")
	}
}
