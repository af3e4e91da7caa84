package database

import (
	"context"
	"testing"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

type doc struct {
	ID   string `bson:"_id"`
	Rank string `bson:"rank"`
}

func TestGenerateCacheKeyIsDeterministic(t *testing.T) {
	dm := NewDataManager[doc]("whitelist", NewDatabase())

	a := dm.generateCacheKey(bson.M{"_id": "1", "rank": "admin"})
	b := dm.generateCacheKey(bson.M{"rank": "admin", "_id": "1"})
	if a != b {
		t.Fatalf("keys differ: %q vs %q", a, b)
	}
	if want := "whitelist:{_id=1,rank=admin}"; a != want {
		t.Errorf("key = %q, want %q", a, want)
	}
}

func TestCacheManagerEvictsLeastRecentlyUsed(t *testing.T) {
	cm := newCacheManager()

	cm.put("a", 1, 2)
	cm.put("b", 2, 2)
	if _, ok := cm.get("a"); !ok {
		t.Fatal("a should be cached")
	}
	cm.put("c", 3, 2)

	if _, ok := cm.get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := cm.get("a"); !ok || v.(int) != 1 {
		t.Error("a should survive as most recently used")
	}
	if cm.len() != 2 {
		t.Errorf("len = %d, want 2", cm.len())
	}

	cm.removePrefix("a")
	if _, ok := cm.get("a"); ok {
		t.Error("a should be removed")
	}
}

func TestOfflineReadsFail(t *testing.T) {
	dm := NewDataManager[doc]("whitelist", NewDatabase(), DataManagerOptions{Cache: true})

	_, err := dm.Get(context.Background(), bson.M{"_id": "1"})
	if !errors.Is(err, errors.KindUpstreamUnavailable) {
		t.Fatalf("Get offline: got %v", err)
	}
	if _, err := dm.Count(context.Background(), bson.M{}); !errors.Is(err, errors.KindUpstreamUnavailable) {
		t.Fatalf("Count offline: got %v", err)
	}
}

func TestOfflineWritesQueueOnlyWhenEnabled(t *testing.T) {
	db := NewDatabase()
	strict := NewDataManager[doc]("bans", db)
	lenient := NewDataManager[doc]("punishment_history", db, DataManagerOptions{QueueOffline: true})
	ctx := context.Background()

	if err := strict.Insert(ctx, &doc{ID: "1"}); !errors.Is(err, errors.KindUpstreamUnavailable) {
		t.Fatalf("strict insert: got %v", err)
	}
	if db.PendingWrites() != 0 {
		t.Fatalf("strict insert must not queue")
	}

	if err := lenient.Insert(ctx, &doc{ID: "1"}); err != nil {
		t.Fatalf("lenient insert: %v", err)
	}
	if _, err := lenient.Set(ctx, bson.M{"_id": "2"}, bson.M{"rank": "admin"}); err != nil {
		t.Fatalf("lenient set: %v", err)
	}
	if _, err := lenient.Delete(ctx, bson.M{"_id": "3"}); err != nil {
		t.Fatalf("lenient delete: %v", err)
	}
	if got := db.PendingWrites(); got != 3 {
		t.Errorf("PendingWrites = %d, want 3", got)
	}
}

func TestNextSequenceOffline(t *testing.T) {
	_, err := NewDatabase().NextSequence(context.Background(), "warnings")
	if !errors.Is(err, errors.KindUpstreamUnavailable) {
		t.Fatalf("got %v", err)
	}
}
