package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ontohin26/ontohin/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

func TestToFilter(t *testing.T) {
	oid := bson.NewObjectID()

	filter, ok := toFilter(store.Query{store.IDField: oid.Hex(), "formId": "f1"})
	if !ok {
		t.Fatal("expected a usable filter")
	}
	if filter["_id"] != oid || filter["formId"] != "f1" {
		t.Fatalf("unexpected filter %v", filter)
	}

	if _, ok := toFilter(store.Query{store.IDField: "42"}); ok {
		t.Fatal("a non-ObjectID id must never match")
	}
}

func TestFromRaw(t *testing.T) {
	oid := bson.NewObjectID()
	raw, err := bson.Marshal(bson.M{
		"_id":   oid,
		"title": "RSVP",
		"data":  bson.M{"f1": "Rahim"},
		"count": 3.0,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	doc, err := fromRaw(raw)
	if err != nil {
		t.Fatalf("fromRaw: %v", err)
	}
	if doc[store.IDField] != oid.Hex() {
		t.Fatalf("expected hex id, got %v", doc[store.IDField])
	}
	if data, _ := doc["data"].(map[string]any); data["f1"] != "Rahim" {
		t.Fatalf("nested document not decoded to a map: %v", doc["data"])
	}
	if doc["count"] != 3.0 {
		t.Fatalf("expected float64 count, got %T %v", doc["count"], doc["count"])
	}
}

// TestLiveRoundTrip runs against a real server when MONGO_URI is set.
func TestLiveRoundTrip(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Connect(ctx, uri, "ontohin_test", 100*time.Millisecond, zap.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close(context.Background())
	defer s.db.Drop(context.Background())

	id, err := s.Insert(ctx, "forms", store.Document{"title": "RSVP", "shareToken": "tok"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := s.FindOne(ctx, "forms", store.Query{"shareToken": "tok"})
	if err != nil || got[store.IDField] != id {
		t.Fatalf("find_one: %v, %v", got, err)
	}
	if err := s.Replace(ctx, "forms", id, store.Document{"title": "Picnic", "shareToken": "tok"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := s.Delete(ctx, "forms", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "forms", id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
