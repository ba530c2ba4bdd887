package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"community/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testDB = "community_test"

var fixedNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(mt *mtest.T) *Store {
	s := New(mt.Client, testDB)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestStore_Insert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stamps creation metadata", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		post := models.NewPost()
		post.Author, post.Title, post.Content = "alice", "Welcome", "hello"

		id, err := store.Insert(context.Background(), models.PostCollection, post)
		if err != nil {
			mt.Fatalf("Insert: %v", err)
		}
		if id.IsZero() {
			mt.Fatal("Insert returned a zero id")
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "insert" {
			mt.Fatalf("expected insert command, got %+v", evt)
		}
		docs := evt.Command.Lookup("documents").Array()
		values, _ := docs.Values()
		if len(values) != 1 {
			mt.Fatalf("expected one document, got %d", len(values))
		}
		doc := values[0].Document()
		if got := doc.Lookup("title").StringValue(); got != "Welcome" {
			mt.Errorf("title = %q", got)
		}
		if got := doc.Lookup("_id").ObjectID(); got != id {
			mt.Errorf("stored _id %s != returned %s", got.Hex(), id.Hex())
		}
		if got := doc.Lookup("created_at").Time().UTC(); !got.Equal(fixedNow) {
			mt.Errorf("created_at = %v", got)
		}
		if _, err := doc.LookupErr("updated_at"); err != nil {
			mt.Error("updated_at missing")
		}
	})

	mt.Run("store failure", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Name:    "ShutdownInProgress",
			Message: "shutting down",
		}))

		_, err := store.Insert(context.Background(), models.UserCollection, models.NewUser())
		if !errors.Is(err, ErrStoreUnavailable) {
			mt.Fatalf("expected ErrStoreUnavailable, got %v", err)
		}
	})
}

func TestStore_Query(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns documents and sends filter and limit", func(mt *mtest.T) {
		store := newTestStore(mt)
		first := primitive.NewObjectID()
		second := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDB+".post", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: first}, {Key: "tags", Value: bson.A{"bbq"}}},
			bson.D{{Key: "_id", Value: second}, {Key: "tags", Value: bson.A{"bbq", "food"}}},
		))

		docs, err := store.Query(context.Background(), models.PostCollection, bson.M{"tags": "bbq"}, 25)
		if err != nil {
			mt.Fatalf("Query: %v", err)
		}
		if len(docs) != 2 {
			mt.Fatalf("expected 2 documents, got %d", len(docs))
		}
		if docs[0][0].Key != "_id" || docs[0][0].Value != first {
			mt.Errorf("first document = %v", docs[0])
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			mt.Fatalf("expected find command, got %+v", evt)
		}
		if got := evt.Command.Lookup("filter", "tags").StringValue(); got != "bbq" {
			mt.Errorf("filter.tags = %q", got)
		}
		if got := evt.Command.Lookup("limit").Int64(); got != 25 {
			mt.Errorf("limit = %d", got)
		}
	})

	mt.Run("empty result is an empty slice", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDB+".user", mtest.FirstBatch))

		docs, err := store.Query(context.Background(), models.UserCollection, nil, 50)
		if err != nil {
			mt.Fatalf("Query: %v", err)
		}
		if docs == nil || len(docs) != 0 {
			mt.Errorf("docs = %#v", docs)
		}
	})

	mt.Run("store failure", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "no"}))

		_, err := store.Query(context.Background(), models.EventCollection, bson.M{}, 10)
		if !errors.Is(err, ErrStoreUnavailable) {
			mt.Fatalf("expected ErrStoreUnavailable, got %v", err)
		}
	})
}

func TestStore_SetFields(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("modified", func(mt *mtest.T) {
		store := newTestStore(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		n, err := store.SetFields(context.Background(), models.NotificationCollection, id, bson.M{"is_read": true})
		if err != nil {
			mt.Fatalf("SetFields: %v", err)
		}
		if n != 1 {
			mt.Errorf("matched = %d", n)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "update" {
			mt.Fatalf("expected update command, got %+v", evt)
		}
		updates, _ := evt.Command.Lookup("updates").Array().Values()
		stmt := updates[0].Document()
		if got := stmt.Lookup("q", "_id").ObjectID(); got != id {
			mt.Errorf("q._id = %s", got.Hex())
		}
		if !stmt.Lookup("u", "$set", "is_read").Boolean() {
			mt.Error("is_read not set")
		}
		if got := stmt.Lookup("u", "$set", "updated_at").Time().UTC(); !got.Equal(fixedNow) {
			mt.Errorf("updated_at = %v", got)
		}
	})

	mt.Run("nothing matched", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		n, err := store.SetFields(context.Background(), models.NotificationCollection, primitive.NewObjectID(), bson.M{"is_read": true})
		if err != nil {
			mt.Fatalf("SetFields: %v", err)
		}
		if n != 0 {
			mt.Errorf("matched = %d", n)
		}
	})

	mt.Run("matched but unchanged", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		n, err := store.SetFields(context.Background(), models.NotificationCollection, primitive.NewObjectID(), bson.M{"is_read": true})
		if err != nil {
			mt.Fatalf("SetFields: %v", err)
		}
		if n != 1 {
			mt.Errorf("matched = %d, expected the unchanged document to count", n)
		}
	})
}

func TestStore_Diagnose(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("lists collections", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDB+".$cmd.listCollections", mtest.FirstBatch,
			bson.D{{Key: "name", Value: "post"}, {Key: "type", Value: "collection"}},
			bson.D{{Key: "name", Value: "event"}, {Key: "type", Value: "collection"}},
		))

		d := store.Diagnose(context.Background(), true)
		if d.Database != "✅ Connected & Working" {
			mt.Errorf("database = %q", d.Database)
		}
		if d.DatabaseName == nil || *d.DatabaseName != testDB {
			mt.Errorf("database_name = %v", d.DatabaseName)
		}
		if d.DatabaseURL == nil || *d.DatabaseURL != "✅ Set" {
			mt.Errorf("database_url = %v", d.DatabaseURL)
		}
		if len(d.Collections) != 2 || d.Collections[0] != "post" {
			mt.Errorf("collections = %v", d.Collections)
		}
	})

	mt.Run("downgrades errors", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not allowed"}))

		d := store.Diagnose(context.Background(), false)
		if d.ConnectionStatus != "Connected" {
			mt.Errorf("connection_status = %q", d.ConnectionStatus)
		}
		if !strings.HasPrefix(d.Database, "⚠️  Connected but Error") {
			mt.Errorf("database = %q", d.Database)
		}
		if *d.DatabaseURL != "❌ Not Set" {
			mt.Errorf("database_url = %q", *d.DatabaseURL)
		}
	})
}

func TestDiagnose_NilStore(t *testing.T) {
	var s *Store
	d := s.Diagnose(context.Background(), false)
	if d.Database != "⚠️  Available but not initialized" {
		t.Errorf("database = %q", d.Database)
	}
	if d.Backend != "✅ Running" || d.Collections == nil {
		t.Errorf("unexpected snapshot %+v", d)
	}
}

func TestParseID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := ParseID(id.Hex())
	if err != nil || got != id {
		t.Fatalf("ParseID(%q) = %v, %v", id.Hex(), got, err)
	}

	for _, bad := range []string{"", "xyz", "123", id.Hex() + "00"} {
		if _, err := ParseID(bad); !errors.Is(err, ErrInvalidID) {
			t.Errorf("ParseID(%q) err = %v, expected ErrInvalidID", bad, err)
		}
	}
}
