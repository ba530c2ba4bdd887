package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"community/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type queryCall struct {
	collection string
	filter     bson.M
	limit      int64
}

// fakeStore keeps documents in memory and records the queries it gets.
// Query evaluates the subset of filter operators the handlers build:
// field equality (array fields match on membership, nil matches a missing
// field), $gte on timestamps and $or.
type fakeStore struct {
	mu        sync.Mutex
	docs      map[string][]bson.D
	queries   []queryCall
	insertErr map[string]error
	queryErr  error
	updateErr error
	matched   map[primitive.ObjectID]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:      map[string][]bson.D{},
		insertErr: map[string]error{},
		matched:   map[primitive.ObjectID]int64{},
	}
}

func (s *fakeStore) Insert(_ context.Context, collection string, record any) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.insertErr[collection]; err != nil {
		return primitive.NilObjectID, err
	}

	raw, err := bson.Marshal(record)
	if err != nil {
		return primitive.NilObjectID, err
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return primitive.NilObjectID, err
	}

	id := primitive.NewObjectID()
	doc = append(bson.D{{Key: "_id", Value: id}}, doc...)
	s.docs[collection] = append(s.docs[collection], doc)
	return id, nil
}

func (s *fakeStore) Query(_ context.Context, collection string, filter bson.M, limit int64) ([]bson.D, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, queryCall{collection: collection, filter: filter, limit: limit})
	if s.queryErr != nil {
		return nil, s.queryErr
	}

	docs := []bson.D{}
	for _, doc := range s.docs[collection] {
		if int64(len(docs)) == limit {
			break
		}
		if matches(doc, filter) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func matches(doc bson.D, filter bson.M) bool {
	for key, cond := range filter {
		if key == "$or" {
			alts, _ := cond.(bson.A)
			hit := false
			for _, alt := range alts {
				if m, ok := alt.(bson.M); ok && matches(doc, m) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
			continue
		}

		value := lookup(doc, key)
		if ops, ok := cond.(bson.M); ok {
			gte, ok := ops["$gte"].(time.Time)
			if !ok {
				return false
			}
			at, ok := asTime(value)
			if !ok || at.Before(gte) {
				return false
			}
			continue
		}
		if !equalOrContains(value, cond) {
			return false
		}
	}
	return true
}

func equalOrContains(value, want any) bool {
	if arr, ok := value.(bson.A); ok {
		for _, v := range arr {
			if v == want {
				return true
			}
		}
		return false
	}
	return value == want
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time(), true
	case time.Time:
		return t, true
	}
	return time.Time{}, false
}

// SetFields reports one match for any stored id, changed or not, unless an
// explicit count was configured for it.
func (s *fakeStore) SetFields(_ context.Context, collection string, id primitive.ObjectID, fields bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		return 0, s.updateErr
	}
	if n, ok := s.matched[id]; ok {
		return n, nil
	}
	for i, doc := range s.docs[collection] {
		if doc[0].Value != id {
			continue
		}
		for k, v := range fields {
			doc = setField(doc, k, v)
		}
		s.docs[collection][i] = doc
		return 1, nil
	}
	return 0, nil
}

func (s *fakeStore) Diagnose(context.Context, bool) database.Diagnostics {
	return database.Diagnostics{Backend: "✅ Running", Database: "✅ Connected & Working", ConnectionStatus: "Connected", Collections: []string{"post"}}
}

func (s *fakeStore) collection(name string) []bson.D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bson.D(nil), s.docs[name]...)
}

func (s *fakeStore) lastQuery() queryCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queries) == 0 {
		return queryCall{}
	}
	return s.queries[len(s.queries)-1]
}

func setField(doc bson.D, key string, value any) bson.D {
	for i := range doc {
		if doc[i].Key == key {
			doc[i].Value = value
			return doc
		}
	}
	return append(doc, bson.E{Key: key, Value: value})
}

func lookup(doc bson.D, key string) any {
	for _, e := range doc {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

func storeDown(op string) error {
	return fmt.Errorf("%w: %s: %v", database.ErrStoreUnavailable, op, errors.New("server selection timeout"))
}

type published struct {
	user    *string
	payload any
}

type fakeFeed struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakeFeed) PublishNotification(user *string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{user: user, payload: payload})
}
