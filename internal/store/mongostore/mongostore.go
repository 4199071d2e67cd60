// Package mongostore backs the document store with MongoDB. Merge writes map
// to $set/$addToSet/$pull/$unset with upsert, Batch to an ordered bulk write
// inside a session transaction, Transaction to a session transaction over the
// declared keys.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AuvroIslam/Mio-sub001/internal/store"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(client *mongo.Client, database string) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("mongo client is nil")
	}
	if strings.TrimSpace(database) == "" {
		return nil, fmt.Errorf("mongo database name is required")
	}

	return &Store{
		client: client,
		db:     client.Database(database),
	}, nil
}

func (s *Store) Get(ctx context.Context, ref store.Ref) (store.Document, error) {
	var raw bson.M
	err := s.db.Collection(ref.Collection).FindOne(ctx, bson.M{"_id": ref.Key}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, unavailable("get "+ref.String(), err)
	}

	return normalizeDocument(raw), nil
}

func (s *Store) Set(ctx context.Context, ref store.Ref, doc store.Document) error {
	replacement := bson.M{"_id": ref.Key}
	for k, v := range doc {
		replacement[k] = v
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.db.Collection(ref.Collection).ReplaceOne(ctx, bson.M{"_id": ref.Key}, replacement, opts); err != nil {
		return unavailable("set "+ref.String(), err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, ref store.Ref, fields store.Document) error {
	update := translateMerge(fields)
	opts := options.Update().SetUpsert(true)
	if _, err := s.db.Collection(ref.Collection).UpdateOne(ctx, bson.M{"_id": ref.Key}, update, opts); err != nil {
		return unavailable("update "+ref.String(), err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, ref store.Ref) error {
	if _, err := s.db.Collection(ref.Collection).DeleteOne(ctx, bson.M{"_id": ref.Key}); err != nil {
		return unavailable("delete "+ref.String(), err)
	}
	return nil
}

func (s *Store) Batch(ctx context.Context, ops []store.Op) error {
	if err := store.ValidateBatch(ops); err != nil {
		return err
	}

	byCollection := make(map[string][]mongo.WriteModel)
	order := make([]string, 0, 4)
	for _, op := range ops {
		model, err := writeModel(op)
		if err != nil {
			return err
		}
		if _, seen := byCollection[op.Ref.Collection]; !seen {
			order = append(order, op.Ref.Collection)
		}
		byCollection[op.Ref.Collection] = append(byCollection[op.Ref.Collection], model)
	}

	return s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		for _, collection := range order {
			opts := options.BulkWrite().SetOrdered(true)
			if _, err := s.db.Collection(collection).BulkWrite(sc, byCollection[collection], opts); err != nil {
				return unavailable("bulk write "+collection, err)
			}
		}
		return nil
	})
}

func (s *Store) Transaction(ctx context.Context, _ []store.Ref, fn func(tx store.Tx) error) error {
	return s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		tx := &mongoTx{store: s, ctx: sc}
		if err := fn(tx); err != nil {
			return err
		}
		return tx.flush()
	})
}

func (s *Store) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return unavailable("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

type mongoTx struct {
	store  *Store
	ctx    mongo.SessionContext
	writes []store.Op
}

func (t *mongoTx) Get(ref store.Ref) (store.Document, error) {
	var raw bson.M
	err := t.store.db.Collection(ref.Collection).FindOne(t.ctx, bson.M{"_id": ref.Key}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, unavailable("tx get "+ref.String(), err)
	}
	return normalizeDocument(raw), nil
}

func (t *mongoTx) Set(ref store.Ref, doc store.Document) {
	t.writes = append(t.writes, store.SetOp(ref, doc))
}

func (t *mongoTx) Merge(ref store.Ref, fields store.Document) {
	t.writes = append(t.writes, store.MergeOp(ref, fields))
}

func (t *mongoTx) Delete(ref store.Ref) {
	t.writes = append(t.writes, store.DeleteOp(ref))
}

func (t *mongoTx) flush() error {
	for _, op := range t.writes {
		var err error
		switch op.Kind {
		case store.OpSet:
			err = t.store.Set(t.ctx, op.Ref, op.Fields)
		case store.OpMerge:
			err = t.store.Update(t.ctx, op.Ref, op.Fields)
		case store.OpDelete:
			err = t.store.Delete(t.ctx, op.Ref)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeModel(op store.Op) (mongo.WriteModel, error) {
	filter := bson.M{"_id": op.Ref.Key}
	switch op.Kind {
	case store.OpSet:
		replacement := bson.M{"_id": op.Ref.Key}
		for k, v := range op.Fields {
			replacement[k] = v
		}
		return mongo.NewReplaceOneModel().SetFilter(filter).SetReplacement(replacement).SetUpsert(true), nil
	case store.OpMerge:
		return mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(translateMerge(op.Fields)).SetUpsert(true), nil
	case store.OpDelete:
		return mongo.NewDeleteOneModel().SetFilter(filter), nil
	default:
		return nil, fmt.Errorf("unsupported batch op kind %q", op.Kind)
	}
}

func translateMerge(fields store.Document) bson.M {
	set := bson.M{}
	addToSet := bson.M{}
	pull := bson.M{}
	unset := bson.M{}

	for path, value := range fields {
		switch v := value.(type) {
		case store.Union:
			addToSet[path] = bson.M{"$each": v.Values}
		case store.Diff:
			pull[path] = bson.M{"$in": v.Values}
		default:
			if value == store.DeleteField {
				unset[path] = ""
				continue
			}
			set[path] = value
		}
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}
	if len(pull) > 0 {
		update["$pull"] = pull
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		// upsert still needs a well-formed update document
		update["$set"] = bson.M{}
	}
	return update
}

func normalizeDocument(raw bson.M) store.Document {
	doc := make(store.Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case bson.M:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normalizeValue(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(v))
		for _, e := range v {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case primitive.DateTime:
		return v.Time().UTC()
	case time.Time:
		return v.UTC()
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return v
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, store.ErrUnavailable, err)
}
