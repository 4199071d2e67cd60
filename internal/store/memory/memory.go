// Package memory is an in-process Store with the same merge, batch and
// transaction semantics as the replicated backend. Service tests run against
// it; it is not meant for production data.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/AuvroIslam/Mio-sub001/internal/store"
)

type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]store.Document
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]store.Document),
	}
}

func (s *Store) Get(_ context.Context, ref store.Ref) (store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[ref.Collection][ref.Key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyDocument(doc), nil
}

func (s *Store) Set(_ context.Context, ref store.Ref, doc store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set(ref, doc)
	return nil
}

func (s *Store) Update(_ context.Context, ref store.Ref, fields store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.merge(ref, fields)
	return nil
}

func (s *Store) Delete(_ context.Context, ref store.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.delete(ref)
	return nil
}

func (s *Store) Batch(_ context.Context, ops []store.Op) error {
	if err := store.ValidateBatch(ops); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		s.apply(op)
	}
	return nil
}

func (s *Store) Transaction(_ context.Context, _ []store.Ref, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	for _, op := range tx.writes {
		s.apply(op)
	}
	return nil
}

// Len reports the number of documents in a collection. Test helper.
func (s *Store) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

type memTx struct {
	store  *Store
	writes []store.Op
}

func (t *memTx) Get(ref store.Ref) (store.Document, error) {
	doc, ok := t.store.collections[ref.Collection][ref.Key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyDocument(doc), nil
}

func (t *memTx) Set(ref store.Ref, doc store.Document) {
	t.writes = append(t.writes, store.SetOp(ref, doc))
}

func (t *memTx) Merge(ref store.Ref, fields store.Document) {
	t.writes = append(t.writes, store.MergeOp(ref, fields))
}

func (t *memTx) Delete(ref store.Ref) {
	t.writes = append(t.writes, store.DeleteOp(ref))
}

// callers hold s.mu

func (s *Store) apply(op store.Op) {
	switch op.Kind {
	case store.OpSet:
		s.set(op.Ref, op.Fields)
	case store.OpMerge:
		s.merge(op.Ref, op.Fields)
	case store.OpDelete:
		s.delete(op.Ref)
	}
}

func (s *Store) set(ref store.Ref, doc store.Document) {
	coll := s.collections[ref.Collection]
	if coll == nil {
		coll = make(map[string]store.Document)
		s.collections[ref.Collection] = coll
	}
	coll[ref.Key] = copyDocument(doc)
}

func (s *Store) merge(ref store.Ref, fields store.Document) {
	coll := s.collections[ref.Collection]
	if coll == nil {
		coll = make(map[string]store.Document)
		s.collections[ref.Collection] = coll
	}
	doc := coll[ref.Key]
	if doc == nil {
		doc = store.Document{}
	}
	for path, value := range fields {
		applyField(doc, strings.Split(path, "."), value)
	}
	coll[ref.Key] = doc
}

func (s *Store) delete(ref store.Ref) {
	delete(s.collections[ref.Collection], ref.Key)
}

func applyField(doc store.Document, path []string, value any) {
	if len(path) > 1 {
		child, ok := doc[path[0]].(map[string]any)
		if !ok {
			child = store.Document{}
			doc[path[0]] = child
		}
		applyField(child, path[1:], value)
		return
	}

	key := path[0]
	switch v := value.(type) {
	case store.Union:
		doc[key] = unionValues(doc[key], v.Values)
	case store.Diff:
		doc[key] = diffValues(doc[key], v.Values)
	default:
		if value == store.DeleteField {
			delete(doc, key)
			return
		}
		doc[key] = copyValue(value)
	}
}

func unionValues(existing any, add []any) []any {
	current := toSlice(existing)
	for _, v := range add {
		found := false
		for _, cur := range current {
			if cur == v {
				found = true
				break
			}
		}
		if !found {
			current = append(current, v)
		}
	}
	return current
}

func diffValues(existing any, remove []any) []any {
	current := toSlice(existing)
	out := make([]any, 0, len(current))
	for _, cur := range current {
		keep := true
		for _, v := range remove {
			if cur == v {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, cur)
		}
	}
	return out
}

func toSlice(value any) []any {
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		copy(out, v)
		return out
	case []string:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, item)
		}
		return out
	default:
		return nil
	}
}

func copyDocument(doc store.Document) store.Document {
	out := make(store.Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return copyDocument(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	default:
		return v
	}
}
