package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a missing document. Callers that treat absence as
	// empty (index entries, fresh cooldown states) check for it with
	// errors.Is.
	ErrNotFound = errors.New("document not found")

	// ErrUnavailable wraps transient backend failures; a matching pass
	// skips and logs the affected step instead of aborting.
	ErrUnavailable = errors.New("store unavailable")

	ErrBatchTooLarge = errors.New("batch exceeds max operation count")
)

// MaxBatchOps is the hard per-call ceiling a Batch enforces. Callers with
// larger write sets chunk well below it.
const MaxBatchOps = 500

// Document is a stored document. Values are plain Go types: string, bool,
// int64, float64, time.Time, []any and nested Document.
type Document = map[string]any

// Ref addresses one document.
type Ref struct {
	Collection string
	Key        string
}

func (r Ref) String() string {
	return r.Collection + "/" + r.Key
}

// Union is a merge-field marker: add the values to an array field treating
// it as a set. Duplicate adds are no-ops.
type Union struct {
	Values []any
}

// Diff is a merge-field marker: remove the values from an array field.
type Diff struct {
	Values []any
}

type deleteField struct{}

// DeleteField is a merge-field marker that removes the field entirely.
var DeleteField = deleteField{}

func AddToSet(values ...string) Union {
	u := Union{Values: make([]any, 0, len(values))}
	for _, v := range values {
		u.Values = append(u.Values, v)
	}
	return u
}

func RemoveFromSet(values ...string) Diff {
	d := Diff{Values: make([]any, 0, len(values))}
	for _, v := range values {
		d.Values = append(d.Values, v)
	}
	return d
}

type OpKind string

const (
	OpSet    OpKind = "set"
	OpMerge  OpKind = "merge"
	OpDelete OpKind = "delete"
)

// Op is one write inside a Batch. Merge fields may use dotted paths and the
// Union/Diff/DeleteField markers.
type Op struct {
	Kind   OpKind
	Ref    Ref
	Fields Document
}

func SetOp(ref Ref, doc Document) Op {
	return Op{Kind: OpSet, Ref: ref, Fields: doc}
}

func MergeOp(ref Ref, fields Document) Op {
	return Op{Kind: OpMerge, Ref: ref, Fields: fields}
}

func DeleteOp(ref Ref) Op {
	return Op{Kind: OpDelete, Ref: ref}
}

// Tx is the handle inside a Transaction: reads see committed state plus the
// transaction's own writes; writes apply atomically on commit.
type Tx interface {
	Get(ref Ref) (Document, error)
	Set(ref Ref, doc Document)
	Merge(ref Ref, fields Document)
	Delete(ref Ref)
}

// Store is the replicated document store the matching core runs against.
// Single-document merge writes are atomic; Batch is atomic only within one
// call and rejects more than MaxBatchOps operations; Transaction gives
// read-then-write atomicity over a small explicit key set.
type Store interface {
	Get(ctx context.Context, ref Ref) (Document, error)
	Set(ctx context.Context, ref Ref, doc Document) error
	// Update merges fields into the document, creating it if absent.
	Update(ctx context.Context, ref Ref, fields Document) error
	Batch(ctx context.Context, ops []Op) error
	Transaction(ctx context.Context, refs []Ref, fn func(tx Tx) error) error
}

func ValidateBatch(ops []Op) error {
	if len(ops) == 0 {
		return fmt.Errorf("empty batch")
	}
	if len(ops) > MaxBatchOps {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(ops), MaxBatchOps)
	}
	return nil
}
