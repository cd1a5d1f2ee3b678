package domain

import (
	"context"
	"time"
)

// Collection names. They are part of the export contract.
const (
	CollectionUsers         = "users"
	CollectionEvents        = "events"
	CollectionAttempts      = "attempts"
	CollectionClinical      = "clinicalEvents"
	CollectionUserStats     = "userStats"
	CollectionCaseStats     = "caseStats"
	CollectionPointsStats   = "pointsStats"
	CollectionContentStatus = "userContentStatus"
	CollectionCases         = "cases"
	CollectionPapers        = "papers"
)

// MaxBatchMutations is the store's atomic multi-document write limit.
const MaxBatchMutations = 500

// MutationKind identifies how a staged write is applied.
type MutationKind int

const (
	// MutationCreate inserts Doc under Key and fails the commit if the key exists.
	MutationCreate MutationKind = iota
	// MutationIncrement adds Delta to the numeric Field, creating the document if missing.
	MutationIncrement
	// MutationArrayUnion adds Values to the set Field, creating the document if missing.
	MutationArrayUnion
	// MutationDelete removes the document. Missing documents are not an error.
	MutationDelete
)

func (k MutationKind) String() string {
	switch k {
	case MutationCreate:
		return "create"
	case MutationIncrement:
		return "increment"
	case MutationArrayUnion:
		return "array_union"
	case MutationDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Mutation is one staged (collection, key, mutation) operation.
type Mutation struct {
	Collection string
	Key        string
	Kind       MutationKind
	Field      string
	Delta      int64
	Values     []string
	Doc        ServerStamped
}

// ServerStamped documents receive their server timestamps when the batch commits.
type ServerStamped interface {
	StampServerTime(t time.Time)
}

// Batch collects mutations that must be applied all-or-nothing.
// A Batch is not safe for concurrent use; each operation builds its own.
type Batch struct {
	mutations []Mutation
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Create(collection, key string, doc ServerStamped) *Batch {
	b.mutations = append(b.mutations, Mutation{Collection: collection, Key: key, Kind: MutationCreate, Doc: doc})
	return b
}

func (b *Batch) Increment(collection, key, field string, delta int64) *Batch {
	b.mutations = append(b.mutations, Mutation{Collection: collection, Key: key, Kind: MutationIncrement, Field: field, Delta: delta})
	return b
}

func (b *Batch) ArrayUnion(collection, key, field string, values ...string) *Batch {
	b.mutations = append(b.mutations, Mutation{Collection: collection, Key: key, Kind: MutationArrayUnion, Field: field, Values: values})
	return b
}

func (b *Batch) Delete(collection, key string) *Batch {
	b.mutations = append(b.mutations, Mutation{Collection: collection, Key: key, Kind: MutationDelete})
	return b
}

// AwardPoints stages an award to the total and exactly one breakdown bucket.
func (b *Batch) AwardPoints(uid string, bucket PointsBucket, points int64) *Batch {
	b.Increment(CollectionPointsStats, uid, FieldTotalPoints, points)
	return b.Increment(CollectionPointsStats, uid, bucket.Field(), points)
}

func (b *Batch) Mutations() []Mutation {
	out := make([]Mutation, len(b.mutations))
	copy(out, b.mutations)
	return out
}

func (b *Batch) Len() int {
	return len(b.mutations)
}

// Validate checks the batch against the store's atomic write limit.
func (b *Batch) Validate() error {
	if len(b.mutations) > MaxBatchMutations {
		return ErrBatchTooLarge
	}
	return nil
}

// BatchCommitter applies a batch atomically, resolving server timestamps at commit time.
type BatchCommitter interface {
	Commit(ctx context.Context, batch *Batch) error
}

// Clock supplies the server-assigned commit timestamp.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
