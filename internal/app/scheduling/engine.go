// Package scheduling is the group-lesson consistency and scheduling
// engine: it keeps the per-student lesson records that make up one
// group occurrence consistent with each other and with the group's
// current membership.
//
// A group occurrence is not a stored entity. It is the equivalence
// class of lessons sharing (group, start, end), and the group link on a
// lesson may be missing on legacy records. Every component here goes
// through the same Resolver to decide which lessons belong to a group,
// so the propagator, the membership synchronizer and the backfill job
// can never drift apart in their notion of "same occurrence".
//
// There are no multi-document transactions. Every multi-step mutation
// is written to be safely re-runnable: existence checks before create,
// duplicate-key inserts treated as "already consistent", and the
// backfill job as the reconciliation backstop.
package scheduling

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Engine runs the scheduling operations against the shared lesson,
// group and student collections. It holds no state between calls;
// every operation re-reads current documents.
type Engine struct {
	lessons  *mongo.Collection
	groups   *mongo.Collection
	students *mongo.Collection
	log      *zap.Logger
}

func NewEngine(db *mongo.Database, log *zap.Logger) *Engine {
	return &Engine{
		lessons:  db.Collection("lessons"),
		groups:   db.Collection("groups"),
		students: db.Collection("students"),
		log:      log,
	}
}

// Occurrence identifies one logical group session: the group (or none,
// for an unlinked legacy lesson) and the exact time window.
type Occurrence struct {
	GroupID *primitive.ObjectID
	Start   time.Time
	End     time.Time
}

// occurrenceKey buckets lessons by their exact time window within one
// group's lesson set.
type occurrenceKey struct {
	start int64
	end   int64
}

func keyOf(start, end time.Time) occurrenceKey {
	return occurrenceKey{start: start.UnixMilli(), end: end.UnixMilli()}
}
