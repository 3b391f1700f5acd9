// Package ordering computes sort-order writes for tasks and columns.
//
// Every function here is pure: it takes the caller's view of an ordering and
// returns a plan describing the writes. Repositories execute plans inside a
// transaction; column membership claims in the input are trusted, so callers
// must check board ownership before planning.
package ordering

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNegativeIndex  = errors.New("sort index must not be negative")
	ErrDuplicateTask  = errors.New("task listed more than once in the new order")
	ErrDuplicateIndex = errors.New("sort index assigned more than once")
	ErrTaskNotInOrder = errors.New("moved task is missing from the new order")
	ErrShiftMismatch  = errors.New("shifted row count does not match rows read")
)

// Placement assigns a new sort index to one row.
type Placement struct {
	ID       uuid.UUID `json:"id"`
	NewIndex int       `json:"newIndex"`
}

// Shift moves every row of a column whose sort order is at least From by
// Delta.
type Shift struct {
	ColumnID uuid.UUID
	From     int
	Delta    int
}

// Verify fails when the number of rows the shift touched differs from the
// number read beforehand, which means another transaction changed the column
// in between.
func (s Shift) Verify(read, affected int64) error {
	if read != affected {
		return fmt.Errorf("%w: read %d, shifted %d", ErrShiftMismatch, read, affected)
	}
	return nil
}

// Insertion places a new row at Index after Shift makes room for it.
type Insertion struct {
	ColumnID uuid.UUID
	Index    int
	Shift    Shift
}

// PlanInsertion plans a new row in a column currently holding size rows.
// A nil target inserts at the head. Targets past the tail are clamped to the
// tail so the column stays dense.
func PlanInsertion(columnID uuid.UUID, target *int, size int) (Insertion, error) {
	index := 0
	if target != nil {
		index = *target
	}
	if index < 0 {
		return Insertion{}, ErrNegativeIndex
	}
	if index > size {
		index = size
	}
	return Insertion{
		ColumnID: columnID,
		Index:    index,
		Shift:    Shift{ColumnID: columnID, From: index, Delta: 1},
	}, nil
}

// Compaction closes the gap left by removing the row at index.
func Compaction(columnID uuid.UUID, removed int) Shift {
	return Shift{ColumnID: columnID, From: removed + 1, Delta: -1}
}

// Reindex assigns new indexes to a set of rows in one statement. ScopeID is
// the column when ordering tasks and the board when ordering columns.
type Reindex struct {
	ScopeID     uuid.UUID
	Assignments []Placement
}

// PlanReindex validates a new order. An empty order yields an empty plan.
func PlanReindex(scopeID uuid.UUID, order []Placement) (Reindex, error) {
	seenIDs := make(map[uuid.UUID]struct{}, len(order))
	seenIdx := make(map[int]struct{}, len(order))
	for _, p := range order {
		if p.NewIndex < 0 {
			return Reindex{}, ErrNegativeIndex
		}
		if _, ok := seenIDs[p.ID]; ok {
			return Reindex{}, fmt.Errorf("%w: %s", ErrDuplicateTask, p.ID)
		}
		if _, ok := seenIdx[p.NewIndex]; ok {
			return Reindex{}, fmt.Errorf("%w: %d", ErrDuplicateIndex, p.NewIndex)
		}
		seenIDs[p.ID] = struct{}{}
		seenIdx[p.NewIndex] = struct{}{}
	}
	assignments := make([]Placement, len(order))
	copy(assignments, order)
	return Reindex{ScopeID: scopeID, Assignments: assignments}, nil
}

func (r Reindex) Empty() bool {
	return len(r.Assignments) == 0
}

func (r Reindex) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Assignments))
	for i, p := range r.Assignments {
		ids[i] = p.ID
	}
	return ids
}

// CaseSQL renders the batched assignment as
// "CASE WHEN <idColumn> = ? THEN CAST(? AS INTEGER) ... END" with its bind
// arguments. The cast keeps Postgres from typing the branches as text.
func (r Reindex) CaseSQL(idColumn string) (string, []interface{}) {
	var b strings.Builder
	args := make([]interface{}, 0, len(r.Assignments)*2)
	b.WriteString("CASE")
	for _, p := range r.Assignments {
		b.WriteString(" WHEN ")
		b.WriteString(idColumn)
		b.WriteString(" = ? THEN CAST(? AS INTEGER)")
		args = append(args, p.ID, p.NewIndex)
	}
	b.WriteString(" END")
	return b.String(), args
}

// Position is where a row currently sits.
type Position struct {
	ColumnID uuid.UUID
	Index    int
}

// Move describes relocating one task into a column.
type Move struct {
	TaskID   uuid.UUID
	ColumnID uuid.UUID
	Index    int
	// Compact is set when the task leaves another column.
	Compact *Shift
	// Reindex is empty for the trivial case.
	Reindex Reindex
}

// PlanMove plans moving taskID from its current position into toColumn,
// given the destination's full new order. An order with at most one entry is
// the trivial case: the task lands at index 0 with no reindex.
func PlanMove(taskID uuid.UUID, from Position, toColumn uuid.UUID, order []Placement) (Move, error) {
	move := Move{TaskID: taskID, ColumnID: toColumn}
	if from.ColumnID != toColumn {
		shift := Compaction(from.ColumnID, from.Index)
		move.Compact = &shift
	}

	if len(order) <= 1 {
		if len(order) == 1 && order[0].ID != taskID {
			return Move{}, ErrTaskNotInOrder
		}
		return move, nil
	}

	found := false
	for _, p := range order {
		if p.ID == taskID {
			move.Index = p.NewIndex
			found = true
			break
		}
	}
	if !found {
		return Move{}, ErrTaskNotInOrder
	}

	reindex, err := PlanReindex(toColumn, order)
	if err != nil {
		return Move{}, err
	}
	move.Reindex = reindex
	return move, nil
}
