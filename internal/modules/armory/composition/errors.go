package composition

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input the algorithms refuse to compute on
	// (non-positive requirements, negative inventory, overflow).
	ErrValidation = errors.New("composition validation")
	// ErrNotFound marks a root material that is absent from the snapshot.
	ErrNotFound = errors.New("composition not found")
	// ErrCycle marks a composition graph that revisits an in-progress node.
	ErrCycle = errors.New("composition cycle")
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindCycle
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindCycle:
		return "cycle"
	default:
		return "unknown"
	}
}

// Error is returned by every operation in this package.
type Error struct {
	Kind       Kind
	MaterialID int64
	// Path is the chain of material ids that closed a cycle, root first.
	Path []int64
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.MaterialID != 0 {
		return fmt.Sprintf("%s (material %d)", e.Msg, e.MaterialID)
	}
	return e.Msg
}

func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindValidation:
		return target == ErrValidation
	case KindNotFound:
		return target == ErrNotFound
	case KindCycle:
		return target == ErrCycle
	}
	return false
}

func validationError(id int64, format string, args ...any) error {
	return &Error{Kind: KindValidation, MaterialID: id, Msg: fmt.Sprintf(format, args...)}
}

func notFoundError(id int64) error {
	return &Error{Kind: KindNotFound, MaterialID: id, Msg: "material not found"}
}

func cycleError(id int64, path []int64) error {
	p := make([]int64, len(path))
	copy(p, path)
	return &Error{Kind: KindCycle, MaterialID: id, Path: p, Msg: "cycle detected in composition graph"}
}
