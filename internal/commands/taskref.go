package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"todo/internal/service"
)

// TaskRef identifies a task on the command line, either by its 1-based
// position in the list output or by its ID.
type TaskRef struct {
	Num int    // 1-based position; 0 when ID is set
	ID  string // task ID; empty when Num is set
}

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrOutOfRange indicates a position past the end of the list.
	ErrOutOfRange = errors.New("task number out of range")
)

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
//  1. No args → ErrTaskRefRequired
//  2. All digits → position (must be ≥ 1)
//  3. Anything else without whitespace → task ID
//  4. More than one arg → error: too many arguments
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("too many arguments: %s", strings.Join(args[1:], " "))
	}

	arg := args[0]
	if strings.TrimSpace(arg) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		if num < 1 {
			return TaskRef{}, fmt.Errorf("%w: %d", ErrOutOfRange, num)
		}
		return TaskRef{Num: num}, nil
	}

	if strings.ContainsFunc(arg, unicode.IsSpace) {
		return TaskRef{}, fmt.Errorf("invalid task reference: %q", arg)
	}
	return TaskRef{ID: arg}, nil
}

// Resolve returns the ID the reference points at in tasks. A position
// past the end yields ErrOutOfRange; an ID is returned as is and left to
// the controller to look up.
func (r TaskRef) Resolve(tasks []service.Task) (string, error) {
	if r.ID != "" {
		return r.ID, nil
	}
	if r.Num > len(tasks) {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, r.Num)
	}
	return tasks[r.Num-1].ID, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
