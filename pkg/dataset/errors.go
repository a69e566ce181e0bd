package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownGroup is returned when a group name is not registered.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrUnknownDataset is returned when a dataset name is not in the catalog.
	ErrUnknownDataset = errors.New("unknown dataset")
)

// GroupError reports a lookup of an unregistered group.
type GroupError struct {
	Group string
	Known []string
}

func (e *GroupError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown group %s", e.Group)
	}
	return fmt.Sprintf("unknown group %s (known: %s)", e.Group, strings.Join(e.Known, ", "))
}

// Is makes errors.Is(err, ErrUnknownGroup) succeed.
func (e *GroupError) Is(target error) bool {
	return target == ErrUnknownGroup
}
