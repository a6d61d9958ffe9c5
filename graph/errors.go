// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidState = errors.New("invalid graph state")

// StateError reports an operation attempted in the wrong state.
type StateError struct {
	Op    string
	State State
	Want  []State
}

func (e *StateError) Error() string {
	want := make([]string, 0, len(e.Want))
	for _, s := range e.Want {
		want = append(want, s.String())
	}

	return fmt.Sprintf("graph %s: state is %s, want %s", e.Op, e.State, strings.Join(want, " or "))
}

func (e *StateError) Unwrap() error { return ErrInvalidState }
