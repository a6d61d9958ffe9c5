// SPDX-License-Identifier: EPL-2.0

package graph

import "strconv"

// State is the lifecycle position of a Graph.
type State int

const (
	Unopened State = iota
	Opened
	Initialized
	Running
	Stopped
	Closed
)

var stateNames = [...]string{
	Unopened:    "unopened",
	Opened:      "opened",
	Initialized: "initialized",
	Running:     "running",
	Stopped:     "stopped",
	Closed:      "closed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}

	return "state(" + strconv.Itoa(int(s)) + ")"
}
