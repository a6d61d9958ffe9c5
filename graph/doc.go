// SPDX-License-Identifier: EPL-2.0

// Package graph owns a native audio processing graph and enforces the order
// in which it may be built and run:
//
//	Unopened -> Opened -> Initialized -> Running -> Stopped
//
// Nodes are added while the graph is unopened, units are resolved and
// connections made once it is opened. A call made in the wrong state fails
// with an error wrapping ErrInvalidState and leaves the state unchanged.
//
// Teardown stops, uninitializes and closes the graph regardless of the state
// it was left in. It runs once; every failure it sees is reported together
// as a fatal *status.TeardownError.
package graph
