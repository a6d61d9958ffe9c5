// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"slices"
	"sync"

	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/status"
)

// Node is a unit added to a graph.
type Node struct {
	ID   native.NodeID
	Desc native.ComponentDescription
}

// Connection is a directed edge from one node's output bus to another
// node's input bus.
type Connection struct {
	Src       native.NodeID
	SrcOutput uint32
	Dst       native.NodeID
	DstInput  uint32
}

// Graph is a native processing graph owned by one playback session.
// Its methods are safe for concurrent use, though the lifecycle is linear.
type Graph struct {
	backend native.Backend
	id      native.GraphID

	mu    sync.Mutex
	state State
	nodes []Node
	conns []Connection

	teardownOnce sync.Once
}

// New creates an empty graph. When the host fails after allocating a graph
// the allocation is released before the error is returned.
func New(b native.Backend) (*Graph, error) {
	id, code := b.NewGraph()
	if code != status.OK {
		if id != 0 {
			_ = b.CloseGraph(id)
		}
		return nil, status.Check("create graph", code)
	}

	if id == 0 {
		return nil, &status.StatusError{Op: "create graph", Code: status.CodeMemFull}
	}

	return &Graph{backend: b, id: id, state: Unopened}, nil
}

// ID is the host handle.
func (g *Graph) ID() native.GraphID { return g.id }

func (g *Graph) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state
}

// Nodes returns the nodes added so far, in order.
func (g *Graph) Nodes() []Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	return slices.Clone(g.nodes)
}

// Connections returns the connections made so far, in order.
func (g *Graph) Connections() []Connection {
	g.mu.Lock()
	defer g.mu.Unlock()

	return slices.Clone(g.conns)
}

// require fails unless the graph is in one of want. Callers hold g.mu.
func (g *Graph) require(op string, want ...State) error {
	if slices.Contains(want, g.state) {
		return nil
	}

	return &StateError{Op: op, State: g.state, Want: want}
}

// AddNode adds a unit selected by desc. Nodes can only be added before the
// graph is opened.
func (g *Graph) AddNode(desc native.ComponentDescription) (native.NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require("add node", Unopened); err != nil {
		return 0, err
	}

	node, code := g.backend.AddNode(g.id, desc)
	if err := status.Check("add node "+desc.String(), code); err != nil {
		return 0, err
	}

	g.nodes = append(g.nodes, Node{ID: node, Desc: desc})

	return node, nil
}

// Open instantiates the units of every node.
func (g *Graph) Open() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require("open", Unopened); err != nil {
		return err
	}

	if err := status.Check("open graph", g.backend.OpenGraph(g.id)); err != nil {
		return err
	}

	g.state = Opened

	return nil
}

// ResolveUnit returns the unit instance behind node.
func (g *Graph) ResolveUnit(node native.NodeID) (native.UnitID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require("resolve unit", Opened, Initialized, Running, Stopped); err != nil {
		return 0, err
	}

	unit, code := g.backend.NodeUnit(g.id, node)
	if err := status.Check("resolve unit", code); err != nil {
		return 0, err
	}

	return unit, nil
}

// Connect routes output srcOutput of src into input dstInput of dst.
func (g *Graph) Connect(src native.NodeID, srcOutput uint32, dst native.NodeID, dstInput uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require("connect", Opened); err != nil {
		return err
	}

	code := g.backend.ConnectNodes(g.id, src, srcOutput, dst, dstInput)
	if err := status.Check("connect nodes", code); err != nil {
		return err
	}

	g.conns = append(g.conns, Connection{Src: src, SrcOutput: srcOutput, Dst: dst, DstInput: dstInput})

	return nil
}

// Initialize validates the connections and allocates render resources.
func (g *Graph) Initialize() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require("initialize", Opened); err != nil {
		return err
	}

	if err := status.Check("initialize graph", g.backend.InitializeGraph(g.id)); err != nil {
		return err
	}

	g.state = Initialized

	return nil
}

// Start begins rendering.
func (g *Graph) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require("start", Initialized); err != nil {
		return err
	}

	if err := status.Check("start graph", g.backend.StartGraph(g.id)); err != nil {
		return err
	}

	g.state = Running

	return nil
}

// Teardown stops, uninitializes and closes the graph, attempting every step
// even after an earlier one fails. Only the first call does any work; later
// calls return nil. The graph is Closed afterwards.
func (g *Graph) Teardown() error {
	var err error

	g.teardownOnce.Do(func() {
		g.mu.Lock()
		defer g.mu.Unlock()

		var errs []error
		if err := status.Check("stop graph", g.backend.StopGraph(g.id)); err != nil {
			errs = append(errs, err)
		}
		g.state = Stopped

		if err := status.Check("uninitialize graph", g.backend.UninitializeGraph(g.id)); err != nil {
			errs = append(errs, err)
		}

		if err := status.Check("close graph", g.backend.CloseGraph(g.id)); err != nil {
			errs = append(errs, err)
		}
		g.state = Closed

		if len(errs) > 0 {
			err = &status.TeardownError{Errs: errs}
		}
	})

	return err
}
