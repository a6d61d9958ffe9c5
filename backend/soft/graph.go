// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"errors"

	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/status"
)

type graphState int

const (
	graphClosed graphState = iota
	graphOpen
	graphInitialized
	graphRunning
)

type node struct {
	id   native.NodeID
	desc native.ComponentDescription
	unit *unit
}

type connection struct {
	src, dst *node
}

type graph struct {
	state graphState
	nodes []*node
	conns []connection
}

func (g *graph) node(id native.NodeID) (*node, bool) {
	if id < 1 || int(id) > len(g.nodes) {
		return nil, false
	}

	return g.nodes[id-1], true
}

func (b *Backend) findGraph(id native.GraphID) (*graph, status.Code) {
	g, ok := b.graphs[id]
	if !ok {
		return nil, status.CodeParam
	}

	return g, status.OK
}

func (b *Backend) NewGraph() (native.GraphID, status.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := native.GraphID(b.id())
	b.graphs[id] = &graph{}

	return id, status.OK
}

// AddNode records desc. Components are looked up when the graph opens.
func (b *Backend) AddNode(id native.GraphID, desc native.ComponentDescription) (native.NodeID, status.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, code := b.findGraph(id)
	if code != status.OK {
		return 0, code
	}

	n := &node{id: native.NodeID(len(g.nodes) + 1), desc: desc}
	g.nodes = append(g.nodes, n)

	if g.state >= graphOpen {
		if code := b.instantiate(n); code != status.OK {
			g.nodes = g.nodes[:len(g.nodes)-1]
			return 0, code
		}
	}

	return n.id, status.OK
}

func (b *Backend) instantiate(n *node) status.Code {
	u, code := b.newUnit(n.desc)
	if code != status.OK {
		return code
	}

	u.id = native.UnitID(b.id())
	b.units[u.id] = u
	n.unit = u

	return status.OK
}

func (b *Backend) OpenGraph(id native.GraphID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, code := b.findGraph(id)
	if code != status.OK {
		return code
	}
	if g.state >= graphOpen {
		return status.OK
	}

	for _, n := range g.nodes {
		if code := b.instantiate(n); code != status.OK {
			b.log.Debug("open graph failed", "component", n.desc.String(), "code", code)
			b.releaseUnits(g)
			return code
		}
	}
	g.state = graphOpen

	return status.OK
}

func (b *Backend) releaseUnits(g *graph) {
	for _, n := range g.nodes {
		if n.unit != nil {
			n.unit.release()
			delete(b.units, n.unit.id)
			n.unit = nil
		}
	}
}

func (b *Backend) NodeUnit(id native.GraphID, nid native.NodeID) (native.UnitID, status.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, code := b.findGraph(id)
	if code != status.OK {
		return 0, code
	}

	n, ok := g.node(nid)
	if !ok {
		return 0, status.CodeNodeNotFound
	}
	if g.state < graphOpen || n.unit == nil {
		return 0, status.CodeCannotDoInCurrentContext
	}

	return n.unit.id, status.OK
}

// ConnectNodes supports one connection shape: a generator's only output bus
// into an output unit's only input bus.
func (b *Backend) ConnectNodes(id native.GraphID, srcID native.NodeID, srcOutput uint32, dstID native.NodeID, dstInput uint32) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, code := b.findGraph(id)
	if code != status.OK {
		return code
	}

	src, ok := g.node(srcID)
	if !ok {
		return status.CodeNodeNotFound
	}
	dst, ok := g.node(dstID)
	if !ok {
		return status.CodeNodeNotFound
	}

	if srcOutput != 0 || dstInput != 0 {
		return status.CodeInvalidElement
	}
	if src.desc.Type != native.TypeGenerator || dst.desc.Type != native.TypeOutput {
		return status.CodeInvalidConnection
	}
	for _, c := range g.conns {
		if c.dst == dst {
			return status.CodeInvalidConnection
		}
	}
	if g.state >= graphInitialized {
		return status.CodeCannotDoInCurrentContext
	}

	g.conns = append(g.conns, connection{src: src, dst: dst})

	return status.OK
}

func (b *Backend) InitializeGraph(id native.GraphID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, code := b.findGraph(id)
	if code != status.OK {
		return code
	}

	switch g.state {
	case graphClosed:
		return status.CodeCannotDoInCurrentContext
	case graphInitialized, graphRunning:
		return status.OK
	}

	for _, c := range g.conns {
		c.dst.unit.output.input = c.src.unit.player
	}

	// Generators first, so outputs see their final formats.
	ordered := make([]*node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.unit.player != nil {
			ordered = append(ordered, n)
		}
	}
	for _, n := range g.nodes {
		if n.unit.output != nil {
			ordered = append(ordered, n)
		}
	}

	for i, n := range ordered {
		if code := n.unit.initialize(); code != status.OK {
			for _, done := range ordered[:i] {
				_ = done.unit.uninitialize()
			}
			return code
		}
	}
	g.state = graphInitialized

	return status.OK
}

func (b *Backend) StartGraph(id native.GraphID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, code := b.findGraph(id)
	if code != status.OK {
		return code
	}

	switch g.state {
	case graphRunning:
		return status.OK
	case graphInitialized:
	default:
		return status.CodeUninitialized
	}

	for _, n := range g.nodes {
		if out := n.unit.output; out != nil {
			if err := out.start(); err != nil {
				b.log.Error("starting output failed", "component", n.desc.String(), "error", err)
				b.stopOutputs(g)
				return status.CodeOutputNodeErr
			}
		}
	}
	g.state = graphRunning

	return status.OK
}

// stopOutputs waits for every sink to stop pulling.
func (b *Backend) stopOutputs(g *graph) error {
	var errs []error
	for _, n := range g.nodes {
		if n.unit != nil && n.unit.output != nil {
			errs = append(errs, n.unit.output.stop())
		}
	}

	return errors.Join(errs...)
}

func (b *Backend) StopGraph(id native.GraphID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, code := b.findGraph(id)
	if code != status.OK {
		return code
	}
	if g.state != graphRunning {
		return status.OK
	}

	g.state = graphInitialized
	if err := b.stopOutputs(g); err != nil {
		b.log.Error("stopping outputs failed", "error", err)
		return status.CodeOutputNodeErr
	}

	return status.OK
}

func (b *Backend) UninitializeGraph(id native.GraphID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, code := b.findGraph(id)
	if code != status.OK {
		return code
	}

	return b.uninitialize(g)
}

func (b *Backend) uninitialize(g *graph) status.Code {
	if g.state < graphInitialized {
		return status.OK
	}

	result := status.OK
	if g.state == graphRunning {
		if err := b.stopOutputs(g); err != nil {
			b.log.Error("stopping outputs failed", "error", err)
			result = status.CodeOutputNodeErr
		}
	}

	for _, n := range g.nodes {
		if code := n.unit.uninitialize(); code != status.OK && result == status.OK {
			result = code
		}
	}
	g.state = graphOpen

	return result
}

func (b *Backend) CloseGraph(id native.GraphID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, code := b.findGraph(id)
	if code != status.OK {
		return code
	}

	result := b.uninitialize(g)
	b.releaseUnits(g)
	delete(b.graphs, id)

	return result
}
