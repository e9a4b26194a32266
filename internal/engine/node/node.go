// Package node implements the transform hierarchy of the scene graph.
//
// A Node owns its children and caches a world transform that is valid for the
// most recent Propagate pass only. Nodes may be driven by a keyframe track, by
// an external controller, or left static.
package node

import (
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/skinview/internal/engine/keyframe"
	"github.com/Faultbox/skinview/pkg/math"
)

// Drive identifies what produces a node's local transform.
type Drive int

const (
	// Static nodes keep whatever local transform was last set.
	Static Drive = iota
	// Keyframed nodes evaluate a TransformTrack every pass.
	Keyframed
	// External nodes ask a Controller every pass.
	External
)

func (d Drive) String() string {
	switch d {
	case Static:
		return "static"
	case Keyframed:
		return "keyframed"
	case External:
		return "external"
	default:
		return fmt.Sprintf("Drive(%d)", int(d))
	}
}

// Controller supplies a local transform from outside the animation system,
// typically from user input.
type Controller interface {
	Local() math.Mat4
}

// Visitor is called once per node, in pre-order, with the node's world
// transform and its merged parameters. Params must be treated as read-only.
type Visitor func(n *Node, world math.Mat4, params Params)

// Node is a scene graph node.
type Node struct {
	name     string
	local    math.Mat4
	world    math.Mat4
	params   Params
	children []*Node

	drive      Drive
	track      *keyframe.TransformTrack
	controller Controller
	timeOrigin float64
	chained    bool
}

// New creates a static node with an identity local transform.
func New(name string) *Node {
	return &Node{
		name:  name,
		local: math.Identity(),
		world: math.Identity(),
	}
}

// NewAnimated creates a keyframed node. Chained nodes restart together with
// their parent when the parent's time is reset.
func NewAnimated(name string, track *keyframe.TransformTrack, chained bool) *Node {
	n := New(name)
	n.SetTrack(track)
	n.chained = chained
	return n
}

// Name returns the node name.
func (n *Node) Name() string {
	return n.name
}

// Add appends children in order. The caller guarantees the result stays a tree.
func (n *Node) Add(children ...*Node) {
	n.children = append(n.children, children...)
}

// Children returns the child nodes in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}

// Local returns the current local transform.
func (n *Node) Local() math.Mat4 {
	return n.local
}

// SetLocal overrides the local transform. Keyframed and External nodes
// overwrite it again on the next pass.
func (n *Node) SetLocal(m math.Mat4) {
	n.local = m
}

// World returns the world transform computed by the last Propagate pass.
func (n *Node) World() math.Mat4 {
	return n.world
}

// Params returns the node's own broadcast parameters.
func (n *Node) Params() Params {
	return n.params
}

// SetParam sets a broadcast parameter inherited by the whole subtree.
func (n *Node) SetParam(key string, value any) {
	if n.params == nil {
		n.params = make(Params)
	}
	n.params[key] = value
}

// Drive returns the current drive mode.
func (n *Node) Drive() Drive {
	return n.drive
}

// Track returns the keyframe track, or nil.
func (n *Node) Track() *keyframe.TransformTrack {
	return n.track
}

// SetTrack replaces the node's animation wholesale. A nil track makes the
// node static, keeping the last evaluated local transform.
func (n *Node) SetTrack(track *keyframe.TransformTrack) {
	n.track = track
	n.controller = nil
	if track != nil {
		n.drive = Keyframed
	} else {
		n.drive = Static
	}
}

// SetController hands the local transform over to c. A nil controller makes
// the node static.
func (n *Node) SetController(c Controller) {
	n.controller = c
	n.track = nil
	if c != nil {
		n.drive = External
	} else {
		n.drive = Static
	}
}

// Chained reports whether the node restarts with its parent.
func (n *Node) Chained() bool {
	return n.chained
}

// SetChained marks the node to restart with its parent.
func (n *Node) SetChained(chained bool) {
	n.chained = chained
}

// TimeOrigin returns the time the animation was last restarted at.
func (n *Node) TimeOrigin() float64 {
	return n.timeOrigin
}

// ResetTime restarts the node's animation at now, together with every
// chained child (and their chained children).
func (n *Node) ResetTime(now float64) {
	n.timeOrigin = now
	for _, c := range n.children {
		if c.chained {
			c.ResetTime(now)
		}
	}
}

// Propagate refreshes local transforms from their drivers and recomputes world
// transforms for the subtree rooted at n. visit may be nil.
func (n *Node) Propagate(parentWorld math.Mat4, inherited Params, now float64, visit Visitor) error {
	if !keyframe.IsFinite(now) {
		return keyframe.ErrInvalidTime
	}
	return n.propagate(parentWorld, inherited, now, visit)
}

func (n *Node) propagate(parentWorld math.Mat4, inherited Params, now float64, visit Visitor) error {
	switch n.drive {
	case Keyframed:
		local, err := n.track.Evaluate(now - n.timeOrigin)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.name, err)
		}
		n.local = local
	case External:
		n.local = n.controller.Local()
	}

	params := inherited.Merge(n.params)
	n.world = parentWorld.Mul(n.local)

	if visit != nil {
		visit(n, n.world, params)
	}
	for _, c := range n.children {
		if err := c.propagate(n.world, params, now, visit); err != nil {
			return err
		}
	}
	return nil
}

// Walk calls fn for n and every descendant in pre-order until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first node in pre-order with the given name, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the subtree.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Dump writes an indented outline of the subtree.
func (n *Node) Dump(w io.Writer) error {
	return n.dump(w, 0)
}

func (n *Node) dump(w io.Writer, depth int) error {
	name := n.name
	if name == "" {
		name = "<unnamed>"
	}
	line := fmt.Sprintf("%s%s (%s", strings.Repeat("  ", depth), name, n.drive)
	if n.chained {
		line += ", chained"
	}
	if _, err := fmt.Fprintln(w, line+")"); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := c.dump(w, depth+1); err != nil {
			return err
		}
	}
	return nil
}
