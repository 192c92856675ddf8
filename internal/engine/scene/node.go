// Package scene provides the node hierarchy that engine components attach to.
//
// Nodes emit Added and Removed events whenever a subtree is attached to or
// detached from a parent. The event is delivered to every node of the moved
// subtree and to every ancestor of the parent, so a component bound to a node
// hears about changes both above and below it.
package scene

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Faultbox/midgard-skin/internal/engine/signal"
)

// Hierarchy errors.
var (
	ErrAlreadyParented   = errors.New("node already has a parent")
	ErrCycle             = errors.New("node cannot be added below itself")
	ErrNotChild          = errors.New("node is not a child")
	ErrComponentAttached = errors.New("component already attached to node")
	ErrComponentMissing  = errors.New("component not attached to node")
)

// NodeID is a stable integer key assigned at node creation.
type NodeID uint64

var lastNodeID atomic.Uint64

// Event describes a hierarchy change as seen by one listening node.
type Event struct {
	// Node is the node whose signal fired.
	Node *Node
	// Target is the root of the subtree that moved.
	Target *Node
	// Parent is the node Target was attached to or detached from.
	Parent *Node
}

// Node is an element of the scene hierarchy.
type Node struct {
	id         NodeID
	name       string
	parent     *Node
	children   []*Node
	components []Component

	added   *signal.Signal[Event]
	removed *signal.Signal[Event]
}

// NewNode creates a detached node.
func NewNode(name string) *Node {
	return &Node{
		id:      NodeID(lastNodeID.Add(1)),
		name:    name,
		added:   signal.New[Event](),
		removed: signal.New[Event](),
	}
}

// ID returns the node's stable key.
func (n *Node) ID() NodeID { return n.id }

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the direct children.
func (n *Node) Children() []*Node { return n.children }

// Added fires after a subtree touching this node is attached.
func (n *Node) Added() *signal.Signal[Event] { return n.added }

// Removed fires after a subtree touching this node is detached.
func (n *Node) Removed() *signal.Signal[Event] { return n.removed }

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d", n.name, n.id)
}

// Root returns the topmost ancestor, or n itself.
func (n *Node) Root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// IsDescendantOf reports whether n is ancestor or lies below it.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the visited node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// AddChild attaches child below n and emits Added.
// The hierarchy is updated even if listeners fail; their errors are returned.
func (n *Node) AddChild(child *Node) error {
	if child.parent != nil {
		return fmt.Errorf("adding %s to %s: %w", child, n, ErrAlreadyParented)
	}
	if n.IsDescendantOf(child) {
		return fmt.Errorf("adding %s to %s: %w", child, n, ErrCycle)
	}

	child.parent = n
	n.children = append(n.children, child)

	return emitAll(child, n, func(l *Node) *signal.Signal[Event] { return l.added })
}

// RemoveChild detaches child from n and emits Removed.
func (n *Node) RemoveChild(child *Node) error {
	idx := -1
	for i, c := range n.children {
		if c == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("removing %s from %s: %w", child, n, ErrNotChild)
	}

	n.children = append(n.children[:idx], n.children[idx+1:]...)
	child.parent = nil

	return emitAll(child, n, func(l *Node) *signal.Signal[Event] { return l.removed })
}

// emitAll delivers the event to the moved subtree, then to parent and its ancestors.
func emitAll(target, parent *Node, sig func(*Node) *signal.Signal[Event]) error {
	var listeners []*Node
	target.Walk(func(l *Node) bool {
		listeners = append(listeners, l)
		return true
	})
	for cur := parent; cur != nil; cur = cur.parent {
		listeners = append(listeners, cur)
	}

	var errs []error
	for _, l := range listeners {
		ev := Event{Node: l, Target: target, Parent: parent}
		if err := sig(l).Emit(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Roots returns the distinct roots of nodes, in first-seen order.
func Roots(nodes []*Node) []*Node {
	seen := make(map[NodeID]bool, len(nodes))
	var roots []*Node
	for _, n := range nodes {
		r := n.Root()
		if seen[r.id] {
			continue
		}
		seen[r.id] = true
		roots = append(roots, r)
	}
	return roots
}
