package ast

import "github.com/quark-lang/quark/pkg/diag"

// Tree is an arena owning every node of a compilation unit. Deleted slots go
// onto a free list and are handed out again by New.
type Tree struct {
	nodes []Node // nodes[0] is the None sentinel
	free  []NodeID
	live  int
}

// NewTree creates an empty tree
func NewTree() *Tree {
	return &Tree{nodes: make([]Node, 1, 64)}
}

// New allocates a detached node carrying data. The node is not part of any
// child list until Append is called.
func (t *Tree) New(data Data, pos diag.Position) NodeID {
	n := Node{Kind: data.Kind(), Pos: pos, Data: data}

	t.live++
	if k := len(t.free); k > 0 {
		id := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[id] = n
		return id
	}
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// NewNamed allocates a detached named node
func (t *Tree) NewNamed(data Data, name Name, pos diag.Position) NodeID {
	id := t.New(data, pos)
	n := &t.nodes[id]
	n.Name = name
	n.Flags |= FlagNamed
	return id
}

// Node returns the node for id. The pointer is invalidated by the next call
// to New, so do not hold it across allocations.
func (t *Tree) Node(id NodeID) *Node {
	if id <= None || int(id) >= len(t.nodes) {
		panic("ast: invalid node id")
	}
	return &t.nodes[id]
}

// Valid reports whether id refers to a live node
func (t *Tree) Valid(id NodeID) bool {
	return id > None && int(id) < len(t.nodes) && t.nodes[id].Kind != KindInvalid
}

// Len returns the number of live nodes
func (t *Tree) Len() int {
	return t.live
}

// Kind returns the kind of id, or KindInvalid for None
func (t *Tree) Kind(id NodeID) Kind {
	if !t.Valid(id) {
		return KindInvalid
	}
	return t.nodes[id].Kind
}

// Append links child at the end of parent's child list
func (t *Tree) Append(parent, child NodeID) {
	p := t.Node(parent)
	c := t.Node(child)

	c.Parent = parent
	c.Next = None
	c.Prev = p.Tail
	if p.Tail == None {
		p.Head = child
	} else {
		t.nodes[p.Tail].Next = child
	}
	p.Tail = child
}

// Unlink removes id from its parent's child list, leaving the node and its
// subtree allocated.
func (t *Tree) Unlink(id NodeID) {
	n := t.Node(id)
	if n.Parent == None {
		return
	}
	p := &t.nodes[n.Parent]

	if n.Prev == None {
		if p.Head == id {
			p.Head = n.Next
		}
	} else {
		t.nodes[n.Prev].Next = n.Next
	}
	if n.Next == None {
		if p.Tail == id {
			p.Tail = n.Prev
		}
	} else {
		t.nodes[n.Next].Prev = n.Prev
	}

	n.Parent, n.Prev, n.Next = None, None, None
}

// Delete unlinks id and frees it together with its whole subtree
func (t *Tree) Delete(id NodeID) {
	if !t.Valid(id) {
		return
	}
	t.Unlink(id)

	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for c := t.nodes[cur].Head; c != None; c = t.nodes[c].Next {
			stack = append(stack, c)
		}
		t.nodes[cur] = Node{}
		t.free = append(t.free, cur)
		t.live--
	}
}

// Children returns the children of id in order
func (t *Tree) Children(id NodeID) []NodeID {
	var result []NodeID
	for c := t.Node(id).Head; c != None; c = t.nodes[c].Next {
		result = append(result, c)
	}
	return result
}

// ChildCount returns the number of children of id
func (t *Tree) ChildCount(id NodeID) int {
	n := 0
	for c := t.Node(id).Head; c != None; c = t.nodes[c].Next {
		n++
	}
	return n
}

// Find returns the direct named child of parent matching name, or None
func (t *Tree) Find(parent NodeID, name Name) NodeID {
	for c := t.Node(parent).Head; c != None; c = t.nodes[c].Next {
		n := &t.nodes[c]
		if n.Flags&FlagNamed != 0 && n.Name.Matches(name) {
			return c
		}
	}
	return None
}

// As returns the payload of id as T
func As[T Data](t *Tree, id NodeID) (T, bool) {
	var zero T
	if !t.Valid(id) {
		return zero, false
	}
	d, ok := t.nodes[id].Data.(T)
	return d, ok
}
