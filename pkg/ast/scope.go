package ast

// Scope is one level of lexical visibility. Declarations made in a scope are
// the named children of its Node.
type Scope struct {
	Node  NodeID
	Outer *Scope
}

// NewScope opens a scope for node nested inside outer
func NewScope(node NodeID, outer *Scope) *Scope {
	return &Scope{Node: node, Outer: outer}
}

// Lookup walks from s outward and returns the nearest declaration of name
func (s *Scope) Lookup(t *Tree, name Name) NodeID {
	for cur := s; cur != nil; cur = cur.Outer {
		if id := t.Find(cur.Node, name); id != None {
			return id
		}
	}
	return None
}

// LookupLocal searches only s itself
func (s *Scope) LookupLocal(t *Tree, name Name) NodeID {
	return t.Find(s.Node, name)
}

// Depth returns the number of scopes in the chain ending at s
func (s *Scope) Depth() int {
	n := 0
	for cur := s; cur != nil; cur = cur.Outer {
		n++
	}
	return n
}
