package langmodel

import sitter "github.com/smacker/go-tree-sitter"

func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

func children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func firstNamedOfType(n *sitter.Node, types ...string) *sitter.Node {
	for _, c := range namedChildren(n) {
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

// hasToken reports whether n has a direct anonymous child with the given text.
func hasToken(n *sitter.Node, tok string) bool {
	for _, c := range children(n) {
		if !c.IsNamed() && c.Type() == tok {
			return true
		}
	}
	return false
}

// walk visits n and its descendants in source order. Returning false from fn
// skips the children of the visited node.
func walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range children(n) {
		walk(c, fn)
	}
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// isFieldOf reports whether n is the child stored under field of parent.
func isFieldOf(n, parent *sitter.Node, field string) bool {
	if parent == nil {
		return false
	}
	return sameNode(parent.ChildByFieldName(field), n)
}

func span(n *sitter.Node) (int, int) {
	return int(n.StartByte()), int(n.EndByte())
}

// nodeAt returns the smallest named node covering [start, end).
func nodeAt(root *sitter.Node, start, end int) *sitter.Node {
	var found *sitter.Node
	walk(root, func(n *sitter.Node) bool {
		s, e := span(n)
		if s > start || e < end {
			return false
		}
		if n.IsNamed() {
			found = n
		}
		return true
	})
	return found
}
