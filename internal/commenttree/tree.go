// Package commenttree assembles and edits the reply forest of a post.
//
// A Forest is a value: every edit returns a new Forest and leaves its input
// untouched. Nodes on the path to the edited node are copied; all other
// subtrees are shared between the old and the new forest, so nodes must be
// treated as read-only by callers.
//
// All by-identity lookups are depth-first in server order and stop at the first
// match.
package commenttree

import (
	"github.com/anonto42/nano-midea/social/internal/apperrors"
	"github.com/anonto42/nano-midea/social/internal/models"
)

// Node is one comment and its ordered replies.
// Comment.Replies is always nil; replies live in Children.
type Node struct {
	Comment  models.Comment
	Children []*Node
}

// ID returns the comment identity of the node.
func (n *Node) ID() uint {
	return n.Comment.ID
}

// Forest is the ordered list of top-level comments of a post.
type Forest struct {
	Roots []*Node
}

// Patch describes an in-place comment edit. Nil fields are left unchanged.
type Patch struct {
	Content *string
	Edited  *bool
}

// PatchFrom builds a patch carrying the body and edited flag of c.
func PatchFrom(c models.Comment) Patch {
	content, edited := c.Content, c.Edited
	return Patch{Content: &content, Edited: &edited}
}

// InsertRoot appends c as the last top-level comment.
func InsertRoot(f Forest, c models.Comment) Forest {
	c.ParentID = nil
	n := (&builder{index: map[uint]*Node{}}).node(c, nil)

	roots := make([]*Node, len(f.Roots), len(f.Roots)+1)
	copy(roots, f.Roots)
	return Forest{Roots: append(roots, n)}
}

// InsertReply appends c as the last child of the comment parentID.
// The reply's ParentID is set to parentID; its ReplyToUser is kept as given.
// If parentID is not in the forest it returns f unchanged and a ParentNotFound error.
func InsertReply(f Forest, parentID uint, c models.Comment) (Forest, error) {
	child := (&builder{index: map[uint]*Node{}}).node(c, &parentID)

	roots, ok := rewrite(f.Roots, parentID, func(n *Node) []*Node {
		cp := *n
		cp.Children = make([]*Node, len(n.Children), len(n.Children)+1)
		copy(cp.Children, n.Children)
		cp.Children = append(cp.Children, child)
		return []*Node{&cp}
	})
	if !ok {
		return f, apperrors.Newf(apperrors.CodeParentNotFound, "parent comment %d not found", parentID)
	}
	return Forest{Roots: roots}, nil
}

// UpdateNode applies p to the comment id, leaving its replies untouched.
// If id is not in the forest it returns f unchanged and a NotFound error.
func UpdateNode(f Forest, id uint, p Patch) (Forest, error) {
	roots, ok := rewrite(f.Roots, id, func(n *Node) []*Node {
		cp := *n
		if p.Content != nil {
			cp.Comment.Content = *p.Content
		}
		if p.Edited != nil {
			cp.Comment.Edited = *p.Edited
		}
		return []*Node{&cp}
	})
	if !ok {
		return f, apperrors.Newf(apperrors.CodeNotFound, "comment %d not found", id)
	}
	return Forest{Roots: roots}, nil
}

// RemoveNode removes the comment id together with all of its replies.
// If id is not in the forest it returns f unchanged and a NotFound error.
func RemoveNode(f Forest, id uint) (Forest, error) {
	roots, ok := rewrite(f.Roots, id, func(*Node) []*Node { return nil })
	if !ok {
		return f, apperrors.Newf(apperrors.CodeNotFound, "comment %d not found", id)
	}
	return Forest{Roots: roots}, nil
}

// rewrite replaces the first node with the given id, in depth-first order, by
// the nodes fn returns. Ancestors of the match are copied. An emptied slice is
// returned as nil.
func rewrite(nodes []*Node, id uint, fn func(*Node) []*Node) ([]*Node, bool) {
	for i, n := range nodes {
		var repl []*Node
		if n.Comment.ID == id {
			repl = fn(n)
		} else {
			children, ok := rewrite(n.Children, id, fn)
			if !ok {
				continue
			}
			cp := *n
			cp.Children = children
			repl = []*Node{&cp}
		}

		out := make([]*Node, 0, len(nodes)-1+len(repl))
		out = append(out, nodes[:i]...)
		out = append(out, repl...)
		out = append(out, nodes[i+1:]...)
		if len(out) == 0 {
			out = nil
		}
		return out, true
	}
	return nodes, false
}

// Walk visits every node depth-first: a node, then its replies in order.
// Returning false from fn stops the walk.
func (f Forest) Walk(fn func(n *Node, depth int) bool) {
	walk(f.Roots, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(*Node, int) bool) bool {
	for _, n := range nodes {
		if !fn(n, depth) {
			return false
		}
		if !walk(n.Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// Find returns the first node with the given id.
func (f Forest) Find(id uint) (*Node, bool) {
	var found *Node
	f.Walk(func(n *Node, _ int) bool {
		if n.Comment.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Len returns the number of comments in the forest.
func (f Forest) Len() int {
	count := 0
	f.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Flatten returns the comments in depth-first order, without nested replies.
func (f Forest) Flatten() []models.Comment {
	var out []models.Comment
	f.Walk(func(n *Node, _ int) bool {
		out = append(out, n.Comment)
		return true
	})
	return out
}

// Comments returns the forest in its nested wire shape.
func (f Forest) Comments() []models.Comment {
	return nest(f.Roots)
}

func nest(nodes []*Node) []models.Comment {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]models.Comment, len(nodes))
	for i, n := range nodes {
		out[i] = n.Comment
		out[i].Replies = nest(n.Children)
	}
	return out
}
