package commenttree

import (
	"github.com/anonto42/nano-midea/social/internal/apperrors"
	"github.com/anonto42/nano-midea/social/internal/models"
)

// Build assembles the forest of a post from a comment payload.
//
// Records may arrive pre-nested (each carrying its Replies), flat (linked by
// ParentID), or as a mix of both. Nesting always wins over ParentID for nested
// records. Server order is kept at every level; flat replies are appended after
// the nested ones of the same parent in payload order.
//
// A record whose ParentID is not in the payload, or a set of records whose
// parents form a cycle, yields a MalformedTree error.
func Build(records []models.Comment) (Forest, error) {
	return build(records, nil)
}

// BuildReplies assembles the replies of the comment parentID, as returned by the
// replies endpoint. Records pointing at parentID become the roots of the result.
func BuildReplies(parentID uint, records []models.Comment) (Forest, error) {
	return build(records, &parentID)
}

type builder struct {
	index map[uint]*Node
	total int
}

func build(records []models.Comment, rootParent *uint) (Forest, error) {
	b := &builder{index: make(map[uint]*Node, len(records))}

	var roots, pending []*Node
	for _, rec := range records {
		n := b.node(rec, nil)
		pid := n.Comment.ParentID
		if pid == nil || (rootParent != nil && *pid == *rootParent) {
			roots = append(roots, n)
			continue
		}
		pending = append(pending, n)
	}

	for _, n := range pending {
		parent, ok := b.index[*n.Comment.ParentID]
		if !ok {
			return Forest{}, apperrors.Newf(apperrors.CodeMalformedTree,
				"comment %d references missing parent %d", n.Comment.ID, *n.Comment.ParentID)
		}
		parent.Children = append(parent.Children, n)
	}

	f := Forest{Roots: roots}
	if reached := f.Len(); reached != b.total {
		return Forest{}, apperrors.Newf(apperrors.CodeMalformedTree,
			"%d of %d comments are unreachable through their parents", b.total-reached, b.total)
	}
	return f, nil
}

// node converts rec and its nested replies into nodes and registers them.
// The first node seen for an identity is the one flat records attach to.
func (b *builder) node(rec models.Comment, parent *uint) *Node {
	c := rec
	c.Replies = nil
	if parent != nil {
		pid := *parent
		c.ParentID = &pid
	}

	n := &Node{Comment: c}
	b.total++
	if _, seen := b.index[c.ID]; !seen {
		b.index[c.ID] = n
	}

	id := c.ID
	for _, r := range rec.Replies {
		n.Children = append(n.Children, b.node(r, &id))
	}
	return n
}
