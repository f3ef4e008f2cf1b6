package figma

import "strings"

// CollectTextNodes walks the document tree depth-first and returns every
// visible text leaf with non-blank content, in traversal order. Traversal
// order is what makes key generation deterministic, so the walk follows the
// child order of the API payload exactly.
//
// Classification:
//   - TEXT nodes with characters are translatable leaves;
//   - the DOCUMENT root is a passthrough (its name never reaches keys);
//   - every other node is a path-contributing container — its name becomes
//     an ancestor segment for the subtree;
//   - nodes with visible == false are skipped along with their subtree.
func CollectTextNodes(doc Node) []TextNode {
	var out []TextNode
	for _, child := range doc.Children {
		walk(child, nil, &out)
	}
	return out
}

func walk(n Node, path []string, out *[]TextNode) {
	if n.Visible != nil && !*n.Visible {
		return
	}

	if n.Type == NodeText {
		if strings.TrimSpace(n.Characters) == "" {
			return
		}
		// Copy the path: the slice is shared across siblings.
		p := make([]string, len(path))
		copy(p, path)
		*out = append(*out, TextNode{Text: n.Characters, Path: p, NodeID: n.ID})
		return
	}

	child := append(path, n.Name)
	for _, c := range n.Children {
		walk(c, child, out)
	}
}
