package tree

// Resolve expands a selection of nodes into the archive paths of the files it covers.
// Folders contribute every file beneath them. Paths are distinct and keep first-seen
// order; nodes that are nil or outside root are ignored.
func Resolve(root *Node, selected []*Node) []string {
	paths := make([]string, 0)
	seen := make(map[string]bool)

	add := func(p string) {
		if seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	for _, node := range selected {
		if node == nil || !contains(root, node) {
			continue
		}
		if node.Kind == File {
			add(node.Path)
			continue
		}
		Walk(node, func(n *Node) bool {
			if n.Kind == File {
				add(n.Path)
			}
			return true
		})
	}

	return paths
}

// contains reports whether node is root or one of its descendants
func contains(root, node *Node) bool {
	for n := node; n != nil; n = n.parent {
		if n == root {
			return true
		}
	}
	return false
}
