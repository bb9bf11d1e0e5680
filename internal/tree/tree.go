// Package tree turns a flat archive listing into a navigable folder/file hierarchy.
package tree

import (
	"strings"
	"time"

	"github.com/rejaad/rearchive/pkg/models"
)

// Kind distinguishes folders from files
type Kind int

const (
	Folder Kind = iota
	File
)

func (k Kind) String() string {
	if k == File {
		return "file"
	}
	return "folder"
}

// Node is a single path segment in the archive tree
type Node struct {
	Name     string
	Kind     Kind
	Size     uint64
	Modified time.Time
	// Path is the archive path this node stands for. For files it is the exact
	// path reported by the reader, so it can be handed back for extraction.
	Path string

	parent   *Node
	children []*Node
	index    map[string]*Node
}

func newFolder(name, path string, parent *Node) *Node {
	return &Node{
		Name:   name,
		Kind:   Folder,
		Path:   path,
		parent: parent,
		index:  make(map[string]*Node),
	}
}

// IsDir reports whether the node is a folder
func (n *Node) IsDir() bool {
	return n.Kind == Folder
}

// Parent returns the enclosing folder, nil for the root
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's children in insertion order. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Child looks up a direct child by segment name
func (n *Node) Child(name string) *Node {
	if n.index == nil {
		return nil
	}
	return n.index[name]
}

// Depth returns the number of folders between the node and the root
func (n *Node) Depth() int {
	depth := 0
	for p := n.parent; p != nil && p.parent != nil; p = p.parent {
		depth++
	}
	return depth
}

// insert appends child, keeping the name index in sync
func (n *Node) insert(child *Node) {
	child.parent = n
	n.children = append(n.children, child)
	n.index[child.Name] = child
}

// lookupOrInsertFolder returns the folder called name under n, creating it once.
// A file already stored under that name becomes a folder.
func (n *Node) lookupOrInsertFolder(name string) *Node {
	child, ok := n.index[name]
	if !ok {
		child = newFolder(name, joinPath(n.Path, name), n)
		n.insert(child)
		return child
	}
	if child.Kind == File {
		child.Kind = Folder
		child.Size = 0
		child.Modified = time.Time{}
		child.Path = joinPath(n.Path, name)
		child.index = make(map[string]*Node)
	}
	return child
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// splitPath breaks an archive path into segments, dropping empty and "." parts
func splitPath(p string) []string {
	raw := strings.Split(p, "/")
	segments := raw[:0]
	for _, s := range raw {
		if s == "" || s == "." {
			continue
		}
		segments = append(segments, s)
	}
	return segments
}

// Builder assembles a tree from entries one at a time
type Builder struct {
	root *Node
}

// NewBuilder creates a builder with an empty root folder
func NewBuilder() *Builder {
	return &Builder{root: newFolder("", "", nil)}
}

// Add inserts one entry. Duplicate file paths overwrite the earlier node's attributes.
func (b *Builder) Add(entry models.Entry) {
	segments := splitPath(entry.Path)
	if len(segments) == 0 {
		return
	}

	current := b.root
	for _, segment := range segments[:len(segments)-1] {
		current = current.lookupOrInsertFolder(segment)
	}

	name := segments[len(segments)-1]
	if entry.IsDir || strings.HasSuffix(entry.Path, "/") {
		current.lookupOrInsertFolder(name)
		return
	}

	if existing, ok := current.index[name]; ok {
		// Folders win over files with the same name
		if existing.Kind == Folder {
			return
		}
		existing.Size = entry.Size
		existing.Modified = entry.Modified
		existing.Path = entry.Path
		return
	}

	current.insert(&Node{
		Name:     name,
		Kind:     File,
		Size:     entry.Size,
		Modified: entry.Modified,
		Path:     entry.Path,
	})
}

// Root returns the tree built so far
func (b *Builder) Root() *Node {
	return b.root
}

// Build creates a fresh tree from entries
func Build(entries []models.Entry) *Node {
	b := NewBuilder()
	for _, entry := range entries {
		b.Add(entry)
	}
	return b.Root()
}

// Find resolves a slash-separated path relative to root. An empty path returns root.
func Find(root *Node, p string) *Node {
	if root == nil {
		return nil
	}
	current := root
	for _, segment := range splitPath(p) {
		current = current.Child(segment)
		if current == nil {
			return nil
		}
	}
	return current
}

// Walk visits n and its descendants depth-first in child order.
// Returning false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		Walk(child, fn)
	}
}

// CountFiles counts the file nodes beneath n
func CountFiles(n *Node) int {
	count := 0
	Walk(n, func(node *Node) bool {
		if node.Kind == File {
			count++
		}
		return true
	})
	return count
}

// Files returns every file path beneath n in child order
func Files(n *Node) []string {
	var paths []string
	Walk(n, func(node *Node) bool {
		if node.Kind == File {
			paths = append(paths, node.Path)
		}
		return true
	})
	return paths
}

// TotalSize sums the sizes of the files beneath n
func TotalSize(n *Node) uint64 {
	var total uint64
	Walk(n, func(node *Node) bool {
		total += node.Size
		return true
	})
	return total
}
