package output

import (
	"sort"
	"strings"
)

const (
	treeEdge  = "├── "
	treeLast  = "└── "
	treeVert  = "│   "
	treeSpace = "    "
)

// treeNode is one path element of a rendered file tree.
type treeNode struct {
	name     string
	isDir    bool
	children []*treeNode
}

// RenderTree renders files and directories below root as a tree. Paths use
// forward slashes. Directories sort before files, then alphabetically.
func RenderTree(root string, files, dirs []string) string {
	top := &treeNode{name: root, isDir: true}
	for _, f := range files {
		top.insert(strings.Split(f, "/"), false)
	}
	for _, d := range dirs {
		top.insert(strings.Split(d, "/"), true)
	}
	top.sort()

	var sb strings.Builder
	sb.WriteString(treeRootStyle.Render(strings.TrimSuffix(root, "/") + "/"))
	sb.WriteString("\n")
	for i, child := range top.children {
		child.render(&sb, "", i == len(top.children)-1)
	}
	return sb.String()
}

func (n *treeNode) insert(parts []string, dir bool) {
	current := n
	for i, part := range parts {
		if part == "" {
			continue
		}
		last := i == len(parts)-1

		var child *treeNode
		for _, c := range current.children {
			if c.name == part {
				child = c
				break
			}
		}
		if child == nil {
			child = &treeNode{name: part, isDir: !last || dir}
			current.children = append(current.children, child)
		}
		current = child
	}
}

func (n *treeNode) sort() {
	sort.Slice(n.children, func(i, j int) bool {
		a, b := n.children[i], n.children[j]
		if a.isDir != b.isDir {
			return a.isDir
		}
		return a.name < b.name
	})
	for _, c := range n.children {
		c.sort()
	}
}

func (n *treeNode) render(sb *strings.Builder, prefix string, isLast bool) {
	connector := treeEdge
	childPrefix := prefix + treeVert
	if isLast {
		connector = treeLast
		childPrefix = prefix + treeSpace
	}

	name := n.name
	if n.isDir {
		name = treeDirStyle.Render(name + "/")
	}
	sb.WriteString(stepStyle.Render(prefix+connector) + name + "\n")

	for i, child := range n.children {
		child.render(sb, childPrefix, i == len(n.children)-1)
	}
}
