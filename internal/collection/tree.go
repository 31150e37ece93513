package collection

import (
	"encoding/xml"
	"fmt"

	"cratekeeper/internal/nml"
	"cratekeeper/internal/services"
	"cratekeeper/internal/textutil"
)

// Kind distinguishes the two node types of the playlist tree.
type Kind string

const (
	KindFolder   Kind = "folder"
	KindPlaylist Kind = "playlist"
)

// RootPath is the path of the tree's root folder.
const RootPath = "root"

// Node is an immutable snapshot of a tree node returned by tree operations.
type Node struct {
	Path       string   `json:"path"`
	Name       string   `json:"name"`
	ParentPath string   `json:"parentPath,omitempty"`
	Depth      int      `json:"depth"`
	Kind       Kind     `json:"kind"`
	Children   []*Node  `json:"children,omitempty"`
	TrackKeys  []string `json:"trackKeys,omitempty"`
}

// Move names one relocation inside a MoveBatch.
type Move struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type nodeID int

const invalidNode nodeID = -1

// playlistEntry pairs a track key with any extra XML the source document
// attached to the reference, so rewrites keep it in place.
type playlistEntry struct {
	key   string
	extra []nml.RawElement
}

type treeNode struct {
	id       nodeID
	kind     Kind
	name     string
	path     string
	depth    int
	parent   nodeID
	children []nodeID
	entries  []playlistEntry

	// Preserved source-document baggage.
	nodeAttrs []xml.Attr
	listType  string
	listUUID  string
	listAttrs []xml.Attr
}

// tree is an arena of nodes addressed by handle, with a parallel path index.
// Cycle checks are ancestor walks over parent handles; moves rewrite the index
// incrementally instead of deep-cloning subtrees.
type tree struct {
	nodes map[nodeID]*treeNode
	index map[string]nodeID
	root  nodeID
	next  nodeID
}

func newTree() *tree {
	t := &tree{
		nodes: make(map[nodeID]*treeNode),
		index: make(map[string]nodeID),
	}
	root := &treeNode{
		id:     0,
		kind:   KindFolder,
		name:   RootPath,
		path:   RootPath,
		parent: invalidNode,
	}
	t.nodes[root.id] = root
	t.index[root.path] = root.id
	t.root = root.id
	t.next = 1
	return t
}

func treeFromNML(root nml.Node) (*tree, error) {
	t := newTree()
	rootNode := t.nodes[t.root]
	rootNode.nodeAttrs = root.Attrs
	if root.Subnodes != nil {
		for i := range root.Subnodes.Nodes {
			if err := t.attachFromNML(rootNode, &root.Subnodes.Nodes[i]); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func (t *tree) attachFromNML(parent *treeNode, src *nml.Node) error {
	name := src.Name
	if name == "" {
		return services.Wrap(services.ErrCorruption, "tree", "load", "node without name", nil)
	}
	node := &treeNode{
		id:        t.next,
		name:      name,
		path:      parent.path + "/" + name,
		depth:     parent.depth + 1,
		parent:    parent.id,
		nodeAttrs: src.Attrs,
	}
	if _, exists := t.index[node.path]; exists {
		return services.Wrap(services.ErrCorruption, "tree", "load",
			fmt.Sprintf("duplicate node path %q", node.path), nil)
	}
	t.next++

	switch src.Type {
	case nml.NodeTypeFolder:
		node.kind = KindFolder
	case nml.NodeTypePlaylist:
		node.kind = KindPlaylist
		if src.Playlist != nil {
			node.listType = src.Playlist.Type
			node.listUUID = src.Playlist.UUID
			node.listAttrs = src.Playlist.Attrs
			node.entries = make([]playlistEntry, 0, len(src.Playlist.Tracks))
			for _, ref := range src.Playlist.Tracks {
				node.entries = append(node.entries, playlistEntry{key: ref.Key.Key, extra: ref.Extra})
			}
		}
	default:
		return services.Wrap(services.ErrCorruption, "tree", "load",
			fmt.Sprintf("node %q has unknown type %q", node.path, src.Type), nil)
	}

	t.nodes[node.id] = node
	t.index[node.path] = node.id
	parent.children = append(parent.children, node.id)

	if node.kind == KindFolder && src.Subnodes != nil {
		for i := range src.Subnodes.Nodes {
			if err := t.attachFromNML(node, &src.Subnodes.Nodes[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *tree) toNML() nml.Node {
	out := t.nodeToNML(t.nodes[t.root])
	out.Name = nml.RootNodeName
	return out
}

func (t *tree) nodeToNML(node *treeNode) nml.Node {
	out := nml.Node{Name: node.name, Attrs: node.nodeAttrs}
	switch node.kind {
	case KindFolder:
		out.Type = nml.NodeTypeFolder
		out.Subnodes = &nml.Subnodes{Count: len(node.children)}
		for _, childID := range node.children {
			out.Subnodes.Nodes = append(out.Subnodes.Nodes, t.nodeToNML(t.nodes[childID]))
		}
	case KindPlaylist:
		out.Type = nml.NodeTypePlaylist
		listType := node.listType
		if listType == "" {
			listType = "LIST"
		}
		body := &nml.PlaylistBody{
			Entries: len(node.entries),
			Type:    listType,
			UUID:    node.listUUID,
			Attrs:   node.listAttrs,
		}
		for _, entry := range node.entries {
			body.Tracks = append(body.Tracks, nml.PlaylistEntry{
				Key:   nml.PrimaryKey{Type: nml.PrimaryKeyTrack, Key: entry.key},
				Extra: entry.extra,
			})
		}
		out.Playlist = body
	}
	return out
}

func (t *tree) resolve(path string) (*treeNode, error) {
	id, ok := t.index[path]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "tree", "resolve",
			fmt.Sprintf("path %q", path), nil)
	}
	return t.nodes[id], nil
}

func (t *tree) resolveFolder(path, operation string) (*treeNode, error) {
	node, err := t.resolve(path)
	if err != nil {
		return nil, err
	}
	if node.kind != KindFolder {
		return nil, services.Wrap(services.ErrNotFound, "tree", operation,
			fmt.Sprintf("%q is not a folder", path), nil)
	}
	return node, nil
}

func (t *tree) resolvePlaylist(path, operation string) (*treeNode, error) {
	node, err := t.resolve(path)
	if err != nil {
		return nil, err
	}
	if node.kind != KindPlaylist {
		return nil, services.Wrap(services.ErrNotFound, "tree", operation,
			fmt.Sprintf("%q is not a playlist", path), nil)
	}
	return node, nil
}

func (t *tree) hasChildNamed(folder *treeNode, name string) bool {
	for _, childID := range folder.children {
		if t.nodes[childID].name == name {
			return true
		}
	}
	return false
}

func (t *tree) create(parentPath, name string, kind Kind, operation string) (*treeNode, error) {
	name = textutil.SanitizeName(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "tree", operation, "name must not be empty", nil)
	}
	parent, err := t.resolveFolder(parentPath, operation)
	if err != nil {
		return nil, err
	}
	if t.hasChildNamed(parent, name) {
		return nil, services.Wrap(services.ErrConflict, "tree", operation,
			fmt.Sprintf("%q already has a child named %q", parentPath, name), nil)
	}

	node := &treeNode{
		id:     t.next,
		kind:   kind,
		name:   name,
		path:   parent.path + "/" + name,
		depth:  parent.depth + 1,
		parent: parent.id,
	}
	t.next++
	t.nodes[node.id] = node
	t.index[node.path] = node.id
	parent.children = append(parent.children, node.id)
	return node, nil
}

// isDescendantOrSelf walks parent handles from candidate up to the root.
func (t *tree) isDescendantOrSelf(candidate, ancestor *treeNode) bool {
	for id := candidate.id; id != invalidNode; id = t.nodes[id].parent {
		if id == ancestor.id {
			return true
		}
	}
	return false
}

func (t *tree) move(sourcePath, targetFolderPath string) (*treeNode, error) {
	source, err := t.resolve(sourcePath)
	if err != nil {
		return nil, err
	}
	if source.id == t.root {
		return nil, services.Wrap(services.ErrInvalidOperation, "tree", "move", "cannot move the root", nil)
	}
	target, err := t.resolveFolder(targetFolderPath, "move")
	if err != nil {
		return nil, err
	}
	if t.isDescendantOrSelf(target, source) {
		return nil, services.Wrap(services.ErrInvalidOperation, "tree", "move",
			fmt.Sprintf("%q is inside %q", targetFolderPath, sourcePath), nil)
	}
	if target.id != source.parent && t.hasChildNamed(target, source.name) {
		return nil, services.Wrap(services.ErrConflict, "tree", "move",
			fmt.Sprintf("%q already has a child named %q", targetFolderPath, source.name), nil)
	}

	t.detach(source)
	source.parent = target.id
	target.children = append(target.children, source.id)
	t.reindex(source, target.path+"/"+source.name, target.depth+1)
	return source, nil
}

func (t *tree) rename(path, newName string) (*treeNode, error) {
	newName = textutil.SanitizeName(newName)
	if newName == "" {
		return nil, services.Wrap(services.ErrValidation, "tree", "rename", "name must not be empty", nil)
	}
	node, err := t.resolve(path)
	if err != nil {
		return nil, err
	}
	if node.id == t.root {
		return nil, services.Wrap(services.ErrInvalidOperation, "tree", "rename", "cannot rename the root", nil)
	}
	if node.name == newName {
		return node, nil
	}
	parent := t.nodes[node.parent]
	if t.hasChildNamed(parent, newName) {
		return nil, services.Wrap(services.ErrConflict, "tree", "rename",
			fmt.Sprintf("%q already has a child named %q", parent.path, newName), nil)
	}
	node.name = newName
	t.reindex(node, parent.path+"/"+newName, node.depth)
	return node, nil
}

func (t *tree) deleteNode(path string) (bool, error) {
	id, ok := t.index[path]
	if !ok {
		return false, nil
	}
	node := t.nodes[id]
	if node.id == t.root {
		return false, services.Wrap(services.ErrInvalidOperation, "tree", "delete", "cannot delete the root", nil)
	}
	t.detach(node)
	t.dropSubtree(node)
	return true, nil
}

func (t *tree) duplicate(sourcePath, targetFolderPath, name string) (*treeNode, error) {
	source, err := t.resolvePlaylist(sourcePath, "duplicate")
	if err != nil {
		return nil, err
	}
	target, err := t.resolveFolder(targetFolderPath, "duplicate")
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = t.availableName(target, source.name)
	} else {
		name = textutil.SanitizeName(name)
		if t.hasChildNamed(target, name) {
			return nil, services.Wrap(services.ErrConflict, "tree", "duplicate",
				fmt.Sprintf("%q already has a child named %q", targetFolderPath, name), nil)
		}
	}

	copyNode, err := t.create(target.path, name, KindPlaylist, "duplicate")
	if err != nil {
		return nil, err
	}
	copyNode.entries = make([]playlistEntry, len(source.entries))
	for i, entry := range source.entries {
		copyNode.entries[i] = playlistEntry{key: entry.key}
	}
	return copyNode, nil
}

// availableName returns base, or the first "base (n)" free under folder.
func (t *tree) availableName(folder *treeNode, base string) string {
	if !t.hasChildNamed(folder, base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", base, n)
		if !t.hasChildNamed(folder, candidate) {
			return candidate
		}
	}
}

func (t *tree) detach(node *treeNode) {
	parent := t.nodes[node.parent]
	for i, childID := range parent.children {
		if childID == node.id {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			return
		}
	}
}

// reindex rewrites path and depth for node and all its descendants.
func (t *tree) reindex(node *treeNode, newPath string, newDepth int) {
	delete(t.index, node.path)
	node.path = newPath
	node.depth = newDepth
	t.index[newPath] = node.id
	for _, childID := range node.children {
		child := t.nodes[childID]
		t.reindex(child, newPath+"/"+child.name, newDepth+1)
	}
}

func (t *tree) dropSubtree(node *treeNode) {
	for _, childID := range node.children {
		t.dropSubtree(t.nodes[childID])
	}
	delete(t.index, node.path)
	delete(t.nodes, node.id)
}

// playlists returns all playlist nodes in depth-first tree order.
func (t *tree) playlists() []*treeNode {
	var out []*treeNode
	var walk func(id nodeID)
	walk = func(id nodeID) {
		node := t.nodes[id]
		if node.kind == KindPlaylist {
			out = append(out, node)
			return
		}
		for _, childID := range node.children {
			walk(childID)
		}
	}
	walk(t.root)
	return out
}

// clone deep-copies the arena. MoveBatch validates against a clone so a
// failing batch leaves the live tree untouched.
func (t *tree) clone() *tree {
	cp := &tree{
		nodes: make(map[nodeID]*treeNode, len(t.nodes)),
		index: make(map[string]nodeID, len(t.index)),
		root:  t.root,
		next:  t.next,
	}
	for id, node := range t.nodes {
		dup := *node
		dup.children = append([]nodeID(nil), node.children...)
		dup.entries = append([]playlistEntry(nil), node.entries...)
		cp.nodes[id] = &dup
	}
	for path, id := range t.index {
		cp.index[path] = id
	}
	return cp
}

func (t *tree) snapshot(node *treeNode, recursive bool) *Node {
	out := &Node{
		Path:  node.path,
		Name:  node.name,
		Depth: node.depth,
		Kind:  node.kind,
	}
	if node.parent != invalidNode {
		out.ParentPath = t.nodes[node.parent].path
	}
	switch node.kind {
	case KindPlaylist:
		out.TrackKeys = make([]string, 0, len(node.entries))
		for _, entry := range node.entries {
			out.TrackKeys = append(out.TrackKeys, entry.key)
		}
	case KindFolder:
		if recursive {
			out.Children = make([]*Node, 0, len(node.children))
			for _, childID := range node.children {
				out.Children = append(out.Children, t.snapshot(t.nodes[childID], true))
			}
		}
	}
	return out
}

// pathSet returns every indexed path, for shape comparisons in tests.
func (t *tree) pathSet() map[string]struct{} {
	out := make(map[string]struct{}, len(t.index))
	for path := range t.index {
		out[path] = struct{}{}
	}
	return out
}
