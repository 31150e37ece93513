package collection

// ComputeOrphans creates a new playlist under targetFolderPath containing
// every track referenced by no playlist in the tree, in store iteration
// order. An empty name defaults to "Orphans", suffixed on collision.
func (d *Document) ComputeOrphans(targetFolderPath, name string) (*Node, error) {
	target, err := d.tree.resolveFolder(targetFolderPath, "compute orphans")
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]struct{})
	for _, playlist := range d.tree.playlists() {
		for _, entry := range playlist.entries {
			referenced[entry.key] = struct{}{}
		}
	}

	var orphans []string
	for _, record := range d.store.All() {
		if _, ok := referenced[record.Key]; !ok {
			orphans = append(orphans, record.Key)
		}
	}

	if name == "" {
		name = d.tree.availableName(target, "Orphans")
	}
	node, err := d.tree.create(target.path, name, KindPlaylist, "compute orphans")
	if err != nil {
		return nil, err
	}
	node.entries = make([]playlistEntry, len(orphans))
	for i, key := range orphans {
		node.entries[i] = playlistEntry{key: key}
	}
	return d.tree.snapshot(node, false), nil
}

// ComputeReleaseCompanion creates a playlist of every track sharing an album
// with tracks of the source playlist but not itself in the source playlist.
// Tracks with an empty album never match each other.
func (d *Document) ComputeReleaseCompanion(sourcePath, targetFolderPath, name string) (*Node, error) {
	source, err := d.tree.resolvePlaylist(sourcePath, "release companion")
	if err != nil {
		return nil, err
	}
	target, err := d.tree.resolveFolder(targetFolderPath, "release companion")
	if err != nil {
		return nil, err
	}

	inSource := make(map[string]struct{}, len(source.entries))
	albums := make(map[string]struct{})
	for _, entry := range source.entries {
		inSource[entry.key] = struct{}{}
		record, err := d.store.Get(entry.key)
		if err != nil {
			return nil, err
		}
		if record.Album != "" {
			albums[record.Album] = struct{}{}
		}
	}

	var companions []string
	for _, record := range d.store.All() {
		if record.Album == "" {
			continue
		}
		if _, ok := albums[record.Album]; !ok {
			continue
		}
		if _, ok := inSource[record.Key]; ok {
			continue
		}
		companions = append(companions, record.Key)
	}

	if name == "" {
		name = d.tree.availableName(target, source.name+" Companion")
	}
	node, err := d.tree.create(target.path, name, KindPlaylist, "release companion")
	if err != nil {
		return nil, err
	}
	node.entries = make([]playlistEntry, len(companions))
	for i, key := range companions {
		node.entries[i] = playlistEntry{key: key}
	}
	return d.tree.snapshot(node, false), nil
}
