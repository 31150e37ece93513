package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"cratekeeper/internal/collection"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var showTags bool
	var showComments bool

	cmd := &cobra.Command{
		Use:         "inspect <collection.nml>",
		Short:       "Summarize a collection file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read collection: %w", err)
			}
			doc, err := collection.Load(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			folders, playlists := countNodes(doc.Root())
			fmt.Fprintf(out, "Tracks: %d  Folders: %d  Playlists: %d\n\n",
				doc.Tracks().Len(), folders, playlists)

			var rows [][]string
			walkPlaylists(doc.Root(), func(node *collection.Node) {
				rows = append(rows, []string{node.Path, strconv.Itoa(len(node.TrackKeys))})
			})
			fmt.Fprintln(out, renderTable([]string{"Playlist", "Tracks"}, rows, 2))

			if showTags {
				fmt.Fprintln(out)
				printMinedTags(cmd, doc)
			}
			if showComments {
				fmt.Fprintln(out)
				printCommentCategories(cmd, doc)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTags, "tags", false, "Show style words mined from playlist names")
	cmd.Flags().BoolVar(&showComments, "comments", false, "Show comment category breakdown")
	return cmd
}

func countNodes(node *collection.Node) (folders, playlists int) {
	for _, child := range node.Children {
		if child.Kind == collection.KindFolder {
			folders++
			f, p := countNodes(child)
			folders += f
			playlists += p
		} else {
			playlists++
		}
	}
	return folders, playlists
}

func walkPlaylists(node *collection.Node, fn func(*collection.Node)) {
	for _, child := range node.Children {
		if child.Kind == collection.KindPlaylist {
			fn(child)
			continue
		}
		walkPlaylists(child, fn)
	}
}

func printMinedTags(cmd *cobra.Command, doc *collection.Document) {
	mined := doc.MineTags()
	tags := make([]string, 0, len(mined))
	for tag := range mined {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if mined[tags[i]].Count != mined[tags[j]].Count {
			return mined[tags[i]].Count > mined[tags[j]].Count
		}
		return tags[i] < tags[j]
	})

	rows := make([][]string, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, []string{tag, strconv.Itoa(mined[tag].Count)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Style word", "Playlists"}, rows, 2))
}

func printCommentCategories(cmd *cobra.Command, doc *collection.Document) {
	categories := doc.ClassifyComments()
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, string(name))
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strconv.Itoa(len(categories[collection.CommentCategory(name)]))})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Category", "Comments"}, rows, 2))
}
