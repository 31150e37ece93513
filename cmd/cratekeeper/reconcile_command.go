package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"cratekeeper/internal/collection"
	"cratekeeper/internal/reconcile"
	"cratekeeper/internal/services"
	"cratekeeper/internal/services/plex"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	var tracksJSON string
	var usePlex bool
	var threshold float64

	cmd := &cobra.Command{
		Use:   "reconcile <collection.nml> <playlist-path>",
		Short: "Compare a playlist against an external track list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read collection: %w", err)
			}
			doc, err := collection.Load(data)
			if err != nil {
				return err
			}
			source, err := playlistTracks(doc, args[1])
			if err != nil {
				return err
			}

			var target []reconcile.Track
			switch {
			case tracksJSON != "":
				payload, err := os.ReadFile(tracksJSON)
				if err != nil {
					return fmt.Errorf("read target tracks: %w", err)
				}
				if err := json.Unmarshal(payload, &target); err != nil {
					return fmt.Errorf("parse target tracks: %w", err)
				}
			case usePlex:
				client, err := plex.NewClient(cfg)
				if err != nil {
					return err
				}
				target, err = client.ListTracks(cmd.Context())
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("supply a target with --tracks-json or --plex")
			}

			if threshold <= 0 {
				threshold = cfg.Reconcile.ThresholdPercent
			}
			result := reconcile.CompareTracks(source, target, threshold)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Matched %d of %d (target has %d, %d unmatched there)\n\n",
				result.Stats.MatchedCount, result.Stats.SourceCount,
				result.Stats.TargetCount, result.Stats.MissingFromSource)

			if len(result.Matched) > 0 {
				rows := make([][]string, 0, len(result.Matched))
				for _, match := range result.Matched {
					rows = append(rows, []string{
						match.Source.Artist + " - " + match.Source.Title,
						match.Target.Artist + " - " + match.Target.Title,
						strconv.FormatFloat(match.Score, 'f', 1, 64),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Playlist track", "Matched to", "Score"}, rows, 3))
			}

			if len(result.MissingFromTarget) > 0 {
				fmt.Fprintln(out)
				rows := make([][]string, 0, len(result.MissingFromTarget))
				for _, track := range result.MissingFromTarget {
					rows = append(rows, []string{track.Artist, track.Title})
				}
				fmt.Fprintln(out, renderTable([]string{"Missing artist", "Missing title"}, rows))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tracksJSON, "tracks-json", "", "JSON file with the target track list")
	cmd.Flags().BoolVar(&usePlex, "plex", false, "Reconcile against the configured Plex music library")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Match threshold percent (defaults to configuration)")
	return cmd
}

// playlistTracks projects a playlist into comparison tracks keyed by track key.
func playlistTracks(doc *collection.Document, playlistPath string) ([]reconcile.Track, error) {
	node, err := doc.Resolve(playlistPath)
	if err != nil {
		return nil, err
	}
	if node.Kind != collection.KindPlaylist {
		return nil, services.Wrap(services.ErrInvalidOperation, "cli", "reconcile",
			"reconcile target must be a playlist", nil)
	}

	tracks := make([]reconcile.Track, 0, len(node.TrackKeys))
	for _, key := range node.TrackKeys {
		record, err := doc.Tracks().Get(key)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, reconcile.Track{
			ID:     record.Key,
			Artist: record.Artist,
			Title:  record.Title,
			Album:  record.Album,
		})
	}
	return tracks, nil
}
