package collection

import (
	"fmt"

	"cratekeeper/internal/services"
)

// MergeOp folds redundant duplicates of one track into a master record.
type MergeOp struct {
	MasterKey     string   `json:"masterKey"`
	RedundantKeys []string `json:"redundantKeys"`
}

// MergeResult reports how many redundant records a merge removed.
type MergeResult struct {
	MergedCount int `json:"mergedCount"`
}

// MergeDuplicates rewrites every playlist reference to a redundant key onto
// the op's master key, in place and order-preserving, then removes the
// redundant records from the store. The whole batch is validated before any
// mutation. A playlist that ends up listing the master twice keeps both
// entries; collapsing them is a separate decision the caller owns.
func (d *Document) MergeDuplicates(ops []MergeOp) (MergeResult, error) {
	if len(ops) == 0 {
		return MergeResult{}, services.Wrap(services.ErrValidation, "merge", "duplicates", "empty batch", nil)
	}

	// Validation simulates the removals op by op: a key consumed by an
	// earlier op no longer exists for later ones, so a master referencing it
	// would leave playlists pointing at a removed record.
	removed := make(map[string]struct{})
	for _, op := range ops {
		if _, gone := removed[op.MasterKey]; gone {
			return MergeResult{}, services.Wrap(services.ErrConflict, "merge", "duplicates",
				fmt.Sprintf("master %q removed by an earlier merge in this batch", op.MasterKey), nil)
		}
		if !d.store.Has(op.MasterKey) {
			return MergeResult{}, services.Wrap(services.ErrNotFound, "merge", "duplicates",
				fmt.Sprintf("master track %q", op.MasterKey), nil)
		}
		if len(op.RedundantKeys) == 0 {
			return MergeResult{}, services.Wrap(services.ErrValidation, "merge", "duplicates",
				fmt.Sprintf("no redundant keys for master %q", op.MasterKey), nil)
		}
		for _, key := range op.RedundantKeys {
			if key == op.MasterKey {
				return MergeResult{}, services.Wrap(services.ErrConflict, "merge", "duplicates",
					fmt.Sprintf("master %q listed as its own duplicate", op.MasterKey), nil)
			}
			if _, gone := removed[key]; gone {
				return MergeResult{}, services.Wrap(services.ErrNotFound, "merge", "duplicates",
					fmt.Sprintf("redundant track %q already removed in this batch", key), nil)
			}
			if !d.store.Has(key) {
				return MergeResult{}, services.Wrap(services.ErrNotFound, "merge", "duplicates",
					fmt.Sprintf("redundant track %q", key), nil)
			}
			removed[key] = struct{}{}
		}
	}

	var result MergeResult
	for _, op := range ops {
		redundant := make(map[string]struct{}, len(op.RedundantKeys))
		for _, key := range op.RedundantKeys {
			redundant[key] = struct{}{}
		}

		for _, playlist := range d.tree.playlists() {
			for i := range playlist.entries {
				if _, ok := redundant[playlist.entries[i].key]; ok {
					playlist.entries[i].key = op.MasterKey
				}
			}
		}

		for _, key := range op.RedundantKeys {
			if err := d.store.Remove(key); err != nil {
				return result, err
			}
			result.MergedCount++
		}
	}
	return result, nil
}
