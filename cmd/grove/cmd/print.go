package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/grovevc/grove/pkg/conflict"
	"github.com/grovevc/grove/pkg/graph"
)

var printCmd = &cobra.Command{
	Use:   "print PATH",
	Short: "Print the contents of a file in a revision",
	Long:  `Print a file as stored in the selected revision. Unresolved conflicts are materialized with conflict markers.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		path := args[0]
		revisions, _ := cmd.Flags().GetString("revisions")

		repo := openRepository(ctx)
		defer repo.Close()

		record := resolveSingleRevision(cmd, repo, revisions)
		tree, err := repo.store.GetTree(ctx, record.TreeID)
		if err != nil {
			DieErr(err)
		}
		entry, ok := tree.Lookup(path)
		if !ok {
			if tree.HasDirectory(path) {
				Die("Path exists but is not a file", CodeError)
			}
			Die("No such path", CodeError)
		}

		var content []byte
		if entry.IsConflict() {
			c, err := repo.store.GetConflict(ctx, entry.Conflict)
			if err != nil {
				DieErr(err)
			}
			content, err = conflict.Materialize(c)
			if err != nil {
				DieErr(err)
			}
		} else {
			content, err = repo.store.GetBlob(ctx, entry.Blob)
			if err != nil {
				DieErr(err)
			}
		}
		if _, err := os.Stdout.Write(content); err != nil && !isBrokenSink(err) {
			DieErr(err)
		}
	},
}

// resolveSingleRevision evaluates a revset that must select exactly one
// commit.
func resolveSingleRevision(cmd *cobra.Command, repo *repository, revisions string) *graph.CommitRecord {
	result, err := repo.evaluator.Evaluate(cmd.Context(), revisions)
	if err != nil {
		DieErr(err)
	}
	ids := result.IDs()
	switch len(ids) {
	case 0:
		DieFmt("revset %q didn't resolve to any revisions", revisions)
	case 1:
	default:
		DieFmt("revset %q resolved to more than one revision", revisions)
	}
	record, err := repo.index.Get(ids[0])
	if err != nil {
		DieErr(err)
	}
	return record
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(printCmd)
	printCmd.Flags().StringP("revisions", "r", "@", "revision to print from")
}
