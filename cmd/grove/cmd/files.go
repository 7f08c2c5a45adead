package cmd

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List files in a revision",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		revisions, _ := cmd.Flags().GetString("revisions")

		repo := openRepository(ctx)
		defer repo.Close()

		record := resolveSingleRevision(cmd, repo, revisions)
		tree, err := repo.store.GetTree(ctx, record.TreeID)
		if err != nil {
			DieErr(err)
		}
		rows := make([][]interface{}, 0, len(tree.Entries))
		for _, entry := range tree.Entries {
			if entry.IsConflict() {
				rows = append(rows, []interface{}{entry.Path, "(conflict)"})
				continue
			}
			content, err := repo.store.GetBlob(ctx, entry.Blob)
			if err != nil {
				DieErr(err)
			}
			rows = append(rows, []interface{}{entry.Path, humanize.Bytes(uint64(len(content)))})
		}
		PrintTable(rows, []interface{}{"Path", "Size"})
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(filesCmd)
	filesCmd.Flags().StringP("revisions", "r", "@", "revision to list files from")
}
