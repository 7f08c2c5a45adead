package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/grovevc/grove/pkg/store"
)

var importCmd = &cobra.Command{
	Use:   "import SNAPSHOT",
	Short: "Import a repository snapshot",
	Long:  `Import a YAML snapshot describing commits, file trees and conflicts into the repository store. The snapshot's working_copy field selects the working-copy commit.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		data, err := os.ReadFile(args[0])
		if err != nil {
			DieFmt("read snapshot: %s", err)
		}
		s, err := store.OpenPebble(cfg.Repository.Path)
		if err != nil {
			DieFmt("open repository at %q: %s", cfg.Repository.Path, err)
		}
		defer func() { _ = s.Close() }()
		workingCopy, err := store.ImportSnapshot(ctx, s, data)
		if err != nil {
			DieFmt("import snapshot: %s", err)
		}
		Fmt("Working copy now at: %s\n", workingCopy)
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(importCmd)
}
