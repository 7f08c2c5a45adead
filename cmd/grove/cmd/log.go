package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovevc/grove/pkg/diff"
	"github.com/grovevc/grove/pkg/graph"
	"github.com/grovevc/grove/pkg/render"
	"github.com/grovevc/grove/pkg/revset"
	"github.com/grovevc/grove/pkg/store"
	"github.com/grovevc/grove/pkg/template"
)

const defaultLogTemplate = `change_id.short(12) " " description.first_line()`

// noDescriptionPlaceholder replaces an empty rendered description
const noDescriptionPlaceholder = "(no description set)"

var logCmd = &cobra.Command{
	Use:   "log [PATH...]",
	Short: "Show commit history",
	Long:  `Show the commits selected by a revset, laid out as a graph. Positional PATH arguments narrow the selection to commits touching those paths.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		revisions, _ := cmd.Flags().GetString("revisions")
		templateSrc, _ := cmd.Flags().GetString("template")
		patch, _ := cmd.Flags().GetBool("patch")
		summary, _ := cmd.Flags().GetBool("summary")
		gitFormat, _ := cmd.Flags().GetBool("git")
		noGraph, _ := cmd.Flags().GetBool("no-graph")
		reversed, _ := cmd.Flags().GetBool("reversed")
		explicitRevset := cmd.Flags().Changed("revisions")

		if explicitRevset && revisions == "" {
			Die("the argument '--revisions <REVSET>' requires a value but none was supplied", CodeUsage)
		}
		if !explicitRevset {
			warnPathArgs(args)
			if revisions == "" {
				revisions = cfg.UI.DefaultRevset
			}
		}
		if templateSrc == "" {
			templateSrc = defaultLogTemplate
		}
		tpl, err := template.Parse(templateSrc)
		if err != nil {
			DieErr(err)
		}
		filter, err := diff.NewPathFilter(args)
		if err != nil {
			DieErr(err)
		}

		repo := openRepository(ctx)
		defer repo.Close()

		result, err := repo.evaluator.Evaluate(ctx, revisions)
		if err != nil {
			DieErr(err)
		}
		result, err = repo.evaluator.FilterPaths(ctx, result, args)
		if err != nil {
			DieErr(err)
		}

		opts := logOptions{
			showDiff:  patch || summary || gitFormat,
			summary:   summary,
			gitFormat: gitFormat,
			noGraph:   noGraph,
			reversed:  reversed,
			filter:    filter,
		}
		if err := runLog(ctx, repo, result, tpl, opts); err != nil {
			if isBrokenSink(err) {
				return
			}
			DieErr(err)
		}
	},
}

type logOptions struct {
	showDiff  bool
	summary   bool
	gitFormat bool
	noGraph   bool
	reversed  bool
	filter    *diff.PathFilter
}

func runLog(ctx context.Context, repo *repository, result *revset.Result, tpl *template.Template, opts logOptions) error {
	ids := result.IDs()
	if opts.reversed {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}
	renderer := render.NewRenderer(os.Stdout)
	for _, id := range ids {
		record, err := repo.index.Get(id)
		if err != nil {
			return err
		}
		lines, err := commitLines(ctx, repo, record, tpl, opts)
		if err != nil {
			return err
		}
		if opts.noGraph {
			if err := renderer.WriteLines(lines); err != nil {
				return err
			}
			continue
		}
		node := render.Node{
			ID:    record.CommitID,
			Glyph: render.GlyphCommit,
			Edges: logEdges(repo, result, record, opts.reversed),
			Lines: lines,
		}
		if record.CommitID == repo.workingCopy {
			node.Glyph = render.GlyphWorkingCopy
		}
		if err := renderer.WriteNode(node); err != nil {
			return err
		}
	}
	return nil
}

// logEdges lists the node's outgoing display edges: parents in default order,
// in-set children when reversed. A filtered-out parent becomes an elided
// lineage; reversed rendering has no elision since history always starts at
// the root.
func logEdges(repo *repository, result *revset.Result, record *graph.CommitRecord, reversed bool) []render.Edge {
	var edges []render.Edge
	if reversed {
		for _, child := range repo.index.Children(record.CommitID) {
			if result.Contains(child) {
				edges = append(edges, render.Edge{Target: child})
			}
		}
		return edges
	}
	for _, parent := range record.Parents {
		edges = append(edges, render.Edge{Target: parent, Elide: !result.Contains(parent)})
	}
	return edges
}

func commitLines(ctx context.Context, repo *repository, record *graph.CommitRecord, tpl *template.Template, opts logOptions) ([]string, error) {
	out, err := tpl.Eval(template.CommitContext{Record: record})
	if err != nil {
		return nil, err
	}
	if out == "" {
		out = noDescriptionPlaceholder
	}
	lines := splitOutput(out)
	if !opts.showDiff {
		return lines, nil
	}
	diffLines, err := commitDiffLines(ctx, repo, record, opts)
	if err != nil {
		return nil, err
	}
	return append(lines, diffLines...), nil
}

// commitDiffLines renders the commit's change against its first parent
func commitDiffLines(ctx context.Context, repo *repository, record *graph.CommitRecord, opts logOptions) ([]string, error) {
	left := store.EmptyTree()
	if len(record.Parents) > 0 {
		parent, err := repo.index.Get(record.Parents[0])
		if err != nil {
			return nil, err
		}
		left, err = repo.store.GetTree(ctx, parent.TreeID)
		if err != nil {
			return nil, err
		}
	}
	right, err := repo.store.GetTree(ctx, record.TreeID)
	if err != nil {
		return nil, err
	}
	entries := diff.TreeDiff(left, right, opts.filter)
	switch {
	case opts.gitFormat:
		return diff.GitPatchLines(ctx, repo.store, entries)
	case opts.summary:
		return diff.StatusLines(entries), nil
	default:
		return diff.SummaryLines(ctx, repo.store, entries)
	}
}

// splitOutput breaks rendered template output into display lines, dropping a
// single trailing newline
func splitOutput(out string) []string {
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

// warnPathArgs flags positional arguments that were probably meant as
// revsets. A path that exists on disk is taken at face value; an explicit -r
// suppresses the warning entirely.
func warnPathArgs(args []string) {
	for _, arg := range args {
		if arg == "." {
			Warning(`The argument "." is being interpreted as a path, but this is often not useful because all non-empty commits touch '.'.  If you meant to show the working copy commit, pass -r '@' instead.`)
			continue
		}
		if _, err := os.Stat(arg); err == nil {
			continue
		}
		Warning(fmt.Sprintf("The argument %q is being interpreted as a path. To specify a revset, pass -r %q instead.", arg, arg))
	}
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().StringP("revisions", "r", "", "revset to select commits")
	logCmd.Flags().StringP("template", "T", "", "template for rendering each commit")
	logCmd.Flags().BoolP("patch", "p", false, "show the change each commit makes")
	logCmd.Flags().BoolP("summary", "s", false, "show a per-path status summary instead of content")
	logCmd.Flags().Bool("git", false, "show changes in git patch format")
	logCmd.Flags().Bool("no-graph", false, "emit plain text blocks without the graph")
	logCmd.Flags().Bool("reversed", false, "show oldest commits first")
}
