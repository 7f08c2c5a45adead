package store

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/grovevc/grove/pkg/conflict"
	"github.com/grovevc/grove/pkg/graph"
)

// Snapshot is the human-written YAML form of a repository, imported into a
// store with ImportSnapshot. Commits reference each other by symbolic name;
// content-derived identifiers are computed on import.
type Snapshot struct {
	WorkingCopy string           `yaml:"working_copy"`
	Commits     []SnapshotCommit `yaml:"commits"`
}

type SnapshotCommit struct {
	Name        string                    `yaml:"name"`
	ChangeID    string                    `yaml:"change_id"`
	Description string                    `yaml:"description"`
	Parents     []string                  `yaml:"parents"`
	Author      *SnapshotSignature        `yaml:"author"`
	Committer   *SnapshotSignature        `yaml:"committer"`
	Files       map[string]string         `yaml:"files"`
	Conflicts   map[string][]SnapshotTerm `yaml:"conflicts"`
}

type SnapshotSignature struct {
	Name  string    `yaml:"name"`
	Email string    `yaml:"email"`
	When  time.Time `yaml:"when"`
}

type SnapshotTerm struct {
	Absent  bool   `yaml:"absent"`
	Content string `yaml:"content"`
}

func (s *SnapshotSignature) toSignature() graph.Signature {
	if s == nil {
		return graph.Signature{When: time.Unix(0, 0).UTC()}
	}
	sig := graph.Signature{Name: s.Name, Email: s.Email, When: s.When}
	if sig.When.IsZero() {
		sig.When = time.Unix(0, 0).UTC()
	}
	return sig
}

// ImportSnapshot loads a YAML snapshot into w and returns the working-copy
// commit id. Missing change ids are minted.
func ImportSnapshot(ctx context.Context, w Writer, data []byte) (graph.CommitID, error) {
	var snapshot Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return "", fmt.Errorf("decode snapshot: %w", err)
	}
	idByName := make(map[string]graph.CommitID, len(snapshot.Commits))
	for _, sc := range snapshot.Commits {
		if sc.Name == "" {
			return "", fmt.Errorf("snapshot commit without a name")
		}
		if _, ok := idByName[sc.Name]; ok {
			return "", fmt.Errorf("duplicate snapshot commit name %q", sc.Name)
		}

		var entries []TreeEntry
		for path, content := range sc.Files {
			blobID, err := w.PutBlob(ctx, []byte(content))
			if err != nil {
				return "", err
			}
			entries = append(entries, TreeEntry{Path: path, Blob: blobID})
		}
		for path, terms := range sc.Conflicts {
			c := &conflict.Conflict{}
			for _, term := range terms {
				c.Terms = append(c.Terms, conflict.Term{Absent: term.Absent, Content: []byte(term.Content)})
			}
			conflictID, err := w.PutConflict(ctx, c)
			if err != nil {
				return "", fmt.Errorf("conflict at %q in %q: %w", path, sc.Name, err)
			}
			entries = append(entries, TreeEntry{Path: path, Conflict: conflictID})
		}
		treeID, err := w.PutTree(ctx, NewTree(entries))
		if err != nil {
			return "", err
		}

		var parents graph.CommitParents
		for _, parentName := range sc.Parents {
			parentID, ok := idByName[parentName]
			if !ok {
				return "", fmt.Errorf("commit %q references unknown parent %q", sc.Name, parentName)
			}
			parents = append(parents, parentID)
		}

		changeID := graph.ChangeID(sc.ChangeID)
		if changeID == "" {
			changeID = graph.NewChangeID()
		}
		author := sc.Author.toSignature()
		committer := sc.Committer
		if committer == nil {
			committer = sc.Author
		}
		commit := &graph.Commit{
			ChangeID:    changeID,
			Parents:     parents,
			Description: sc.Description,
			Author:      author,
			Committer:   committer.toSignature(),
			TreeID:      treeID,
		}
		record := &graph.CommitRecord{CommitID: commit.ID(), Commit: commit}
		if err := w.AddCommit(ctx, record); err != nil {
			return "", err
		}
		idByName[sc.Name] = record.CommitID
	}

	workingCopy, ok := idByName[snapshot.WorkingCopy]
	if !ok {
		return "", fmt.Errorf("working_copy %q does not name a snapshot commit", snapshot.WorkingCopy)
	}
	if err := w.SetWorkingCopy(ctx, workingCopy); err != nil {
		return "", err
	}
	return workingCopy, nil
}
