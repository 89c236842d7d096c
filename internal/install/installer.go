package install

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/profilekit-labs/profilekit/internal/merge"
)

// ConflictError reports a file the bundle wants to write that already
// exists in the target but was not installed by a prior run. Unrelated
// files are never overwritten.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("refusing to overwrite %s: file exists but is not managed by a prior install", e.Path)
}

// Install writes the bundle into targetDir and returns the manifest of
// managed files. The write is all-or-nothing: on any error the target is
// restored byte-identical to its pre-install state. Installing the same
// bundle twice is a no-op for files whose content is unchanged.
func Install(b *merge.Bundle, targetDir string) (*Manifest, error) {
	files, err := renderBundle(b)
	if err != nil {
		return nil, err
	}

	prior, err := LoadManifest(targetDir)
	if err != nil {
		return nil, err
	}

	rels := make([]string, 0, len(files))
	for rel := range files {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	// Conflict check before any mutation.
	for _, rel := range rels {
		dst := filepath.Join(targetDir, filepath.FromSlash(rel))
		if info, statErr := os.Stat(dst); statErr == nil && !info.IsDir() {
			if !prior.Managed(rel) {
				return nil, &ConflictError{Path: rel}
			}
		}
	}

	next := &Manifest{Profiles: append([]string(nil), b.Profiles...)}
	for _, rel := range rels {
		next.Files = append(next.Files, ManagedFile{Path: rel, SHA256: hashBytes(files[rel].data)})
	}
	manifestData, err := next.Encode()
	if err != nil {
		return nil, err
	}

	tx, err := beginTransaction(targetDir)
	if err != nil {
		return nil, err
	}

	// Stage the complete bundle before touching the target.
	for _, rel := range rels {
		entry := files[rel]
		if err := tx.stage(rel, entry.data, entry.mode); err != nil {
			tx.rollback()
			return nil, err
		}
	}
	if err := tx.stage(filepath.Base(ManifestPath(targetDir)), manifestData, 0644); err != nil {
		tx.rollback()
		return nil, err
	}

	// Commit: move staged files into place, backing up what they replace.
	for _, rel := range rels {
		entry := files[rel]
		if err := tx.place(rel, hashBytes(entry.data), entry.mode); err != nil {
			tx.rollback()
			return nil, err
		}
	}

	// Remove files a prior run installed that the new bundle no longer has.
	var stale []string
	for _, f := range prior.Files {
		if _, ok := files[f.Path]; !ok {
			stale = append(stale, f.Path)
		}
	}
	sort.Strings(stale)
	for _, rel := range stale {
		if err := tx.remove(rel); err != nil {
			tx.rollback()
			return nil, err
		}
	}

	if err := tx.place(filepath.Base(ManifestPath(targetDir)), hashBytes(manifestData), 0644); err != nil {
		tx.rollback()
		return nil, err
	}

	tx.commit()
	pruneEmptyDirs(targetDir, stale)
	return next, nil
}

// Uninstall removes every file the prior install manifest lists, plus the
// manifest itself, and prunes directories that emptied out. It returns
// the removed relative paths.
func Uninstall(targetDir string) ([]string, error) {
	m, err := LoadManifest(targetDir)
	if err != nil {
		return nil, err
	}
	if len(m.Files) == 0 {
		return nil, nil
	}

	var removed []string
	for _, f := range m.Files {
		dst := filepath.Join(targetDir, filepath.FromSlash(f.Path))
		if err := os.Remove(dst); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("removing %s: %w", f.Path, err)
		}
		removed = append(removed, f.Path)
	}

	if err := os.Remove(ManifestPath(targetDir)); err != nil && !os.IsNotExist(err) {
		return removed, fmt.Errorf("removing install manifest: %w", err)
	}

	rels := make([]string, len(m.Files))
	for i, f := range m.Files {
		rels[i] = f.Path
	}
	pruneEmptyDirs(targetDir, rels)
	sort.Strings(removed)
	return removed, nil
}

// pruneEmptyDirs removes now-empty parent directories of the given
// relative paths. Removal is best-effort and stops at the target root.
func pruneEmptyDirs(targetDir string, rels []string) {
	seen := make(map[string]bool)
	for _, rel := range rels {
		dir := filepath.Dir(filepath.FromSlash(rel))
		for dir != "." && dir != string(filepath.Separator) && !seen[dir] {
			seen[dir] = true
			dir = filepath.Dir(dir)
		}
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	// Deepest first so nested empties cascade.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	for _, dir := range dirs {
		// Remove fails on non-empty directories, which is exactly the
		// behavior wanted here.
		_ = os.Remove(filepath.Join(targetDir, dir))
	}
}
