package install

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/profilekit-labs/profilekit/internal/platform"
)

// transaction tracks every mutation of one install run so a failure at
// any point can be undone exactly. Staging and backup directories live
// next to the target so renames stay on one filesystem.
type transaction struct {
	targetDir string
	stageDir  string
	backupDir string

	createdTarget bool
	created       []string          // files created, in commit order
	replaced      map[string]string // destination -> backup copy
	createdDirs   []string          // directories created, in creation order
	backupSeq     int
}

// beginTransaction prepares staging and backup areas for targetDir,
// creating the target itself when missing.
func beginTransaction(targetDir string) (*transaction, error) {
	abs, err := filepath.Abs(targetDir)
	if err != nil {
		return nil, fmt.Errorf("resolving target directory: %w", err)
	}

	tx := &transaction{
		targetDir: abs,
		replaced:  make(map[string]string),
	}

	if _, err := os.Stat(abs); os.IsNotExist(err) {
		if err := os.MkdirAll(abs, 0755); err != nil {
			return nil, fmt.Errorf("creating target directory %s: %w", targetDir, err)
		}
		tx.createdTarget = true
	}

	parent := filepath.Dir(abs)
	tx.stageDir, err = os.MkdirTemp(parent, ".stage-")
	if err != nil {
		tx.rollback()
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	tx.backupDir, err = os.MkdirTemp(parent, ".backup-")
	if err != nil {
		tx.rollback()
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	return tx, nil
}

// stage writes a file into the staging area.
func (tx *transaction) stage(rel string, data []byte, mode os.FileMode) error {
	path := filepath.Join(tx.stageDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("staging %s: %w", rel, err)
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("staging %s: %w", rel, err)
	}
	// WriteFile's mode is narrowed by the process umask; restore the
	// exact bits so reinstalls see matching modes.
	if err := platform.Chmod(path, mode); err != nil {
		return fmt.Errorf("staging %s: %w", rel, err)
	}
	return nil
}

// place moves a staged file into the target, backing up any file it
// replaces. A destination that already holds the wanted content with the
// wanted mode is left untouched, which makes reinstalls idempotent.
func (tx *transaction) place(rel, wantHash string, mode os.FileMode) error {
	src := filepath.Join(tx.stageDir, filepath.FromSlash(rel))
	dst := filepath.Join(tx.targetDir, filepath.FromSlash(rel))

	if info, err := os.Stat(dst); err == nil && !info.IsDir() {
		if data, readErr := os.ReadFile(dst); readErr == nil &&
			hashBytes(data) == wantHash && sameMode(info.Mode(), mode) {
			return nil
		}
	}

	if err := tx.mkdirTracked(filepath.Dir(dst)); err != nil {
		return fmt.Errorf("installing %s: %w", rel, err)
	}

	if _, err := os.Stat(dst); err == nil {
		if err := tx.backup(dst); err != nil {
			return fmt.Errorf("installing %s: %w", rel, err)
		}
	} else {
		tx.created = append(tx.created, dst)
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("installing %s: %w", rel, err)
	}
	return nil
}

// remove moves a managed file out of the target into the backup area.
func (tx *transaction) remove(rel string) error {
	dst := filepath.Join(tx.targetDir, filepath.FromSlash(rel))
	if _, err := os.Stat(dst); os.IsNotExist(err) {
		return nil
	}
	if err := tx.backup(dst); err != nil {
		return fmt.Errorf("removing stale %s: %w", rel, err)
	}
	return nil
}

// backup renames dst into the backup area and records the mapping.
func (tx *transaction) backup(dst string) error {
	tx.backupSeq++
	bk := filepath.Join(tx.backupDir, fmt.Sprintf("f%04d", tx.backupSeq))
	if err := os.Rename(dst, bk); err != nil {
		return err
	}
	tx.replaced[dst] = bk
	return nil
}

// mkdirTracked creates dir and its missing parents, recording each level
// so rollback can remove them again.
func (tx *transaction) mkdirTracked(dir string) error {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if d == tx.targetDir || d == "." || d == string(filepath.Separator) {
			break
		}
		if _, err := os.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
	}
	if len(missing) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	// Shallowest first so rollback (which iterates in reverse) removes
	// deepest first.
	for i := len(missing) - 1; i >= 0; i-- {
		tx.createdDirs = append(tx.createdDirs, missing[i])
	}
	return nil
}

// rollback undoes every recorded mutation, leaving the target directory
// byte-identical to its pre-install state.
func (tx *transaction) rollback() {
	for i := len(tx.created) - 1; i >= 0; i-- {
		_ = os.Remove(tx.created[i])
	}
	for dst, bk := range tx.replaced {
		_ = os.Rename(bk, dst)
	}
	for i := len(tx.createdDirs) - 1; i >= 0; i-- {
		_ = os.Remove(tx.createdDirs[i])
	}
	if tx.createdTarget {
		_ = os.Remove(tx.targetDir)
	}
	tx.discard()
}

// commit finalizes the transaction, dropping staged leftovers and backups.
func (tx *transaction) commit() {
	tx.discard()
}

func (tx *transaction) discard() {
	if tx.stageDir != "" {
		_ = os.RemoveAll(tx.stageDir)
	}
	if tx.backupDir != "" {
		_ = os.RemoveAll(tx.backupDir)
	}
}

// sameMode compares permission bits. A mismatch forces a re-place so a
// hook script that lost its execute bit gets it back on reinstall.
func sameMode(actual, want os.FileMode) bool {
	return actual.Perm() == want.Perm()
}
