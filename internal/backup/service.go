// Package backup produces and consumes point-in-time copies of the live
// database file. Snapshots are plain file copies taken after a WAL
// checkpoint; the catalog is derived from a directory scan.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/zvidmar/inventura/internal/db"
	"github.com/zvidmar/inventura/internal/model"
)

// Restore failure taxonomy. ErrReverted and ErrCopyFailed are distinct so
// callers can tell the user whether the live database was rolled back to
// its pre-restore state or left as it was.
var (
	ErrInvalidName  = errors.New("invalid backup name")
	ErrNotFound     = errors.New("backup not found")
	ErrInaccessible = errors.New("cannot access required files")
	ErrReverted     = errors.New("restore failed: reverted to previous state")
	ErrCopyFailed   = errors.New("restore failed: could not copy backup file")
)

// nameLayout is the timestamp format embedded in snapshot filenames.
// Millisecond precision keeps rapid consecutive backups distinct.
const nameLayout = "20060102-150405.000"

// Service copies the live database to and from a backups directory.
type Service struct {
	Handle *db.Handle
	Dir    string
}

// Create snapshots the live database into the backups directory, creating
// it if absent. The WAL is checkpointed first so the copy is
// self-consistent, and the copy runs under the shared lock so it cannot
// race a concurrent restore.
func (s *Service) Create(ctx context.Context) (*model.BackupResult, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backups directory: %w", err)
	}

	if err := s.Handle.Checkpoint(ctx); err != nil {
		return nil, err
	}

	name := "backup-" + time.Now().UTC().Format(nameLayout) + ".db"
	dst := filepath.Join(s.Dir, name)

	if err := s.Handle.Snapshot(func(live string) error {
		return copyFile(live, dst)
	}); err != nil {
		return nil, fmt.Errorf("copying database: %w", err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		return nil, fmt.Errorf("inspecting backup: %w", err)
	}

	result := &model.BackupResult{
		Path:      dst,
		Size:      info.Size(),
		Timestamp: time.Now().UTC(),
	}
	slog.Info("backup created", "path", dst, "size", humanize.Bytes(uint64(info.Size())))
	return result, nil
}

// List scans the backups directory for snapshot files, newest first. A
// missing or empty directory yields an empty list; unreadable entries are
// skipped. Listing never fails the caller.
func (s *Service) List() []model.Backup {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read backups directory", "dir", s.Dir, "error", err)
		}
		return []model.Backup{}
	}

	backups := []model.Backup{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			slog.Warn("failed to stat backup", "name", entry.Name(), "error", err)
			continue
		}
		backups = append(backups, model.Backup{
			Name:    entry.Name(),
			Size:    info.Size(),
			Created: info.ModTime().UTC(),
			Path:    filepath.Join(s.Dir, entry.Name()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Created.Equal(backups[j].Created) {
			return backups[i].Created.After(backups[j].Created)
		}
		return backups[i].Name > backups[j].Name
	})
	return backups
}

// Restore copies the named snapshot over the live database file. The live
// file is first copied to a pre-restore safety snapshot; if the main copy
// then fails, the safety copy is put back and ErrReverted is returned. The
// whole swap runs under the exclusive lock with the connection closed, and
// the connection is reopened before Restore returns.
func (s *Service) Restore(ctx context.Context, name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return ErrInvalidName
	}

	src := filepath.Join(s.Dir, name)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("%w: %v", ErrInaccessible, err)
	}

	// Verify the backup is readable and the database directory writable
	// before touching anything.
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInaccessible, err)
	}
	f.Close()
	if err := probeWritable(filepath.Dir(s.Handle.Path())); err != nil {
		return fmt.Errorf("%w: %v", ErrInaccessible, err)
	}

	// Checkpoint so the safety copy captures everything in the WAL.
	if err := s.Handle.Checkpoint(ctx); err != nil {
		return err
	}

	safety := filepath.Join(s.Dir, "pre-restore-"+time.Now().UTC().Format(nameLayout)+".db")

	return s.Handle.Exclusive(func(live string) error {
		if err := copyFile(live, safety); err != nil {
			return fmt.Errorf("creating safety copy: %w", err)
		}

		// Stale WAL or shared-memory files would shadow the restored
		// content on reopen.
		os.Remove(live + "-wal")
		os.Remove(live + "-shm")

		if err := copyFile(src, live); err != nil {
			if _, statErr := os.Stat(safety); statErr == nil {
				if revErr := copyFile(safety, live); revErr == nil {
					return fmt.Errorf("%w: %v", ErrReverted, err)
				}
			}
			return fmt.Errorf("%w: %v", ErrCopyFailed, err)
		}

		slog.Info("database restored", "backup", name, "safety", filepath.Base(safety))
		return nil
	})
}

// probeWritable checks that dir accepts new files.
func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".restore-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// copyFile copies src to dst, truncating dst if it exists, and syncs the
// result to disk.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
