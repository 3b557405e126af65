package model

import "time"

// Backup describes one snapshot file in the backups directory. The catalog
// is derived from a directory scan, not tracked in the database.
type Backup struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
	Path    string    `json:"path"`
}

// BackupResult describes a completed backup.
type BackupResult struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}
