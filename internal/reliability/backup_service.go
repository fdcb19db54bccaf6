// Package reliability provides database backup and maintenance: staged
// sqlite copies, archive creation, S3 upload, and remote rotation.
package reliability

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

// BackupService produces consistent point-in-time copies of the databases
// using VACUUM INTO, which snapshots a live WAL-mode database without
// blocking writers.
type BackupService struct {
	databases map[string]*sql.DB
	log       zerolog.Logger
}

// NewBackupService creates a new backup service over the named connections.
func NewBackupService(databases map[string]*sql.DB, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// DatabaseNames returns the backed-up database names, sorted for stable
// archive layouts.
func (s *BackupService) DatabaseNames() []string {
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackupDatabase writes a consistent copy of one database to destPath.
func (s *BackupService) BackupDatabase(name, destPath string) error {
	db, ok := s.databases[name]
	if !ok {
		return fmt.Errorf("unknown database: %s", name)
	}

	// VACUUM INTO refuses to overwrite
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear stale backup file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("failed to vacuum %s into %s: %w", name, destPath, err)
	}

	s.log.Debug().Str("database", name).Str("dest", destPath).Msg("Database backed up")
	return nil
}
