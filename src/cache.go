package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type journalWriteRequest struct {
	entry JournalEntry
}

// Journal records completed resizes in sqlite so -skip-unchanged can tell
// which sources are already up to date. Best effort throughout: a broken or
// missing journal only costs re-processing, never correctness.
type Journal struct {
	db          *sql.DB
	fingerprint string
	writeChan   chan journalWriteRequest
	writerDone  sync.WaitGroup
}

// JournalEntry is one recorded resize.
type JournalEntry struct {
	SourcePath  string
	Size        int64
	ModTime     int64
	OutPath     string
	Width       int
	Height      int
	ProcessedAt int64
}

// OpenJournal opens or creates the resize journal inside the output
// directory. Entries are scoped to the config fingerprint so a changed
// target size, format, or quality never produces a stale skip.
func OpenJournal(outputDir, fingerprint string) (*Journal, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	dbPath := filepath.Join(outputDir, ".image-resizer-journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	// WAL keeps parallel workers' reads from blocking on the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS resized (
		source_path TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		size INTEGER NOT NULL,
		mod_time INTEGER NOT NULL,
		out_path TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		processed_at INTEGER NOT NULL,
		PRIMARY KEY (source_path, fingerprint)
	);
	CREATE INDEX IF NOT EXISTS idx_resized_mod_time ON resized(mod_time);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	j := &Journal{
		db:          db,
		fingerprint: fingerprint,
		writeChan:   make(chan journalWriteRequest, 1000),
	}

	// Single writer goroutine serializes all inserts.
	j.writerDone.Add(1)
	go j.writerLoop()

	return j, nil
}

func (j *Journal) writerLoop() {
	defer j.writerDone.Done()

	for req := range j.writeChan {
		j.writeToDatabase(req.entry)
	}
}

// Close drains pending writes and closes the database.
func (j *Journal) Close() error {
	if j.writeChan != nil {
		close(j.writeChan)
		j.writerDone.Wait()
	}

	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// UpToDate reports whether the source at path was already resized with the
// current settings: a journal entry matches its size and mtime and the
// recorded output file still exists on disk.
func (j *Journal) UpToDate(path string, size int64, modTime time.Time) bool {
	var outPath string
	err := j.db.QueryRow(`
		SELECT out_path FROM resized
		WHERE source_path = ? AND fingerprint = ? AND size = ? AND mod_time = ?
	`, path, j.fingerprint, size, modTime.Unix()).Scan(&outPath)
	if err != nil {
		return false
	}

	_, err = os.Stat(outPath)
	return err == nil
}

// Record queues a journal write for a completed resize. Non-blocking: when
// the queue is full the write is dropped rather than stalling a worker.
func (j *Journal) Record(file *ImageFile, modTime time.Time, out *resizeOutcome) error {
	entry := JournalEntry{
		SourcePath:  file.Path,
		Size:        file.Size,
		ModTime:     modTime.Unix(),
		OutPath:     out.OutPath,
		Width:       out.Width,
		Height:      out.Height,
		ProcessedAt: time.Now().Unix(),
	}

	select {
	case j.writeChan <- journalWriteRequest{entry: entry}:
		return nil
	default:
		return fmt.Errorf("journal write queue full")
	}
}

func (j *Journal) writeToDatabase(e JournalEntry) {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO resized
		(source_path, fingerprint, size, mod_time, out_path, width, height, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.SourcePath, j.fingerprint, e.Size, e.ModTime, e.OutPath, e.Width, e.Height, e.ProcessedAt)

	if err != nil {
		fmt.Printf("Warning: journal write failed for %s: %v\n", e.SourcePath, err)
	}
}

// Stats returns the number of recorded resizes for the current settings.
func (j *Journal) Stats() (total int64) {
	j.db.QueryRow("SELECT COUNT(*) FROM resized WHERE fingerprint = ?", j.fingerprint).Scan(&total)
	return
}

// PruneDeleted removes entries whose source files no longer exist.
func (j *Journal) PruneDeleted(validPaths map[string]bool) (int64, error) {
	rows, err := j.db.Query("SELECT DISTINCT source_path FROM resized")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var toDelete []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			continue
		}
		if !validPaths[path] {
			toDelete = append(toDelete, path)
		}
	}

	if len(toDelete) == 0 {
		return 0, nil
	}

	tx, err := j.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("DELETE FROM resized WHERE source_path = ?")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, path := range toDelete {
		if _, err := stmt.Exec(path); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return int64(len(toDelete)), nil
}
