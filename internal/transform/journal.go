package transform

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// journalFile records, inside an album being published, which raw source each
// photo index was taken from. It lets an interrupted publish tell an archived
// source that was not yet removed apart from a new source with the same bytes.
const journalFile = ".photoreel-publish"

type journal struct {
	path string
}

func openJournal(albumDir string) journal {
	return journal{path: filepath.Join(albumDir, journalFile)}
}

// record notes that webName is produced from source. It is written before the
// archival copy so a crash at any later point leaves the entry behind.
func (j journal) record(webName, source string) error {
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open publish journal: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s\t%s\n", webName, source); err != nil {
		f.Close()
		return fmt.Errorf("write publish journal: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync publish journal: %w", err)
	}
	return f.Close()
}

// sources maps web names to the source recorded for them. Later entries win,
// since a failed attempt at an index is retried with the next source.
func (j journal) sources() (map[string]string, error) {
	f, err := os.Open(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open publish journal: %w", err)
	}
	defer f.Close()

	out := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		webName, source, ok := strings.Cut(scanner.Text(), "\t")
		if !ok || webName == "" || source == "" {
			continue
		}
		out[webName] = source
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read publish journal: %w", err)
	}
	return out, nil
}

func (j journal) remove() error {
	if err := os.Remove(j.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove publish journal: %w", err)
	}
	return nil
}
