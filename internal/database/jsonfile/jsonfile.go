// Package jsonfile stores whole collections as JSON documents on local disk.
//
// A collection is either a JSON array rewritten on every mutation (Read/Write)
// or an append-only JSON-Lines log (AppendLine/ReadLines). Reads never fail:
// a missing, empty or unparsable file yields an empty collection.
package jsonfile

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640
)

// maxLineSize bounds a single JSON-Lines record.
const maxLineSize = 4 << 20

// Read decodes the JSON array stored at path.
// Any failure degrades to an empty, non-nil slice.
func Read[T any](path string) []T {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return []T{}
	case err != nil:
		slog.Warn("jsonfile: read failed, using empty collection", "path", path, "error", err)
		return []T{}
	case len(bytes.TrimSpace(data)) == 0:
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		slog.Warn("jsonfile: corrupt collection, using empty collection", "path", path, "error", err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// Write replaces the file at path with items encoded as an indented JSON array.
// The content goes to a temp file first, then fsync, then rename.
// There is no locking: concurrent writers race and the last rename wins.
func Write[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, filePerm); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// AppendLine encodes v as a single JSON line and appends it to path.
func AppendLine(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode line: %w", err)
	}
	return appendBytes(path, append(data, '\n'))
}

// AppendText appends line plus a trailing newline to path.
func AppendText(path, line string) error {
	return appendBytes(path, []byte(line+"\n"))
}

func appendBytes(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// ReadLines decodes every non-blank line of the JSON-Lines file at path.
// Lines that fail to decode are skipped.
func ReadLines[T any](path string) []T {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("jsonfile: open log failed, using empty collection", "path", path, "error", err)
		}
		return []T{}
	}
	defer f.Close()

	items := []T{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			slog.Debug("jsonfile: skipping malformed line", "path", path, "error", err)
			continue
		}
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		slog.Warn("jsonfile: log scan stopped early", "path", path, "error", err)
	}
	return items
}
