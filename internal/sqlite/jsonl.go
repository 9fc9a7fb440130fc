package sqlite

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/actstream/pkg/types"
)

// ExportJSONL writes every stored action to path, one JSON object per line,
// oldest first. The file is replaced atomically. Returns the number of
// actions written.
func (b *Backend) ExportJSONL(ctx context.Context, path string) (int, error) {
	actions, err := b.AllActions(ctx)
	if err != nil {
		return 0, err
	}

	records := make([]json.RawMessage, 0, len(actions))
	for _, a := range actions {
		rec, err := json.Marshal(a)
		if err != nil {
			return 0, fmt.Errorf("encoding action %s: %w", a.ActionID, err)
		}
		records = append(records, rec)
	}
	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	b.logger.Debug("exported actions", "path", path, "count", len(records))
	return len(records), nil
}

// ImportJSONL saves every action found in path. Lines that are not valid
// JSON are skipped; records that decode but fail validation are an error.
// Actions with an existing ID are overwritten. Returns the number of actions
// saved.
func (b *Backend) ImportJSONL(ctx context.Context, path string) (int, error) {
	records, err := readJSONL(path)
	if err != nil {
		return 0, err
	}

	n := 0
	for i, rec := range records {
		var a types.Action
		if err := json.Unmarshal(rec, &a); err != nil {
			b.logger.Warn("skipping action record", "path", path, "record", i, "error", err)
			continue
		}
		if _, err := b.SaveAction(ctx, &a); err != nil {
			return n, fmt.Errorf("importing record %d: %w", i, err)
		}
		n++
	}
	b.logger.Debug("imported actions", "path", path, "count", n)
	return n, nil
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(format string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf(format, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
