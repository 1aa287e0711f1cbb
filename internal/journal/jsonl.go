package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"presaleLedger/internal/model"
)

// JsonlJournal appends ledger events to a JSONL file. Each batch is written
// with a single append and synced before PutEvents returns.
type JsonlJournal struct {
	path string
	mu   sync.Mutex
}

func NewJsonlJournal(path string) *JsonlJournal {
	return &JsonlJournal{path: path}
}

// PutEvents appends events as JSON lines. A batch that fails to encode
// writes nothing.
func (j *JsonlJournal) PutEvents(events []model.LedgerEvent) (err error) {
	if len(events) == 0 {
		return nil
	}

	var batch bytes.Buffer
	enc := json.NewEncoder(&batch)
	for _, event := range events {
		if event.ID == "" {
			return fmt.Errorf("journal event %s has no id", event.Op)
		}
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("encode event %s: %w", event.ID, err)
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if dir := filepath.Dir(j.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}
	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close journal: %w", cerr)
		}
	}()

	if _, err := file.Write(batch.Bytes()); err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}
	return nil
}

// ReadAll loads every event in the journal file. A missing file is empty.
func ReadAll(path string) ([]model.LedgerEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var events []model.LedgerEvent
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event model.LedgerEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse event: %w", err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return events, nil
}
