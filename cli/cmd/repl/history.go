package repl

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
)

const baseHistory = "history.utf8"

// HistoryEntry is one submitted input with the mode it was entered in. Line
// may span several lines when it holds a script block.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// History is the input history persisted to a file, one quoted entry per
// line prefixed by its mode.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory creates a new History stored at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load reads history entries from the history file. A missing file is an
// empty history.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}
	defer file.Close()

	h.entries = nil

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if e, ok := decodeEntry(scanner.Text()); ok {
			h.entries = append(h.entries, e)
		}
	}

	return scanner.Err()
}

// Write appends a script entry.
func (h *History) Write(entry string) (int, error) {
	return h.WriteWithMode(entry, modeScript)
}

// WriteWithMode appends entry in mode. An older identical entry is moved to
// the end instead of being repeated.
func (h *History) WriteWithMode(entry string, mode inputMode) (int, error) {
	entry = strings.TrimRight(entry, " \t\n")
	if strings.TrimSpace(entry) == "" {
		return 0, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	e := HistoryEntry{Line: entry, Mode: mode}

	if n := len(h.entries); n > 0 && h.entries[n-1] == e {
		return len(entry), nil
	}

	for i, old := range h.entries {
		if old == e {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			h.entries = append(h.entries, e)

			return h.rewriteFile()
		}
	}

	h.entries = append(h.entries, e)

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return file.WriteString(encodeEntry(e) + "\n")
}

// GetEntry retrieves a historic entry by index. Index 0 is the oldest entry.
func (h *History) GetEntry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns all history entries.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]HistoryEntry, len(h.entries))
	copy(result, h.entries)

	return result
}

// rewriteFile rewrites the entire history file with current entries.
// Must be called with h.mu held.
func (h *History) rewriteFile() (int, error) {
	file, err := os.OpenFile(h.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	total := 0

	for _, e := range h.entries {
		n, err := file.WriteString(encodeEntry(e) + "\n")
		if err != nil {
			return total, err
		}

		total += n
	}

	return total, nil
}

func encodeEntry(e HistoryEntry) string {
	prefix := "S:"
	if e.Mode == modeCtrl {
		prefix = "C:"
	}

	return prefix + strconv.Quote(e.Line)
}

func decodeEntry(line string) (HistoryEntry, bool) {
	var e HistoryEntry

	switch {
	case strings.HasPrefix(line, "S:"):
		e.Mode = modeScript
	case strings.HasPrefix(line, "C:"):
		e.Mode = modeCtrl
	default:
		return e, false
	}

	s, err := strconv.Unquote(line[2:])
	if err != nil || strings.TrimSpace(s) == "" {
		return e, false
	}

	e.Line = s

	return e, true
}
