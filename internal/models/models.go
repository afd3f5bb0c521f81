package models

import (
	"strings"
	"sync"
	"time"
)

// Unknown is used for any metadata field the lookup service did not return
const Unknown = "Unknown"

// BookRecord represents one scanned book
type BookRecord struct {
	ISBN   string `json:"isbn" yaml:"isbn" parquet:"isbn"`
	Title  string `json:"title" yaml:"title" parquet:"title"`
	Author string `json:"author" yaml:"author" parquet:"author"`
	Genre  string `json:"genre" yaml:"genre" parquet:"genre"`
}

// NewBookRecord builds a record from looked-up metadata, filling in "Unknown"
// for anything missing. Authors and subjects are joined with ", ".
func NewBookRecord(isbn, title string, authors, subjects []string) BookRecord {
	return BookRecord{
		ISBN:   isbn,
		Title:  orUnknown(strings.TrimSpace(title)),
		Author: orUnknown(joinNonEmpty(authors)),
		Genre:  orUnknown(joinNonEmpty(subjects)),
	}
}

func joinNonEmpty(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ", ")
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// Library is the ordered list of records accumulated during one session.
// Records are only ever appended.
type Library struct {
	ID         string
	createdAt  time.Time
	lastActive time.Time
	records    []BookRecord
	mu         sync.RWMutex
}

// NewLibrary creates an empty library
func NewLibrary(id string) *Library {
	now := time.Now()
	return &Library{
		ID:         id,
		createdAt:  now,
		lastActive: now,
		records:    []BookRecord{},
	}
}

// Append adds a record to the end of the library. Duplicates are kept.
func (l *Library) Append(record BookRecord) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	l.lastActive = time.Now()
	return len(l.records)
}

// Records returns a copy of the records in insertion order
func (l *Library) Records() []BookRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]BookRecord, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Touch marks the library as used without changing its records
func (l *Library) Touch() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastActive = time.Now()
}

func (l *Library) CreatedAt() time.Time {
	return l.createdAt
}

func (l *Library) LastActive() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastActive
}
