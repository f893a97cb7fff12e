// Package catalog holds the closed set of specialization labels and the
// name-keyed index that maps each active doctor to one of them.
//
// All mutation goes through Upsert, Rename, Remove and Reset. The doctor
// registry is the only caller of those in production code.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

const (
	// General is always the first label and disables filtering.
	General = "General"
	// Unknown is returned by SpecializationFor on a lookup miss.
	Unknown = "unknown"
)

// DefaultLabels is the label set offered when none is configured.
var DefaultLabels = []string{
	General,
	"Cardiology",
	"Dermatology",
	"Neurology",
	"Pediatrics",
	"Orthopedic",
	"ENT",
	"Psychiatry",
	"Gynecology",
}

// DefaultAliases maps the practitioner titles stored by older backends onto
// catalog labels.
var DefaultAliases = map[string]string{
	"Cardiologist":  "Cardiology",
	"Dermatologist": "Dermatology",
	"Neurologist":   "Neurology",
	"Pediatrician":  "Pediatrics",
	"Psychiatrist":  "Psychiatry",
	"Gynecologist":  "Gynecology",
}

// Entry is one row of the legacy name to specialization file.
type Entry struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

type Store struct {
	mu      sync.RWMutex
	labels  []string
	known   map[string]struct{}
	aliases map[string]string
	byName  map[string]string
}

// New builds a store over the given labels. General is moved or added to the
// front and duplicates are dropped.
func New(labels []string, aliases map[string]string) *Store {
	s := &Store{
		known:   make(map[string]struct{}),
		aliases: make(map[string]string),
		byName:  make(map[string]string),
	}

	s.addLabel(General)
	for _, l := range labels {
		if l == "" {
			continue
		}
		s.addLabel(l)
	}
	for alias, label := range aliases {
		if _, ok := s.known[label]; ok {
			s.aliases[alias] = label
		}
	}
	return s
}

// NewDefault returns a store over DefaultLabels and DefaultAliases.
func NewDefault() *Store {
	return New(DefaultLabels, DefaultAliases)
}

func (s *Store) addLabel(l string) {
	if _, ok := s.known[l]; ok {
		return
	}
	s.known[l] = struct{}{}
	s.labels = append(s.labels, l)
}

// ListSpecializations returns the labels in display order, General first.
func (s *Store) ListSpecializations() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Contains reports whether label is a catalog label. Aliases do not count.
func (s *Store) Contains(label string) bool {
	_, ok := s.known[label]
	return ok
}

// Canonical resolves a label or alias to its catalog label. The match is
// exact and case-sensitive. ok is false when nothing matches.
func (s *Store) Canonical(label string) (string, bool) {
	if _, ok := s.known[label]; ok {
		return label, true
	}
	if l, ok := s.aliases[label]; ok {
		return l, true
	}
	return "", false
}

// SpecializationFor looks up a doctor name in the current snapshot and
// returns Unknown on a miss.
func (s *Store) SpecializationFor(doctorName string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.byName[doctorName]; ok {
		return l
	}
	return Unknown
}

// Upsert sets the entry for doctorName. The last write wins.
func (s *Store) Upsert(doctorName, label string) {
	if doctorName == "" {
		return
	}
	s.mu.Lock()
	s.byName[doctorName] = label
	s.mu.Unlock()
}

// Rename moves the entry keyed by oldName to newName and sets its label.
// After the call no entry is keyed by oldName unless the names are equal.
func (s *Store) Rename(oldName, newName, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if oldName != newName {
		delete(s.byName, oldName)
	}
	if newName != "" {
		s.byName[newName] = label
	}
}

// Remove deletes the entry for doctorName and reports whether one existed.
func (s *Store) Remove(doctorName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[doctorName]; !ok {
		return false
	}
	delete(s.byName, doctorName)
	return true
}

// Reset replaces every entry with the given pairs. When a name repeats the
// first pair wins, so an ambiguous join always resolves the same way.
func (s *Store) Reset(entries []Entry) {
	next := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		if _, seen := next[e.Name]; seen {
			continue
		}
		next[e.Name] = e.Specialization
	}

	s.mu.Lock()
	s.byName = next
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}

// Entries returns a copy of the index. Order is unspecified.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.byName))
	for name, label := range s.byName {
		out = append(out, Entry{Name: name, Specialization: label})
	}
	return out
}

// Import reads a legacy JSON array of {name, specialization} rows and loads
// them as the current index. Labels are resolved through Canonical and rows
// with an unknown label are rejected.
func (s *Store) Import(r io.Reader) error {
	var rows []Entry
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return fmt.Errorf("decode specialization file: %w", err)
	}

	for i, row := range rows {
		label, ok := s.Canonical(row.Specialization)
		if !ok {
			return fmt.Errorf("row %d (%q): unknown specialization %q", i, row.Name, row.Specialization)
		}
		rows[i].Specialization = label
	}

	s.Reset(rows)
	return nil
}
