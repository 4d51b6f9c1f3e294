package report

import "sort"

// Frequency is a keyed tally produced by a handler.
type Frequency struct {
	Title string `json:"title" yaml:"title"`
	// Unit names what a key is ("entries", "names").
	Unit string `json:"unit" yaml:"unit"`
	// KeysOnly renders keys without counts, for set-like reports.
	KeysOnly  bool           `json:"-" yaml:"-"`
	Counts    map[string]int `json:"counts" yaml:"counts"`
	Processed int            `json:"processed" yaml:"processed"`
}

// Entry is one key and its count.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// NewFrequency returns an empty tally.
func NewFrequency(title, unit string) *Frequency {
	return &Frequency{Title: title, Unit: unit, Counts: make(map[string]int)}
}

// Add increments key by one.
func (f *Frequency) Add(key string) {
	if f.Counts == nil {
		f.Counts = make(map[string]int)
	}
	f.Counts[key]++
}

// Len returns the number of distinct keys.
func (f *Frequency) Len() int {
	return len(f.Counts)
}

// Entries returns the tally sorted by key.
func (f *Frequency) Entries() []Entry {
	entries := make([]Entry, 0, len(f.Counts))
	for key, count := range f.Counts {
		entries = append(entries, Entry{Key: key, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Keys returns the sorted keys.
func (f *Frequency) Keys() []string {
	keys := make([]string, 0, len(f.Counts))
	for key := range f.Counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
