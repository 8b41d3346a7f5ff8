package game

import (
	"encoding/json"
	"slices"
)

// Log is the append-only game record.
//
// A Log is a value: Append returns a new Log backed by its own array, so a
// Log held by one computation is never changed by another.
type Log struct {
	entries []Entry
}

// NewLog builds a log from existing entries, keeping their ids.
func NewLog(entries ...Entry) Log {
	return Log{entries: slices.Clone(entries)}
}

// Len returns the number of entries.
func (l Log) Len() int { return len(l.entries) }

// Entries returns a copy of every entry in log order.
func (l Log) Entries() []Entry { return slices.Clone(l.entries) }

// Last returns the newest entry.
func (l Log) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// NextID returns the id the next appended entry will receive.
func (l Log) NextID() int64 {
	last, ok := l.Last()
	if !ok {
		return 1
	}
	return last.ID + 1
}

// Append returns a new log with entry added at the end. The entry id is
// assigned from the log so ids stay strictly increasing.
func (l Log) Append(entry Entry) Log {
	entry.ID = l.NextID()
	entry.Lives = slices.Clone(entry.Lives)
	return Log{entries: append(slices.Clip(l.entries), entry)}
}

// LastStatus returns the status carried by the newest status entry.
func (l Log) LastStatus() (Status, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Kind == EntryStatus && l.entries[i].Status != nil {
			return *l.entries[i].Status, true
		}
	}
	return Status{}, false
}

// Period returns the entries that belong to the given (day, period).
//
// Membership is decided by the most recent status entry seen while walking
// the log in order; entries written before the first status entry belong to
// no period.
func (l Log) Period(key PeriodKey) []Entry {
	var (
		out     []Entry
		current PeriodKey
		seen    bool
	)
	for _, entry := range l.entries {
		if entry.Kind == EntryStatus && entry.Status != nil {
			current = entry.Status.Key()
			seen = true
		}
		if seen && current == key {
			out = append(out, entry)
		}
	}
	return out
}

// MarshalJSON encodes the log as a plain array.
func (l Log) MarshalJSON() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

// UnmarshalJSON decodes an array produced by MarshalJSON.
func (l *Log) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	l.entries = entries
	return nil
}

// Filter returns the entries of period for which keep reports true.
func Filter(period []Entry, keep func(Entry) bool) []Entry {
	var out []Entry
	for _, entry := range period {
		if keep(entry) {
			out = append(out, entry)
		}
	}
	return out
}

// OfKind is a Filter predicate matching any of kinds.
func OfKind(kinds ...EntryKind) func(Entry) bool {
	return func(entry Entry) bool {
		return slices.Contains(kinds, entry.Kind)
	}
}

// ByActor is a Filter predicate matching entries written by actor.
func ByActor(actor AgentID) func(Entry) bool {
	return func(entry Entry) bool { return entry.Actor == actor }
}

// Current returns the entries of the period status points at.
func (l Log) Current(status Status) []Entry { return l.Period(status.Key()) }

// Previous returns the entries of the period before the one status points at.
func (l Log) Previous(status Status) []Entry { return l.Period(status.Key().Previous()) }
