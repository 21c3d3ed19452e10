package engine

import "encoding/json"

// Ledger is the append-only round history of a game. It is a value: Commit
// and Undo return a new Ledger and leave the receiver untouched, so callers
// can keep the previous value to diff against.
type Ledger struct {
	entries []RoundEntry
}

// NewLedger builds a ledger from entries in order. The entries are copied.
func NewLedger(entries ...RoundEntry) Ledger {
	l := Ledger{entries: make([]RoundEntry, len(entries))}
	for i, e := range entries {
		l.entries[i] = e.clone()
	}
	return l
}

func (l Ledger) Len() int { return len(l.entries) }

// At returns a copy of the entry at index i.
func (l Ledger) At(i int) RoundEntry { return l.entries[i].clone() }

// Last returns the most recent entry, if any.
func (l Ledger) Last() (RoundEntry, bool) {
	if len(l.entries) == 0 {
		return RoundEntry{}, false
	}
	return l.entries[len(l.entries)-1].clone(), true
}

// Entries returns a copy of the whole history, oldest first.
func (l Ledger) Entries() []RoundEntry {
	out := make([]RoundEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.clone()
	}
	return out
}

// Commit returns a ledger with e appended.
func (l Ledger) Commit(e RoundEntry) Ledger {
	next := make([]RoundEntry, len(l.entries), len(l.entries)+1)
	copy(next, l.entries)
	next = append(next, e.clone())
	return Ledger{entries: next}
}

// Undo returns a ledger without its last entry and the removed entry. On an
// empty ledger it returns the receiver and ok == false; that is a normal
// outcome, not a fault.
func (l Ledger) Undo() (next Ledger, removed RoundEntry, ok bool) {
	n := len(l.entries)
	if n == 0 {
		return l, RoundEntry{}, false
	}
	return Ledger{entries: l.entries[: n-1 : n-1]}, l.entries[n-1].clone(), true
}

func (l Ledger) MarshalJSON() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

func (l *Ledger) UnmarshalJSON(data []byte) error {
	var entries []RoundEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*l = NewLedger(entries...)
	return nil
}
