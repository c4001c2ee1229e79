package journal

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry kinds recorded by the engine.
const (
	KindEffect = "effect"
)

// Entry is a single recorded decision. Data holds the JSON-encoded outcome
// of the decision; Branch identifies the fork path of the branch that made
// it (empty for the root line of a run).
type Entry struct {
	Seq    int             `json:"seq"`
	Kind   string          `json:"kind"`
	Branch string          `json:"branch,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Journal is the ordered, append-only decision log of one branch. A branch
// that has never been paused owns an empty journal. Journals are not safe
// for concurrent use; each is owned by exactly one branch at a time.
type Journal struct {
	Entries []Entry `json:"entries"`
}

// New returns an empty journal.
func New() *Journal {
	return &Journal{}
}

// Append encodes value and adds it as the next entry for the given branch
// path. Values must round-trip through JSON for replay to work.
func (j *Journal) Append(kind, branch string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	j.Entries = append(j.Entries, Entry{
		Seq:    len(j.Entries) + 1,
		Kind:   kind,
		Branch: branch,
		Data:   data,
	})
	return nil
}

// Clone returns a deep copy. Forking a branch clones the parent journal so
// that the child owns its prefix and the two diverge independently.
func (j *Journal) Clone() *Journal {
	if j == nil {
		return nil
	}
	clone := &Journal{Entries: make([]Entry, len(j.Entries))}
	copy(clone.Entries, j.Entries)
	return clone
}

// Len returns the number of recorded entries.
func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	return len(j.Entries)
}

// Recording is a persistable set of journals captured for the branches that
// did not finish by the time a run ended.
type Recording struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	Journals  []*Journal `json:"journals"`
}
