package stream

import (
	"github.com/naushadh/streamly/journal"
)

// PlayRecording resumes one previously paused branch: the journal's
// recorded decisions are replayed first, satisfying lifted effects from the
// log instead of re-running them, and s then continues from wherever the
// replayed state leads it.
func PlayRecording[T any](s *Stream[T], j *journal.Journal) *Stream[T] {
	return reseed(s, j)
}

// PlayRecordings resumes a whole recording set: one alternative per
// journal, each seeded with its own recorded state, all continuing into s.
// Resuming N paused branches is therefore an N-way alternation, subject to
// whatever credit limit wraps the result.
func PlayRecordings[T any](s *Stream[T], journals []*journal.Journal) *Stream[T] {
	return FlatMap(Each(journals), func(j *journal.Journal) *Stream[T] {
		return PlayRecording(s, j)
	})
}
