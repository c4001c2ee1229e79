package stream

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/naushadh/streamly/internal/idgen"
	"github.com/naushadh/streamly/journal"
)

// Unlimited disables the worker bound: every alternation point is eligible
// to dispatch.
const Unlimited = -1

// runCore is the state shared by every branch of one run: the result queue,
// the pending-branch registry, the credit counter and, for recorded runs,
// the branch journals. It is created at run start and discarded when the
// driver returns.
type runCore struct {
	credit    atomic.Int64
	unlimited atomic.Bool
	initial   int64

	// outlet holds the run's typed result queue (*outlet[T]).
	outlet any

	mu       sync.Mutex
	pending  []*worker
	branches []*branch
	wg       sync.WaitGroup

	recording bool
}

// setLimit installs a new credit limit. Credit bounds the number of
// concurrently dispatched workers; it is decremented when a worker is
// dispatched and restored when the worker's contribution is fully retired.
func (c *runCore) setLimit(limit int) {
	if limit < 0 {
		c.unlimited.Store(true)
		return
	}
	c.unlimited.Store(false)
	c.initial = int64(limit)
	c.credit.Store(int64(limit))
}

// acquire reports whether a dispatch is admitted and whether a credit was
// actually consumed for it. In unlimited mode dispatches are admitted
// without touching the counter; callers must hand back a credit only when
// one was taken, otherwise a worker dispatched before a Threads wrapper
// installs its bound would inflate the counter on retirement. Running out
// of credit is not an error; it forces inline execution.
func (c *runCore) acquire() (admitted, credited bool) {
	if c.unlimited.Load() {
		return true, false
	}
	for {
		n := c.credit.Load()
		if n <= 0 {
			return false, false
		}
		if c.credit.CompareAndSwap(n, n-1) {
			return true, true
		}
	}
}

// release returns one credit.
func (c *runCore) release() {
	if !c.unlimited.Load() {
		c.credit.Add(1)
	}
}

func (c *runCore) register(w *worker) {
	c.mu.Lock()
	c.pending = append(c.pending, w)
	c.mu.Unlock()
	c.wg.Add(1)
}

// retire removes a drained worker from the pending registry and returns its
// credit, if its dispatch took one.
func (c *runCore) retire(w *worker) {
	c.mu.Lock()
	for i, candidate := range c.pending {
		if candidate == w {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	if w.credited {
		c.release()
	}
}

func (c *runCore) pendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *runCore) addBranch(b *branch) {
	c.mu.Lock()
	c.branches = append(c.branches, b)
	c.mu.Unlock()
}

// unfinishedJournals returns, in branch creation order, the journals of
// branches that never reached a terminal step outcome.
func (c *runCore) unfinishedJournals() []*journal.Journal {
	c.mu.Lock()
	defer c.mu.Unlock()
	var journals []*journal.Journal
	for _, b := range c.branches {
		if !b.done && b.jrnl != nil {
			journals = append(journals, b.jrnl)
		}
	}
	return journals
}

// branch is one logical line of execution within a run. A new branch is
// created when an alternation point is dispatched to a worker; inline
// alternation extends the current branch.
type branch struct {
	id     string
	path   string
	forks  int
	done   bool
	jrnl   *journal.Journal
	replay []journal.Entry
	cursor int
}

// journal is exposed through ExecCtx; keep the field name short internally.
func (b *branch) activeJournal() *journal.Journal { return b.jrnl }

// ExecCtx is the per-branch handle onto a run. Every advance call receives
// one; forking at a dispatch point derives a child context that shares the
// run core but owns its branch state.
type ExecCtx struct {
	core   *runCore
	branch *branch
}

func newExecCtx(core *runCore) *ExecCtx {
	b := &branch{id: idgen.New()}
	if core.recording {
		b.jrnl = journal.New()
	}
	core.addBranch(b)
	return &ExecCtx{core: core, branch: b}
}

// fork derives the execution context for a newly dispatched branch. The
// child takes ownership of a copy of the parent's journal so far and of the
// remaining replay entries.
func (ec *ExecCtx) fork() *ExecCtx {
	parent := ec.branch
	child := &branch{
		id:     idgen.New(),
		path:   fmt.Sprintf("%s/%d", parent.path, parent.forks),
		jrnl:   parent.jrnl.Clone(),
		replay: parent.replay,
		cursor: parent.cursor,
	}
	parent.forks++
	ec.core.addBranch(child)
	return &ExecCtx{core: ec.core, branch: child}
}

// finish marks the branch as having reached a terminal step outcome; its
// journal is no longer part of the run's recording set.
func (ec *ExecCtx) finish() {
	ec.core.mu.Lock()
	ec.branch.done = true
	ec.core.mu.Unlock()
}

// record appends one effect outcome to the active journal, if any.
func (ec *ExecCtx) record(value any) error {
	if ec.branch.jrnl == nil {
		return nil
	}
	return ec.branch.jrnl.Append(journal.KindEffect, ec.branch.path, value)
}

// nextReplay returns the next recorded effect outcome belonging to this
// branch, if the branch is replaying a journal.
func (ec *ExecCtx) nextReplay() (journal.Entry, bool) {
	b := ec.branch
	for i := b.cursor; i < len(b.replay); i++ {
		entry := b.replay[i]
		if entry.Kind == journal.KindEffect && entry.Branch == b.path {
			b.cursor = i + 1
			return entry, true
		}
	}
	return journal.Entry{}, false
}

// ActiveJournal returns the journal the current branch records into, or nil
// when the run is not recorded.
func (ec *ExecCtx) ActiveJournal() *journal.Journal {
	return ec.branch.activeJournal()
}

// ReplaceActive swaps the current branch's journal.
func (ec *ExecCtx) ReplaceActive(j *journal.Journal) {
	ec.branch.jrnl = j
}

// Replay installs a previously captured journal: recorded effect outcomes
// are consumed instead of re-running their effects, and the journal becomes
// the branch's active journal so later decisions append to it. The branch
// restarts from the journal's root, as a freshly created branch would.
func (ec *ExecCtx) Replay(j *journal.Journal) {
	b := ec.branch
	b.replay = append([]journal.Entry(nil), j.Entries...)
	b.cursor = 0
	b.path = ""
	b.forks = 0
	if ec.core.recording {
		b.jrnl = j.Clone()
	}
}
