// Package feed polls the backend for conversation summaries and
// per-scope message feeds, mirrors them into the local cache, and
// bridges the results into the UI loop as Bubble Tea messages.
package feed

import (
	"context"
	"log"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verdantex/comms-center/internal/backend"
	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/internal/reconcile"
	"github.com/verdantex/comms-center/internal/store"
)

// State represents the current state of a poll cycle.
type State int

const (
	Idle State = iota
	Running
	Error
)

// Status holds the poller's last-known sync state.
type Status struct {
	State    State
	LastSync time.Time
	Err      error
}

// ConversationsMsg is a tea.Msg carrying a wholesale summary refresh.
type ConversationsMsg struct {
	Summaries []model.ConversationSummary
	Err       error
	AuthError bool
}

// SnapshotMsg is a tea.Msg carrying one scope's full feed snapshot.
// Payloads stay loosely typed; the reconciler narrows them.
type SnapshotMsg struct {
	Scope        model.ConversationScope
	ProjectTitle string
	Feed         []backend.WireMessage
	Err          error
}

// fetchTimeout is the maximum time allowed for a single poll cycle.
const fetchTimeout = 30 * time.Second

// Poller orchestrates background polling of the backend.
type Poller struct {
	backend  backend.Backend
	store    store.Store
	userID   string
	interval time.Duration

	status    Status
	resultCh  chan tea.Msg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
	logf      func(format string, args ...any)
}

// New creates a poller for one user. The store mirrors fetched data so
// the client can warm-start offline; mirror failures are logged, not
// fatal.
func New(
	b backend.Backend,
	s store.Store,
	userID string,
	interval time.Duration,
) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		backend:   b,
		store:     s,
		userID:    userID,
		interval:  interval,
		resultCh:  make(chan tea.Msg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		logf:      log.Printf,
	}
}

// SetLogf overrides the logging hook. Tests only.
func (p *Poller) SetLogf(logf func(format string, args ...any)) {
	p.logf = logf
}

// Start launches the polling goroutine and returns a subscription
// command that waits for the first result. A stopped poller can be
// started again; each run gets a fresh stop channel.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stop := p.stopCh
	p.mu.Unlock()

	go p.loop(stop)

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate poll cycle.
func (p *Poller) Refresh() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A refresh is already pending.
	}
	return nil
}

// GetStatus returns the poller's current status.
func (p *Poller) GetStatus() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// loop runs poll cycles until stopped.
func (p *Poller) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately.
	p.fetchOnce()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.fetchOnce()
		case <-p.triggerCh:
			p.fetchOnce()
		}
	}
}

// fetchOnce performs a single poll cycle: conversations first, then
// each conversation's message feed. Results are mirrored to the cache
// and pushed onto the result channel.
func (p *Poller) fetchOnce() {
	p.setStatus(Running, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	summaries, err := p.backend.FetchConversations(ctx, p.userID)
	if err != nil {
		p.setStatus(Error, err)
		p.sendResult(ConversationsMsg{
			Err:       err,
			AuthError: backend.IsAuthError(err),
		})
		return
	}

	if err := p.store.UpsertConversations(ctx, summaries); err != nil {
		p.logf("comms: mirroring conversations failed: %v", err)
	}

	p.sendResult(ConversationsMsg{Summaries: summaries})

	for _, summary := range summaries {
		scope := summary.Scope()

		feed, err := p.backend.FetchMessages(ctx, scope)
		if err != nil {
			p.logf(
				"comms: fetching feed for project %s failed: %v",
				scope.ProjectID, err,
			)
			p.sendResult(SnapshotMsg{
				Scope:        scope,
				ProjectTitle: summary.ProjectTitle,
				Err:          err,
			})
			continue
		}

		p.mirrorMessages(ctx, feed)
		p.sendResult(SnapshotMsg{
			Scope:        scope,
			ProjectTitle: summary.ProjectTitle,
			Feed:         feed,
		})
	}

	p.setStatus(Idle, nil)
}

// mirrorMessages writes the valid subset of a feed snapshot into the
// local cache. Malformed entries are skipped here; the reconciler
// counts and logs them when it narrows the same snapshot.
func (p *Poller) mirrorMessages(ctx context.Context, feed []backend.WireMessage) {
	var msgs []model.Message
	for _, wire := range feed {
		entry := reconcile.Narrow(wire)
		if entry.Err != nil {
			continue
		}
		msgs = append(msgs, entry.Message)
	}

	if len(msgs) == 0 {
		return
	}
	if err := p.store.UpsertMessages(ctx, msgs); err != nil {
		p.logf("comms: mirroring messages failed: %v", err)
	}
}

// setStatus updates the poller status.
func (p *Poller) setStatus(state State, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Err = err
	if state == Idle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a message on the result channel without blocking.
func (p *Poller) sendResult(msg tea.Msg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if the channel is full to avoid blocking the poller.
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll
// result. Call after processing a result message to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
