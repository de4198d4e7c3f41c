// Package email surfaces unseen mail from the registry/support inbox
// as system notifications in the notification center.
package email

import (
	"context"
	"log"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/verdantex/comms-center/internal/model"
)

// DigestMsg is a tea.Msg carrying system notifications derived from
// newly observed inbox mail.
type DigestMsg struct {
	Notifications []model.Notification
	Err           error
}

// fetchTimeout is the maximum time allowed for one inbox poll.
const fetchTimeout = 30 * time.Second

// Bridge polls the inbox in the background. A UID high-water mark
// plays the same role as the feed watermark: mail already digested is
// never digested again, even across overlapping unseen results.
type Bridge struct {
	client   *IMAPClient
	interval time.Duration

	lastUID  uint32
	resultCh chan tea.Msg
	stopCh   chan struct{}
	mu       gosync.Mutex
	running  bool
	logf     func(format string, args ...any)
}

// NewBridge creates a bridge polling at the given interval.
func NewBridge(client *IMAPClient, interval time.Duration) *Bridge {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Bridge{
		client:   client,
		interval: interval,
		resultCh: make(chan tea.Msg, 4),
		stopCh:   make(chan struct{}),
		logf:     log.Printf,
	}
}

// SetLogf overrides the logging hook. Tests only.
func (b *Bridge) SetLogf(logf func(format string, args ...any)) {
	b.logf = logf
}

// Start launches the polling goroutine and returns a subscription
// command waiting for the first digest. A stopped bridge can be
// started again; each run gets a fresh stop channel.
func (b *Bridge) Start() tea.Cmd {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = true
	b.stopCh = make(chan struct{})
	stop := b.stopCh
	b.mu.Unlock()

	go b.loop(stop)

	return b.waitForResult()
}

// Stop halts the polling goroutine.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}

	close(b.stopCh)
	b.running = false
}

// loop polls until stopped.
func (b *Bridge) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.fetchOnce()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.fetchOnce()
		}
	}
}

// fetchOnce polls the inbox once and pushes a digest for anything new.
func (b *Bridge) fetchOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	envelopes, err := b.client.FetchUnseen(ctx, b.lastUID)
	if err != nil {
		b.logf("comms: inbox poll failed: %v", err)
		b.sendResult(DigestMsg{Err: err})
		return
	}
	if len(envelopes) == 0 {
		return
	}

	maxUID := b.lastUID
	notifications := make([]model.Notification, 0, len(envelopes))
	for _, env := range envelopes {
		if env.UID > maxUID {
			maxUID = env.UID
		}
		notifications = append(notifications, model.Notification{
			ID:         uuid.New().String(),
			Kind:       model.KindSystem,
			Title:      "Registry mail: " + env.Subject,
			Body:       env.Preview,
			SenderName: env.From,
			Priority:   model.PriorityNormal,
			CreatedAt:  env.Date,
		})
	}

	// Advance the UID mark only when the digest was actually queued,
	// so a dropped digest is retried on the next poll.
	if b.sendResult(DigestMsg{Notifications: notifications}) {
		b.lastUID = maxUID
	}
}

// sendResult sends a digest without blocking.
func (b *Bridge) sendResult(msg tea.Msg) bool {
	select {
	case b.resultCh <- msg:
		return true
	default:
		return false
	}
}

// waitForResult returns a tea.Cmd that waits for the next digest.
func (b *Bridge) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-b.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next digest.
func (b *Bridge) WaitForNextResult() tea.Cmd {
	return b.waitForResult()
}
