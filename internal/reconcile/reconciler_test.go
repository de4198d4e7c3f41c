package reconcile

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantex/comms-center/internal/backend"
	"github.com/verdantex/comms-center/internal/model"
)

const (
	testUserID  = "user-self"
	testOtherID = "user-ava"
)

var testScope = model.ConversationScope{
	ProjectID:      "proj-solar",
	CounterpartyID: testOtherID,
}

// recordingDispatcher captures every dispatched notification.
type recordingDispatcher struct {
	dispatched []model.Notification
	err        error
}

func (d *recordingDispatcher) Dispatch(n model.Notification) error {
	d.dispatched = append(d.dispatched, n)
	return d.err
}

func newTestReconciler(d Dispatcher) *Reconciler {
	r := New(testScope, "Solar Farm Alpha", testUserID, d)
	r.SetLogf(func(string, ...any) {})
	return r
}

func wireAt(id, sender string, at time.Time) backend.WireMessage {
	return backend.WireMessage{
		ID:             id,
		ProjectID:      testScope.ProjectID,
		CounterpartyID: testScope.CounterpartyID,
		SenderID:       sender,
		SenderName:     "Ava Chen",
		Subject:        "Verification update",
		Body:           "The auditor confirmed the batch.",
		Priority:       "normal",
		CreatedAt:      at.Format(time.RFC3339),
	}
}

func TestObserveEmitsOncePerMessage(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestReconciler(d)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	feed := []backend.WireMessage{
		wireAt("m1", testOtherID, base),
		wireAt("m2", testOtherID, base.Add(time.Minute)),
	}

	res := r.Observe(feed)
	require.Len(t, res.Created, 2)
	assert.Zero(t, res.Malformed)
	assert.Len(t, d.dispatched, 2)

	// Re-observing the identical feed is a no-op.
	res = r.Observe(feed)
	assert.Empty(t, res.Created)
	assert.Len(t, d.dispatched, 2)
	assert.Equal(t, 2, r.ObservedCount())
}

func TestObserveSkipsOwnMessages(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestReconciler(d)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	feed := []backend.WireMessage{
		wireAt("m1", testUserID, base),
		wireAt("m2", testOtherID, base.Add(time.Minute)),
	}

	res := r.Observe(feed)
	require.Len(t, res.Created, 1)
	assert.Equal(t, testOtherID, res.Created[0].SenderID)
}

func TestObserveWatermarkSurvivesTruncation(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestReconciler(d)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	m1 := wireAt("m1", testOtherID, base)
	m2 := wireAt("m2", testOtherID, base.Add(time.Minute))

	res := r.Observe([]backend.WireMessage{m1, m2})
	require.Len(t, res.Created, 2)

	// Feed shrinks (server-side pruning), then regrows containing the
	// already-notified messages. The watermark keeps them quiet.
	res = r.Observe([]backend.WireMessage{m2})
	assert.Empty(t, res.Created)
	assert.Equal(t, 1, r.ObservedCount())

	m3 := wireAt("m3", testOtherID, base.Add(2*time.Minute))
	res = r.Observe([]backend.WireMessage{m2, m3})
	require.Len(t, res.Created, 1)
	assert.Equal(t, base.Add(2*time.Minute), res.Created[0].CreatedAt)
}

func TestObserveMalformedCountedAndSkipped(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestReconciler(d)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	bad := wireAt("", testOtherID, base)
	good := wireAt("m2", testOtherID, base.Add(time.Minute))

	res := r.Observe([]backend.WireMessage{bad, good})
	assert.Equal(t, 1, res.Malformed)
	require.Len(t, res.Created, 1)

	// The malformed entry never advanced the watermark, only the good
	// one did.
	assert.Equal(t, base.Add(time.Minute), r.Watermark())
}

func TestObserveClassifiesReply(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestReconciler(d)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	feed := []backend.WireMessage{
		wireAt("m1", testUserID, base),
	}
	r.Observe(feed)

	feed = append(feed, wireAt("m2", testOtherID, base.Add(time.Minute)))
	res := r.Observe(feed)

	require.Len(t, res.Created, 1)
	assert.Equal(t, model.KindReply, res.Created[0].Kind)
}

func TestObserveClassifiesUrgentOverReply(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestReconciler(d)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	feed := []backend.WireMessage{
		wireAt("m1", testUserID, base),
	}
	r.Observe(feed)

	urgent := wireAt("m2", testOtherID, base.Add(time.Minute))
	urgent.Priority = "urgent"
	res := r.Observe(append(feed, urgent))

	require.Len(t, res.Created, 1)
	assert.Equal(t, model.KindUrgent, res.Created[0].Kind)
	assert.Equal(t, model.PriorityUrgent, res.Created[0].Priority)
}

func TestObserveHighPriorityIsUrgentKind(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestReconciler(d)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	high := wireAt("m1", testOtherID, base)
	high.Priority = "high"
	res := r.Observe([]backend.WireMessage{high})

	require.Len(t, res.Created, 1)
	assert.Equal(t, model.KindUrgent, res.Created[0].Kind)
}

func TestSeedSuppressesHistory(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestReconciler(d)
	startedAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	r.Seed(0, startedAt)

	feed := []backend.WireMessage{
		wireAt("m1", testOtherID, startedAt.Add(-time.Hour)),
		wireAt("m2", testOtherID, startedAt.Add(-time.Minute)),
		wireAt("m3", testOtherID, startedAt.Add(time.Minute)),
	}

	res := r.Observe(feed)
	require.Len(t, res.Created, 1)
	assert.Equal(t, startedAt.Add(time.Minute), r.Watermark())
}

func TestObserveDispatchFailureStillAdvances(t *testing.T) {
	d := &recordingDispatcher{err: fmt.Errorf("toast pipe broken")}
	r := newTestReconciler(d)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	res := r.Observe([]backend.WireMessage{wireAt("m1", testOtherID, base)})

	require.Len(t, res.Created, 1)
	assert.Equal(t, base, r.Watermark())
}

func TestObserveDefaultsTitleFromSender(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestReconciler(d)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	w := wireAt("m1", testOtherID, base)
	w.Subject = ""
	res := r.Observe([]backend.WireMessage{w})

	require.Len(t, res.Created, 1)
	assert.Equal(t, "New message from Ava Chen", res.Created[0].Title)
	assert.Equal(t, "Solar Farm Alpha", res.Created[0].ProjectTitle)
}

func TestNarrowRejectsUnknownPriority(t *testing.T) {
	w := wireAt("m1", testOtherID, time.Now().UTC())
	w.Priority = "asap"

	entry := Narrow(w)
	require.Error(t, entry.Err)
}

func TestNarrowDefaultsEmptyPriority(t *testing.T) {
	w := wireAt("m1", testOtherID, time.Now().UTC())
	w.Priority = ""

	entry := Narrow(w)
	require.NoError(t, entry.Err)
	assert.Equal(t, model.PriorityNormal, entry.Message.Priority)
}
