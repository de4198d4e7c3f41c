package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantex/comms-center/internal/model"
)

func sampleNotification(id string, kind model.NotificationKind, p model.Priority) model.Notification {
	return model.Notification{
		ID:           id,
		Kind:         kind,
		Title:        "Verification update",
		Body:         "The auditor confirmed the batch.",
		ProjectID:    "proj-solar",
		ProjectTitle: "Solar Farm Alpha",
		SenderID:     "user-ava",
		SenderName:   "Ava Chen",
		Priority:     p,
		CreatedAt:    time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestCenterAddPrependsNewest(t *testing.T) {
	c := NewCenter()
	c.Add(sampleNotification("n1", model.KindMessage, model.PriorityNormal))
	c.Add(sampleNotification("n2", model.KindReply, model.PriorityNormal))

	ns := c.Notifications()
	require.Len(t, ns, 2)
	assert.Equal(t, "n2", ns[0].ID)
	assert.Equal(t, "n1", ns[1].ID)
}

func TestCenterCounts(t *testing.T) {
	c := NewCenter()
	c.Add(
		sampleNotification("n1", model.KindMessage, model.PriorityNormal),
		sampleNotification("n2", model.KindUrgent, model.PriorityUrgent),
		sampleNotification("n3", model.KindUrgent, model.PriorityHigh),
	)

	assert.Equal(t, 3, c.UnreadCount())
	// High priority is not urgent; only the urgent-priority item counts.
	assert.Equal(t, 1, c.UrgentCount())

	require.True(t, c.ApplyRead("n2"))
	assert.Equal(t, 2, c.UnreadCount())
	assert.Zero(t, c.UrgentCount())
}

func TestCenterApplyReadUnknownID(t *testing.T) {
	c := NewCenter()
	c.Add(sampleNotification("n1", model.KindMessage, model.PriorityNormal))

	assert.False(t, c.ApplyRead("missing"))
	assert.Equal(t, 1, c.UnreadCount())
}

func TestCenterApplyAllRead(t *testing.T) {
	c := NewCenter()
	c.Add(
		sampleNotification("n1", model.KindMessage, model.PriorityNormal),
		sampleNotification("n2", model.KindUrgent, model.PriorityUrgent),
	)

	c.ApplyAllRead()
	assert.Zero(t, c.UnreadCount())
	assert.Zero(t, c.UrgentCount())
	assert.Equal(t, 2, c.Len())
}

func TestCenterRemove(t *testing.T) {
	c := NewCenter()
	c.Add(
		sampleNotification("n1", model.KindMessage, model.PriorityNormal),
		sampleNotification("n2", model.KindReply, model.PriorityNormal),
	)

	require.True(t, c.Remove("n1"))
	assert.False(t, c.Remove("n1"))
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("n1")
	assert.False(t, ok)
	got, ok := c.Get("n2")
	require.True(t, ok)
	assert.Equal(t, "n2", got.ID)
}

func TestCenterNotificationsReturnsCopy(t *testing.T) {
	c := NewCenter()
	c.Add(sampleNotification("n1", model.KindMessage, model.PriorityNormal))

	ns := c.Notifications()
	ns[0].Read = true

	assert.Equal(t, 1, c.UnreadCount())
}

// fakeNotifier scripts permission outcomes and records side effects.
type fakeNotifier struct {
	toasts             []model.Notification
	natives            []model.Notification
	permission         Permission
	permissionErr      error
	permissionRequests int
	toastErr           error
	nativeErr          error
}

func (f *fakeNotifier) ShowToast(n model.Notification) error {
	f.toasts = append(f.toasts, n)
	return f.toastErr
}

func (f *fakeNotifier) ShowNative(n model.Notification) error {
	f.natives = append(f.natives, n)
	return f.nativeErr
}

func (f *fakeNotifier) RequestPermission() (Permission, error) {
	f.permissionRequests++
	return f.permission, f.permissionErr
}

func TestDispatchToastsEveryNotification(t *testing.T) {
	f := &fakeNotifier{permission: PermissionGranted}
	d := NewDispatcher(f, true)
	d.SetLogf(func(string, ...any) {})

	require.NoError(t, d.Dispatch(sampleNotification("n1", model.KindMessage, model.PriorityNormal)))
	require.NoError(t, d.Dispatch(sampleNotification("n2", model.KindUrgent, model.PriorityUrgent)))

	assert.Len(t, f.toasts, 2)
	assert.Len(t, f.natives, 1)
	assert.Equal(t, "n2", f.natives[0].ID)
}

func TestDispatchRequestsPermissionAtMostOnce(t *testing.T) {
	f := &fakeNotifier{permission: PermissionGranted}
	d := NewDispatcher(f, true)
	d.SetLogf(func(string, ...any) {})

	urgent := sampleNotification("n1", model.KindUrgent, model.PriorityUrgent)
	require.NoError(t, d.Dispatch(urgent))
	require.NoError(t, d.Dispatch(urgent))
	require.NoError(t, d.Dispatch(urgent))

	assert.Equal(t, 1, f.permissionRequests)
	assert.Equal(t, PermissionGranted, d.Permission())
	assert.Len(t, f.natives, 3)
}

func TestDispatchDeniedSkipsNative(t *testing.T) {
	f := &fakeNotifier{permission: PermissionDenied}
	d := NewDispatcher(f, true)
	d.SetLogf(func(string, ...any) {})

	urgent := sampleNotification("n1", model.KindUrgent, model.PriorityUrgent)
	require.NoError(t, d.Dispatch(urgent))
	require.NoError(t, d.Dispatch(urgent))

	assert.Equal(t, 1, f.permissionRequests)
	assert.Empty(t, f.natives)
	assert.Len(t, f.toasts, 2)
}

func TestDispatchNativeDisabledNeverRequests(t *testing.T) {
	f := &fakeNotifier{permission: PermissionGranted}
	d := NewDispatcher(f, false)
	d.SetLogf(func(string, ...any) {})

	urgent := sampleNotification("n1", model.KindUrgent, model.PriorityUrgent)
	require.NoError(t, d.Dispatch(urgent))

	assert.Zero(t, f.permissionRequests)
	assert.Empty(t, f.natives)
	assert.Len(t, f.toasts, 1)
}

func TestDispatchSwallowsFailures(t *testing.T) {
	f := &fakeNotifier{
		permission: PermissionGranted,
		toastErr:   fmt.Errorf("render failed"),
		nativeErr:  fmt.Errorf("notify-send missing"),
	}
	d := NewDispatcher(f, true)
	d.SetLogf(func(string, ...any) {})

	assert.NoError(t, d.Dispatch(sampleNotification("n1", model.KindUrgent, model.PriorityUrgent)))
}

func TestDispatchPermissionErrorTreatedAsDenied(t *testing.T) {
	f := &fakeNotifier{
		permission:    PermissionDefault,
		permissionErr: fmt.Errorf("no desktop session"),
	}
	d := NewDispatcher(f, true)
	d.SetLogf(func(string, ...any) {})

	urgent := sampleNotification("n1", model.KindUrgent, model.PriorityUrgent)
	require.NoError(t, d.Dispatch(urgent))

	assert.Equal(t, PermissionDenied, d.Permission())
	assert.Empty(t, f.natives)
}
