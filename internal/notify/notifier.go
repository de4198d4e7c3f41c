// Package notify owns the aggregate notification center and the ports
// through which notification side effects leave the process.
package notify

import (
	"log"

	"github.com/verdantex/comms-center/internal/model"
)

// Permission is the native-notification permission lifecycle state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notifier is the capability port for user-facing notification side
// effects. Injecting it keeps the reconciler and the center testable
// without a real UI or desktop environment.
type Notifier interface {
	// ShowToast displays an in-app toast.
	ShowToast(n model.Notification) error

	// ShowNative displays a desktop notification. Only called for
	// urgent notifications and only after permission was granted.
	ShowNative(n model.Notification) error

	// RequestPermission asks the environment for native-notification
	// permission. Called at most once per process lifetime.
	RequestPermission() (Permission, error)
}

// Dispatcher fans one notification out to the in-app toast and, for
// urgent priority, a best-effort native popup gated by the permission
// lifecycle. All side-effect failures are logged and swallowed;
// nothing propagates to the caller.
type Dispatcher struct {
	notifier     Notifier
	nativeEnable bool
	permission   Permission
	requested    bool
	logf         func(format string, args ...any)
}

// NewDispatcher creates a dispatcher. nativeEnable mirrors the display
// config; when false, native popups are never attempted and permission
// is never requested.
func NewDispatcher(n Notifier, nativeEnable bool) *Dispatcher {
	return &Dispatcher{
		notifier:     n,
		nativeEnable: nativeEnable,
		permission:   PermissionDefault,
		logf:         log.Printf,
	}
}

// SetLogf overrides the logging hook. Tests only.
func (d *Dispatcher) SetLogf(logf func(format string, args ...any)) {
	d.logf = logf
}

// Permission returns the current permission lifecycle state.
func (d *Dispatcher) Permission() Permission {
	return d.permission
}

// Dispatch delivers the notification's side effects. Always returns
// nil: a denied permission is not an error and a failing toast or
// popup must never block the reconciler's watermark.
func (d *Dispatcher) Dispatch(n model.Notification) error {
	if err := d.notifier.ShowToast(n); err != nil {
		d.logf("comms: toast failed for %s: %v", n.ID, err)
	}

	if n.Priority != model.PriorityUrgent || !d.nativeEnable {
		return nil
	}

	if d.permission == PermissionDefault && !d.requested {
		d.requested = true
		perm, err := d.notifier.RequestPermission()
		if err != nil {
			d.logf("comms: notification permission request failed: %v", err)
			perm = PermissionDenied
		}
		d.permission = perm
	}

	if d.permission != PermissionGranted {
		return nil
	}

	if err := d.notifier.ShowNative(n); err != nil {
		d.logf("comms: native notification failed for %s: %v", n.ID, err)
	}
	return nil
}
