package app

import (
	"fmt"
	"os/exec"

	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/internal/notify"
)

// Toaster is the terminal-side notify.Notifier. Toasts are queued here
// and drained into the status banner by the root model; native popups
// go through notify-send when the desktop has it.
type Toaster struct {
	queue []string
}

// NewToaster creates an empty toaster.
func NewToaster() *Toaster {
	return &Toaster{}
}

// ShowToast queues an in-app toast line.
func (t *Toaster) ShowToast(n model.Notification) error {
	text := n.Title
	if n.SenderName != "" && n.Kind != model.KindSystem {
		text = fmt.Sprintf("%s · %s", n.SenderName, n.Title)
	}
	t.queue = append(t.queue, text)
	return nil
}

// Drain returns and clears the queued toasts.
func (t *Toaster) Drain() []string {
	q := t.queue
	t.queue = nil
	return q
}

// RequestPermission probes for a desktop notification helper. There is
// no interactive prompt on a terminal; having notify-send on PATH is
// the grant.
func (t *Toaster) RequestPermission() (notify.Permission, error) {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return notify.PermissionDenied, nil
	}
	return notify.PermissionGranted, nil
}

// ShowNative displays a desktop notification via notify-send.
func (t *Toaster) ShowNative(n model.Notification) error {
	cmd := exec.Command(
		"notify-send",
		"--urgency=critical",
		"--app-name=comms-center",
		n.Title,
		n.Body,
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running notify-send: %w", err)
	}
	return nil
}
