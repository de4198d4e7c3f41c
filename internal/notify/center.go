package notify

import "github.com/verdantex/comms-center/internal/model"

// Center is the aggregate, user-facing notification list. It holds
// notifications for their lifetime in the client process; read and
// clear mutations are applied locally only after the backend confirms
// them (pessimistic-wait), so the local list never claims state the
// collaborator rejected.
//
// Single-owner: only the UI task mutates a Center.
type Center struct {
	notifications []model.Notification
}

// NewCenter creates an empty notification center.
func NewCenter() *Center {
	return &Center{}
}

// Add prepends notifications so the newest renders first.
func (c *Center) Add(ns ...model.Notification) {
	for _, n := range ns {
		c.notifications = append([]model.Notification{n}, c.notifications...)
	}
}

// Notifications returns a copy of the current list, newest first.
func (c *Center) Notifications() []model.Notification {
	out := make([]model.Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

// Get returns the notification with the given id.
func (c *Center) Get(id string) (model.Notification, bool) {
	for _, n := range c.notifications {
		if n.ID == id {
			return n, true
		}
	}
	return model.Notification{}, false
}

// ApplyRead flips one notification to read after the backend confirmed
// the mutation. Returns false when the id is unknown.
func (c *Center) ApplyRead(id string) bool {
	for i := range c.notifications {
		if c.notifications[i].ID == id {
			c.notifications[i].Read = true
			return true
		}
	}
	return false
}

// ApplyAllRead flips every notification to read after the backend
// confirmed the bulk mutation. All-or-nothing: it is only called on
// success, so a failed call leaves every item untouched.
func (c *Center) ApplyAllRead() {
	for i := range c.notifications {
		c.notifications[i].Read = true
	}
}

// Remove drops a notification after the backend confirmed deletion.
// Returns false when the id is unknown.
func (c *Center) Remove(id string) bool {
	for i := range c.notifications {
		if c.notifications[i].ID == id {
			c.notifications = append(
				c.notifications[:i], c.notifications[i+1:]...,
			)
			return true
		}
	}
	return false
}

// UnreadCount is the number of unread notifications. Recomputed from
// the list on every call so it can never drift from the items.
func (c *Center) UnreadCount() int {
	count := 0
	for _, n := range c.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// UrgentCount is the number of unread urgent-priority notifications.
// Every notification counted here is also counted by UnreadCount.
func (c *Center) UrgentCount() int {
	count := 0
	for _, n := range c.notifications {
		if !n.Read && n.IsUrgent() {
			count++
		}
	}
	return count
}

// Len returns the total number of notifications.
func (c *Center) Len() int {
	return len(c.notifications)
}
