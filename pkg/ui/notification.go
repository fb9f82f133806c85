package ui

import (
	"time"

	"gitlab.com/tinyland/lab/glim/pkg/notice"
)

// noticeDisplayTime is how long a notification stays on screen before
// it dismisses itself.
const noticeDisplayTime = 6 * time.Second

// notificationState is the single visible notification slot.
type notificationState struct {
	Notice   notice.Notice
	deadline time.Time
}

// Notification returns the currently displayed notice, nil when the
// slot is empty.
func (w *StatefulWidgets) Notification() *notice.Notice {
	if w.notification == nil {
		return nil
	}
	return &w.notification.Notice
}

func (w *StatefulWidgets) showNotification(n notice.Notice) {
	w.notification = &notificationState{
		Notice:   n,
		deadline: w.now().Add(noticeDisplayTime),
	}
}

func (w *StatefulWidgets) expireNotification(now time.Time) {
	if w.notification != nil && now.After(w.notification.deadline) {
		w.notification = nil
	}
}

// syncNotification runs after every message: a queued error evicts a
// displayed info notice, and an empty slot pulls the next notice from
// the queue.
func (w *StatefulWidgets) syncNotification() {
	if w.notification != nil && w.notices.HasError() &&
		w.notification.Notice.Level == notice.LevelInfo {
		w.notification = nil
	}

	if w.notification == nil {
		if n := w.notices.Pop(); n != nil {
			w.showNotification(*n)
		}
	}
}
