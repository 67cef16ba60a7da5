package queue

import "errors"

var (
	ErrOfficeNotFound  = errors.New("office not found")
	ErrQueueEmpty      = errors.New("queue is empty")
	ErrNoActiveTicket  = errors.New("no active ticket")
	ErrCounterNotReady = errors.New("counter not ready")
	ErrAnnouncing      = errors.New("announcement in progress")
	ErrAnnounceFailed  = errors.New("announcement service failed")
)
