package backend

import "time"

// Shutdown triggers recorded with each stop.
const (
	TriggerExitEvent = "exit_event"
	TriggerGuard     = "guard"
)

// LaunchRecord describes a backend that started.
type LaunchRecord struct {
	LaunchID  string
	PID       int
	Binary    string
	DataRoot  string
	StartedAt time.Time
}

// StopRecord describes how a launched backend ended.
type StopRecord struct {
	LaunchID  string
	StoppedAt time.Time
	Trigger   string
	Exit      string
	Forced    bool
}

// FailureRecord describes a launch that never produced a running backend.
type FailureRecord struct {
	LaunchID string
	At       time.Time
	Kind     string
	Message  string
	Binary   string
	DataRoot string
}

// Observer is notified of backend lifecycle transitions. Implementations
// must not block for long; they run on the supervising goroutine.
type Observer interface {
	LaunchStarted(LaunchRecord)
	LaunchStopped(StopRecord)
	LaunchFailed(FailureRecord)
}

type nopObserver struct{}

func (nopObserver) LaunchStarted(LaunchRecord) {}
func (nopObserver) LaunchStopped(StopRecord) {}
func (nopObserver) LaunchFailed(FailureRecord) {}
