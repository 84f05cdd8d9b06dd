package types

// RunStatus represents the current state of a workflow run on the server
type RunStatus string

const (
	StatusQueued    RunStatus = "queued"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Terminal reports whether a run in this status will never change again
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
