package engine

// Status is the job lifecycle state exposed to collaborators. Transitions
// are validated so presentation layers can never drive the job into an
// inconsistent state.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusDownloading Status = "downloading"
	StatusPaused      Status = "paused"
	StatusDone        Status = "done"
	StatusError       Status = "error"
)

func (s Status) canTransitionTo(to Status) bool {
	switch s {
	case StatusIdle:
		return to == StatusDownloading || to == StatusError
	case StatusDownloading:
		return to == StatusPaused || to == StatusDone || to == StatusError
	case StatusPaused:
		// Parts past their final read finish regardless of a pause, so a
		// paused job can still complete: completion wins the race.
		return to == StatusDownloading || to == StatusDone || to == StatusError
	default: // Done and Error are terminal
		return false
	}
}

// Active reports whether the job holds in-flight work.
func (s Status) Active() bool {
	return s == StatusDownloading || s == StatusPaused
}
