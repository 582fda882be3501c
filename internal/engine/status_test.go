package engine

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
		ok   bool
	}{
		{StatusIdle, StatusDownloading, true},
		{StatusIdle, StatusError, true},
		{StatusIdle, StatusPaused, false},
		{StatusIdle, StatusDone, false},
		{StatusDownloading, StatusPaused, true},
		{StatusDownloading, StatusDone, true},
		{StatusDownloading, StatusError, true},
		{StatusDownloading, StatusIdle, false},
		{StatusPaused, StatusDownloading, true},
		{StatusPaused, StatusError, true},
		{StatusPaused, StatusDone, true},
		{StatusPaused, StatusIdle, false},
		{StatusDone, StatusDownloading, false},
		{StatusDone, StatusError, false},
		{StatusError, StatusIdle, false},
		{StatusError, StatusDownloading, false},
	}
	for _, c := range cases {
		if got := c.from.canTransitionTo(c.to); got != c.ok {
			t.Errorf("transition %s -> %s = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestStatusActive(t *testing.T) {
	active := map[Status]bool{
		StatusIdle:        false,
		StatusDownloading: true,
		StatusPaused:      true,
		StatusDone:        false,
		StatusError:       false,
	}
	for status, want := range active {
		if got := status.Active(); got != want {
			t.Errorf("%s.Active() = %v, want %v", status, got, want)
		}
	}
}

func TestPauseResumeIdempotent(t *testing.T) {
	job := newTestJob(t)

	// Neither has any effect before the download starts.
	job.Pause()
	if got := job.Status(); got != StatusIdle {
		t.Fatalf("status after pause on idle job = %s, want %s", got, StatusIdle)
	}
	job.Resume()
	if got := job.Status(); got != StatusIdle {
		t.Fatalf("status after resume on idle job = %s, want %s", got, StatusIdle)
	}

	job.mu.Lock()
	job.status = StatusDownloading
	job.mu.Unlock()

	job.Pause()
	job.Pause() // repeated pause stays paused
	if got := job.Status(); got != StatusPaused {
		t.Fatalf("status after double pause = %s, want %s", got, StatusPaused)
	}
	job.Resume()
	job.Resume() // repeated resume stays downloading
	if got := job.Status(); got != StatusDownloading {
		t.Fatalf("status after double resume = %s, want %s", got, StatusDownloading)
	}
}
