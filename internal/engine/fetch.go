package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tanq16/snatch/internal/utils"
	"golang.org/x/time/rate"
)

// maxErrorBodyBytes bounds how much of a rejection response is kept for
// diagnostics.
const maxErrorBodyBytes = 1024

// rateLimitedReader throttles reads through a shared token bucket so all
// parts together respect one job-wide cap.
type rateLimitedReader struct {
	reader  io.Reader
	limiter *rate.Limiter
}

func (r *rateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n <= 0 {
		return n, err
	}
	if waitErr := r.limiter.WaitN(context.Background(), n); waitErr != nil {
		return n, waitErr
	}
	return n, err
}

// fetchPart downloads one planned range. Anything other than 206 means the
// origin did not honor the range request and fails the part outright.
func (j *Job) fetchPart(client utils.HTTPDoer, target *Target, part Range, index int) ([]byte, error) {
	log := utils.GetLogger("fetch").With().Str("jobId", j.id.String()).Int("part", index).Logger()
	req, err := http.NewRequest("GET", target.String(), nil)
	if err != nil {
		return nil, &FetchError{Part: index, Err: err}
	}
	req.Header.Set("Range", part.Header())
	req.Header.Set("Connection", "keep-alive")
	log.Debug().Str("range", part.Header()).Msg("Sending range request")
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Part: index, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &FetchError{Part: index, Status: resp.StatusCode, Body: string(body), Err: ErrUnexpectedStatus}
	}
	data, err := j.streamBody(resp.Body, index, part.Size())
	if err != nil {
		return nil, &FetchError{Part: index, Err: err}
	}
	log.Debug().Int("bytes", len(data)).Msg("Part complete")
	return data, nil
}

// fetchWhole is the degenerate path for origins without usable range
// support: a plain GET expecting 200, streamed through the same loop.
func (j *Job) fetchWhole(client utils.HTTPDoer, target *Target, expected int64) ([]byte, error) {
	log := utils.GetLogger("fetch").With().Str("jobId", j.id.String()).Logger()
	req, err := http.NewRequest("GET", target.String(), nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	req.Header.Set("Connection", "keep-alive")
	log.Debug().Msg("Starting single-connection download")
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &FetchError{Status: resp.StatusCode, Body: string(body), Err: ErrUnexpectedStatus}
	}
	data, err := j.streamBody(resp.Body, 0, expected)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	log.Debug().Int("bytes", len(data)).Msg("Download stream complete")
	return data, nil
}

// streamBody consumes a response body chunk by chunk, honoring pause
// signals between reads and keeping this part's counters current. Speed is
// computed over active time only: time spent paused is subtracted from the
// wall clock. expected < 0 skips the final length check.
func (j *Job) streamBody(body io.Reader, index int, expected int64) ([]byte, error) {
	reader := body
	if j.limiter != nil {
		reader = &rateLimitedReader{reader: body, limiter: j.limiter}
	}
	var data []byte
	if expected > 0 {
		data = make([]byte, 0, expected)
	}
	buffer := make([]byte, utils.DefaultBufferSize)
	start := time.Now()
	var pausedFor time.Duration
	for {
		pausedFor += j.waitWhilePaused()
		n, err := reader.Read(buffer)
		if n > 0 {
			data = append(data, buffer[:n]...)
			j.recordProgress(index, int64(n), time.Since(start)-pausedFor)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if expected >= 0 && int64(len(data)) != expected {
		return nil, fmt.Errorf("read %d of %d bytes: %w", len(data), expected, io.ErrUnexpectedEOF)
	}
	return data, nil
}

// waitWhilePaused blocks while the job is paused and reports how long it
// slept. Any other status, including a failure raced in by another part,
// lets the caller proceed.
func (j *Job) waitWhilePaused() time.Duration {
	if j.Status() != StatusPaused {
		return 0
	}
	start := time.Now()
	for j.Status() == StatusPaused {
		time.Sleep(j.opts.PollInterval)
	}
	return time.Since(start)
}

func (j *Job) recordProgress(index int, delta int64, active time.Duration) {
	var totalSpeed float64
	j.mu.Lock()
	part := &j.progress[index]
	part.Downloaded += delta
	if active > 0 {
		part.Speed = float64(part.Downloaded) / active.Seconds()
	}
	if j.opts.OnProgress != nil {
		for i := range j.progress {
			totalSpeed += j.progress[i].Speed
		}
	}
	j.mu.Unlock()
	if j.opts.OnProgress != nil {
		j.opts.OnProgress(delta, totalSpeed)
	}
}
