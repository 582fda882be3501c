package engine

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tanq16/snatch/internal/utils"
	"golang.org/x/time/rate"
)

const (
	DefaultConnections  = 4
	DefaultProbeTimeout = 3 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// PartProgress holds the live counters for one planned range. Downloaded
// only ever grows; Speed is bytes per second over this part's active
// (non-paused) transfer time.
type PartProgress struct {
	Downloaded int64
	Speed      float64
}

// Options configures a job before creation. The zero value is unusable;
// start from DefaultOptions.
type Options struct {
	// Connections is the maximum number of parallel range fetches.
	Connections int
	// Client shapes every request the job issues (user agent, headers,
	// proxy). Timeouts are managed per purpose: probes get ProbeTimeout,
	// fetches stream without an overall deadline.
	Client utils.HTTPClientConfig
	// ProbeTimeout bounds the preliminary capability request.
	ProbeTimeout time.Duration
	// PollInterval is how often paused fetchers re-check the job status.
	PollInterval time.Duration
	// RateLimit caps aggregate download throughput in bytes per second
	// across all parts. 0 means unlimited.
	RateLimit int64
	// OnProgress, when set, receives every consumed chunk's byte count
	// together with the current sum of all part speeds. It is invoked
	// concurrently from the part fetchers.
	OnProgress func(delta int64, totalSpeed float64)
}

func DefaultOptions() Options {
	return Options{
		Connections:  DefaultConnections,
		ProbeTimeout: DefaultProbeTimeout,
		PollInterval: DefaultPollInterval,
	}
}

// Job is the unit of ownership for one transfer: target, probed metadata,
// per-part progress and status all live and die with it. All mutable state
// sits behind one mutex; methods take point-in-time snapshots rather than
// handing out references.
type Job struct {
	id      uuid.UUID
	opts    Options
	limiter *rate.Limiter
	log     zerolog.Logger

	mu       sync.Mutex
	target   *Target
	outDir   string
	info     *FileInfo
	status   Status
	ranges   []Range
	progress []PartProgress
}

func NewJob(opts Options) (*Job, error) {
	if opts.Connections < 1 {
		return nil, fmt.Errorf("connections must be positive, got %d", opts.Connections)
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	j := &Job{
		id:     uuid.New(),
		opts:   opts,
		status: StatusIdle,
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < utils.DefaultBufferSize {
			burst = utils.DefaultBufferSize
		}
		j.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	j.log = utils.GetLogger("engine").With().Str("jobId", j.id.String()).Logger()
	return j, nil
}

func (j *Job) ID() uuid.UUID {
	return j.id
}

// SetTarget validates and records the download URL. Changing the target
// discards any previous probe result.
func (j *Job) SetTarget(raw string) error {
	target, err := ParseTarget(raw)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusIdle {
		return fmt.Errorf("cannot change target in status %q", j.status)
	}
	j.target = target
	j.info = nil
	return nil
}

// SetOutputDir records where the finished file lands. The directory itself
// is created lazily by the sink; an existing non-directory path is rejected
// here.
func (j *Job) SetOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	cleaned := filepath.Clean(dir)
	if stat, err := os.Stat(cleaned); err == nil && !stat.IsDir() {
		return fmt.Errorf("%w: %s exists and is not a directory", ErrInvalidPath, cleaned)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusIdle {
		return fmt.Errorf("cannot change output directory in status %q", j.status)
	}
	j.outDir = cleaned
	return nil
}

// Start runs the whole transfer to completion: plan, concurrent part
// fetches, in-order assembly, persistence. It blocks until the job is Done
// or Error. The job must have been probed and given an output directory.
func (j *Job) Start() error {
	j.mu.Lock()
	if j.info == nil {
		j.mu.Unlock()
		return ErrNotProbed
	}
	if j.outDir == "" {
		j.mu.Unlock()
		return ErrNoOutputDir
	}
	if !j.setStatusLocked(StatusDownloading) {
		status := j.status
		j.mu.Unlock()
		return fmt.Errorf("cannot start job in status %q", status)
	}
	info := *j.info
	target := j.target
	outDir := j.outDir
	j.mu.Unlock()

	ranged := info.RangeSupport == RangeSupportYes && info.Length > 0
	parallelism := j.opts.Connections
	if !ranged {
		parallelism = 1
	}
	ranges := PlanRanges(info.Length, parallelism, info.RangeSupport)

	j.mu.Lock()
	j.ranges = ranges
	j.progress = make([]PartProgress, len(ranges))
	j.mu.Unlock()
	j.log.Info().
		Str("url", target.String()).
		Int("parts", len(ranges)).
		Int64("length", info.Length).
		Msg("Starting download")

	clientCfg := j.opts.Client
	clientCfg.Timeout = 0
	clientCfg.HighThroughput = clientCfg.HighThroughput || len(ranges) > 5
	client := utils.NewSnatchHTTPClient(clientCfg)

	results := make([][]byte, len(ranges))
	failures := make([]error, len(ranges))
	var wg sync.WaitGroup
	for i := range ranges {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if ranged {
				results[i], failures[i] = j.fetchPart(client, target, ranges[i], i)
			} else {
				results[i], failures[i] = j.fetchWhole(client, target, info.Length)
			}
		}(i)
	}
	wg.Wait()

	for _, err := range failures {
		if err != nil {
			j.fail(err)
			return err
		}
	}

	var assembled bytes.Buffer
	if info.Length > 0 {
		assembled.Grow(int(info.Length))
	}
	for _, part := range results {
		assembled.Write(part)
	}

	if err := writeFile(assembled.Bytes(), info.Filename, outDir); err != nil {
		j.fail(err)
		return err
	}
	j.setStatus(StatusDone)
	j.log.Info().
		Str("file", filepath.Join(outDir, info.Filename)).
		Int("bytes", assembled.Len()).
		Msg("Download complete")
	return nil
}

// Pause asks in-flight fetchers to hold between chunks. Takes effect within
// one poll interval; a no-op unless the job is downloading.
func (j *Job) Pause() {
	if j.setStatus(StatusPaused) {
		j.log.Debug().Msg("Download paused")
	}
}

// Resume lets paused fetchers continue. A no-op unless the job is paused.
func (j *Job) Resume() {
	j.mu.Lock()
	resumed := j.status == StatusPaused && j.setStatusLocked(StatusDownloading)
	j.mu.Unlock()
	if resumed {
		j.log.Debug().Msg("Download resumed")
	}
}

func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Progress returns a point-in-time copy of every part's counters, indexed
// by range position.
func (j *Job) Progress() []PartProgress {
	j.mu.Lock()
	defer j.mu.Unlock()
	snapshot := make([]PartProgress, len(j.progress))
	copy(snapshot, j.progress)
	return snapshot
}

// Ranges returns the planned byte ranges, in range order. Empty until Start
// has planned the transfer.
func (j *Job) Ranges() []Range {
	j.mu.Lock()
	defer j.mu.Unlock()
	snapshot := make([]Range, len(j.ranges))
	copy(snapshot, j.ranges)
	return snapshot
}

// FileInfo returns a copy of the probed capabilities, or nil before a
// successful probe.
func (j *Job) FileInfo() *FileInfo {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.info == nil {
		return nil
	}
	info := *j.info
	return &info
}

// TotalDownloaded sums bytes received across all parts.
func (j *Job) TotalDownloaded() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	var total int64
	for i := range j.progress {
		total += j.progress[i].Downloaded
	}
	return total
}

// AggregateSpeed sums the current per-part speeds in bytes per second.
func (j *Job) AggregateSpeed() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	var total float64
	for i := range j.progress {
		total += j.progress[i].Speed
	}
	return total
}

// OutputPath is where the finished file will land, or "" until both the
// probe and the output directory are in place.
func (j *Job) OutputPath() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.info == nil || j.outDir == "" {
		return ""
	}
	return filepath.Join(j.outDir, filepath.Base(j.info.Filename))
}

func (j *Job) setStatus(to Status) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.setStatusLocked(to)
}

func (j *Job) setStatusLocked(to Status) bool {
	if !j.status.canTransitionTo(to) {
		return false
	}
	j.status = to
	return true
}

func (j *Job) fail(err error) {
	j.setStatus(StatusError)
	j.log.Error().Err(err).Msg("Job failed")
}
