package output

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tanq16/snatch/internal/engine"
	"github.com/tanq16/snatch/internal/utils"
)

// Display renders one job's live progress in place on a ticker. It works off
// point-in-time snapshots from the job, so it never blocks the fetchers.
type Display struct {
	job      *engine.Job
	tick     time.Duration
	doneCh   chan struct{}
	wg       sync.WaitGroup
	numLines int
}

func NewDisplay(job *engine.Job) *Display {
	return &Display{
		job:    job,
		tick:   300 * time.Millisecond,
		doneCh: make(chan struct{}),
	}
}

func (d *Display) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.render()
			case <-d.doneCh:
				d.render()
				return
			}
		}
	}()
}

// Stop draws the final state and shuts the render loop down.
func (d *Display) Stop() {
	close(d.doneCh)
	d.wg.Wait()
}

func (d *Display) render() {
	if d.numLines > 0 {
		fmt.Printf("\033[%dA\033[J", d.numLines)
	}
	lineCount := 0

	status := d.job.Status()
	info := d.job.FileInfo()
	progress := d.job.Progress()
	ranges := d.job.Ranges()

	name := "download"
	var total int64 = -1
	if info != nil {
		name = info.Filename
		total = info.Length
	}

	sizeText := utils.FormatBytes(uint64(d.job.TotalDownloaded()))
	if total > 0 {
		sizeText = fmt.Sprintf("%s / %s", sizeText, utils.FormatBytes(uint64(total)))
	}
	line := fmt.Sprintf("%s%s %s %s %s %s",
		strings.Repeat(" ", 2),
		statusIndicator(status),
		infoStyle.Render(name),
		debugStyle.Render(sizeText),
		StyleSymbols["bullet"],
		debugStyle.Render(utils.FormatSpeed(d.job.AggregateSpeed())))
	if status == engine.StatusPaused {
		line += " " + warningStyle.Render("paused")
	}
	fmt.Println(line)
	lineCount++

	// One bar per part; a single-connection transfer gets the summary line
	// only.
	if len(progress) > 1 && len(ranges) == len(progress) {
		indent := strings.Repeat(" ", 2+4)
		width := barWidth()
		for i, part := range progress {
			size := ranges[i].Size()
			if size <= 0 {
				continue
			}
			fmt.Printf("%s%s%s %s %s\n",
				indent,
				ProgressBar(part.Downloaded, size, width),
				streamStyle.Render(fmt.Sprintf("part %d", i+1)),
				StyleSymbols["bullet"],
				debugStyle.Render(utils.FormatSpeed(part.Speed)))
			lineCount++
		}
	}
	d.numLines = lineCount
}

func statusIndicator(status engine.Status) string {
	switch status {
	case engine.StatusDone:
		return successStyle.Render(StyleSymbols["pass"])
	case engine.StatusError:
		return errorStyle.Render(StyleSymbols["fail"])
	case engine.StatusPaused:
		return warningStyle.Render(StyleSymbols["warning"])
	case engine.StatusDownloading:
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}
