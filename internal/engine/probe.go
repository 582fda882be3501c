package engine

import (
	"fmt"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tanq16/snatch/internal/utils"
)

// FallbackFileName is used when neither Content-Disposition nor the URL
// path yields a usable name.
const FallbackFileName = "download_file"

// RangeSupport is the tri-state answer to "does the origin honor byte
// ranges". Unknown means the server sent no Accept-Ranges header at all.
type RangeSupport int

const (
	RangeSupportUnknown RangeSupport = iota
	RangeSupportYes
	RangeSupportNo
)

func (r RangeSupport) String() string {
	switch r {
	case RangeSupportYes:
		return "yes"
	case RangeSupportNo:
		return "no"
	default:
		return "unknown"
	}
}

// FileInfo is the probed metadata for a target. Length is -1 when the
// server did not report a Content-Length.
type FileInfo struct {
	RangeSupport RangeSupport
	Length       int64
	ContentType  string
	Filename     string
}

// Probe issues the preliminary GET and records the target's capabilities
// on the job. It must succeed before Start. Any failure moves the job to
// the error state.
func (j *Job) Probe() error {
	j.mu.Lock()
	target := j.target
	status := j.status
	j.mu.Unlock()
	if target == nil {
		return ErrNoTarget
	}
	if status != StatusIdle {
		return fmt.Errorf("cannot probe job in status %q", status)
	}

	clientCfg := j.opts.Client
	clientCfg.Timeout = j.opts.ProbeTimeout
	client := utils.NewSnatchHTTPClient(clientCfg)

	info, err := probeTarget(client, target)
	if err != nil {
		j.fail(err)
		return err
	}

	j.mu.Lock()
	if j.target == target { // target unchanged while probing
		j.info = info
	}
	j.mu.Unlock()
	j.log.Debug().
		Str("rangeSupport", info.RangeSupport.String()).
		Int64("length", info.Length).
		Str("filename", info.Filename).
		Msg("Probe complete")
	return nil
}

func probeTarget(client utils.HTTPDoer, target *Target) (*FileInfo, error) {
	req, err := http.NewRequest("GET", target.String(), nil)
	if err != nil {
		return nil, &ProbeError{URL: target.String(), Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &ProbeError{URL: target.String(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, &ProbeError{URL: target.String(), Err: fmt.Errorf("server returned error: %d", resp.StatusCode)}
	}
	info, err := extractFileInfo(resp)
	if err != nil {
		return nil, &ProbeError{URL: target.String(), Err: err}
	}
	return info, nil
}

// extractFileInfo derives capabilities from response headers alone, so it
// can be exercised without a live connection.
func extractFileInfo(resp *http.Response) (*FileInfo, error) {
	info := &FileInfo{Length: -1}

	if value := resp.Header.Get("Content-Length"); value != "" {
		size, err := strconv.ParseInt(value, 10, 64)
		if err != nil || size < 0 {
			return nil, fmt.Errorf("%w: content-length %q", ErrMalformedHeader, value)
		}
		info.Length = size
	}

	if value := resp.Header.Get("Accept-Ranges"); value != "" {
		info.RangeSupport = RangeSupportNo
		for _, token := range strings.Split(value, ",") {
			if strings.EqualFold(strings.TrimSpace(token), "bytes") {
				info.RangeSupport = RangeSupportYes
				break
			}
		}
	}

	info.ContentType = resp.Header.Get("Content-Type")

	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		name, err := fileNameFromDisposition(disposition)
		if err != nil {
			return nil, err
		}
		info.Filename = name
	} else if resp.Request != nil && resp.Request.URL != nil {
		info.Filename = fileNameFromPath(resp.Request.URL.Path)
	}
	if info.Filename == "" {
		info.Filename = FallbackFileName
	}
	return info, nil
}

// fileNameFromDisposition pulls a file name out of a Content-Disposition
// header. A header that exists but carries no usable filename parameter is
// a malformed-header failure, not a fallthrough.
func fileNameFromDisposition(disposition string) (string, error) {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		// ParseMediaType decodes RFC 5987 filename* values into the plain
		// filename key, but strips only double quotes; some servers use
		// single quotes.
		if fn := strings.Trim(params["filename"], `"'`); fn != "" {
			if name := sanitizeFileName(fn); name != "" {
				return name, nil
			}
		}
	}
	// Some servers emit dispositions mime.ParseMediaType rejects; scan for
	// the parameter directly before declaring the header unusable.
	for _, part := range strings.Split(disposition, ";") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(strings.ToLower(part), "filename=") {
			continue
		}
		value := part[len("filename="):]
		value = strings.Trim(value, `"'`)
		if name := sanitizeFileName(value); name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: content-disposition %q has no filename", ErrMalformedHeader, disposition)
}

func fileNameFromPath(urlPath string) string {
	// A trailing slash means the last segment is empty, not the directory
	// name path.Base would hand back.
	if urlPath == "" || strings.HasSuffix(urlPath, "/") {
		return ""
	}
	base := path.Base(urlPath)
	if base == "" || base == "/" || base == "." {
		return ""
	}
	return sanitizeFileName(base)
}

// sanitizeFileName strips any directory components a hostile header could
// smuggle into the sink's join.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
