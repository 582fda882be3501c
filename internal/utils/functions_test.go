package utils

import "testing"

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{16 * 1024 * 1024, "16.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, c := range cases {
		if got := FormatBytes(c.in); got != c.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatSpeed(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0 B/s"},
		{-10, "0 B/s"},
		{100, "100 B/s"},
		{2048, "2.00 KB/s"},
		{1.5 * 1024 * 1024, "1.50 MB/s"},
	}
	for _, c := range cases {
		if got := FormatSpeed(c.in); got != c.want {
			t.Errorf("FormatSpeed(%f) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseHeaderArgs(t *testing.T) {
	headers := ParseHeaderArgs([]string{
		"Authorization: Bearer abc123",
		"X-Custom:value",
		"novalue",
		": empty-key",
		"Accept: text/html, application/json",
	})
	if len(headers) != 3 {
		t.Fatalf("expected 3 headers, got %d: %v", len(headers), headers)
	}
	if headers["Authorization"] != "Bearer abc123" {
		t.Errorf("Authorization = %q", headers["Authorization"])
	}
	if headers["X-Custom"] != "value" {
		t.Errorf("X-Custom = %q", headers["X-Custom"])
	}
	if headers["Accept"] != "text/html, application/json" {
		t.Errorf("Accept = %q", headers["Accept"])
	}
}

func TestParseSize(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"512", 512, false},
		{"1K", 1024, false},
		{"1KB", 1024, false},
		{"2MB", 2 * 1024 * 1024, false},
		{"1.5M", 1536 * 1024, false},
		{"1g", 1024 * 1024 * 1024, false},
		{"  64k ", 64 * 1024, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-5M", 0, true},
	}
	for _, c := range cases {
		got, err := ParseSize(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseSize(%q) expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSize(%q) unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
