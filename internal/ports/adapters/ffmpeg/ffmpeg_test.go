package ffmpeg

import (
	"testing"
	"time"
)

func TestParseAspect(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{in: "9:16", w: 9, h: 16},
		{in: "16:9", w: 16, h: 9},
		{in: "1:1", w: 1, h: 1},
		{in: " 4 : 3 ", w: 4, h: 3},
		{in: "916", wantErr: true},
		{in: "9:sixteen", wantErr: true},
		{in: "0:16", wantErr: true},
		{in: "-9:16", wantErr: true},
	}
	for _, tc := range cases {
		w, h, err := ParseAspect(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseAspect(%q) = %d:%d, want error", tc.in, w, h)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseAspect(%q): %v", tc.in, err)
		}
		if w != tc.w || h != tc.h {
			t.Fatalf("ParseAspect(%q) = %d:%d, want %d:%d", tc.in, w, h, tc.w, tc.h)
		}
	}
}

func TestCropSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		w, h         int
		tw, th       int
		wantW, wantH int
	}{
		{name: "landscape to vertical", w: 1920, h: 1080, tw: 9, th: 16, wantW: 606, wantH: 1080},
		{name: "4k landscape to vertical", w: 3840, h: 2160, tw: 9, th: 16, wantW: 1214, wantH: 2160},
		{name: "already vertical", w: 1080, h: 1920, tw: 9, th: 16, wantW: 1080, wantH: 1920},
		{name: "landscape to square", w: 1920, h: 1080, tw: 1, th: 1, wantW: 1080, wantH: 1080},
		{name: "vertical to landscape", w: 1080, h: 1920, tw: 16, th: 9, wantW: 1080, wantH: 606},
		{name: "matching aspect unchanged", w: 1920, h: 1080, tw: 16, th: 9, wantW: 1920, wantH: 1080},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gotW, gotH := cropSize(tc.w, tc.h, tc.tw, tc.th)
			if gotW != tc.wantW || gotH != tc.wantH {
				t.Fatalf("cropSize(%dx%d -> %d:%d) = %dx%d, want %dx%d",
					tc.w, tc.h, tc.tw, tc.th, gotW, gotH, tc.wantW, tc.wantH)
			}
			if gotW%2 != 0 || gotH%2 != 0 {
				t.Fatalf("crop %dx%d has odd dimension", gotW, gotH)
			}
			if gotW > tc.w || gotH > tc.h {
				t.Fatalf("crop %dx%d exceeds source %dx%d", gotW, gotH, tc.w, tc.h)
			}
		})
	}
}

func TestFmtSeconds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		d    time.Duration
		want string
	}{
		{d: 0, want: "0.000"},
		{d: 1500 * time.Millisecond, want: "1.500"},
		{d: 90 * time.Second, want: "90.000"},
		{d: 3723*time.Second + 250*time.Millisecond, want: "3723.250"},
	}
	for _, tc := range cases {
		if got := fmtSeconds(tc.d); got != tc.want {
			t.Fatalf("fmtSeconds(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestEscapeFilterPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "/tmp/subs.ass", want: "/tmp/subs.ass"},
		{in: `C:\clips\subs.ass`, want: `C\:\\clips\\subs.ass`},
		{in: "a:b", want: `a\:b`},
	}
	for _, tc := range cases {
		if got := escapeFilterPath(tc.in); got != tc.want {
			t.Fatalf("escapeFilterPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
