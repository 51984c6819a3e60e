package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clipkit/clipkit/internal/types"
)

func validConfig() Config {
	return Config{
		Input:          "talk.mp4",
		SegmentsN:      3,
		MinSegment:     30 * time.Second,
		WindowInterval: 60,
		Aspect:         "9:16",
		WhisperModel:   "models/ggml-base.en.bin",
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	zero := validConfig()
	zero.SegmentsN = 0
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero segments is a legal dry run: %v", err)
	}

	cases := map[string]func(*Config){
		"empty input":          func(c *Config) { c.Input = "" },
		"negative segments":    func(c *Config) { c.SegmentsN = -1 },
		"negative min length":  func(c *Config) { c.MinSegment = -time.Second },
		"zero window interval": func(c *Config) { c.WindowInterval = 0 },
		"missing model":        func(c *Config) { c.WhisperModel = "" },
		"bad aspect":           func(c *Config) { c.Aspect = "vertical" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatal("want error")
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	m := types.Manifest{
		RunID: "r1",
		Input: "talk.mp4",
		Clips: []types.ManifestClip{{ID: "clip_001", File: "final_clips/a.mp4"}},
	}
	if err := writeJSON(path, m); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got types.Manifest
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RunID != "r1" || len(got.Clips) != 1 || got.Clips[0].ID != "clip_001" {
		t.Fatalf("round trip = %+v", got)
	}
}
