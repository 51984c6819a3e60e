//go:build integration

package itest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

const cliTimeout = 120 * time.Second

type robustCase struct {
	name            string
	args            func(t *testing.T, repoRoot string) []string
	env             map[string]string
	wantContains    []string
	wantNotContains []string
}

type cliRunResult struct {
	exitCode int
	output   string
}

func TestRobustness_ArgsValidation(t *testing.T) {
	repoRoot := mustRepoRoot(t)

	cases := []robustCase{
		{
			name: "no args",
			args: staticArgs(),
			wantContains: []string{
				"accepts 1 arg(s), received 0",
			},
		},
		{
			name: "too many args",
			args: staticArgs("sample.mp4", "extra"),
			wantContains: []string{
				"accepts 1 arg(s), received 2",
			},
		},
		{
			name: "unknown flag",
			args: staticArgs("sample.mp4", "--wat"),
			wantContains: []string{
				"unknown flag: --wat",
			},
		},
		{
			name: "segments non int",
			args: staticArgs("sample.mp4", "--segments", "nope"),
			wantContains: []string{
				`invalid argument "nope" for "--segments"`,
			},
		},
		{
			name: "segments negative",
			args: staticArgs("sample.mp4", "--segments=-1"),
			env: map[string]string{
				"CLIPKIT_WHISPER_MODEL": "dummy.bin",
			},
			wantContains: []string{
				"config: segments must be >= 0",
			},
		},
		{
			name: "min length negative",
			args: staticArgs("sample.mp4", "--min-length=-5"),
			env: map[string]string{
				"CLIPKIT_WHISPER_MODEL": "dummy.bin",
			},
			wantContains: []string{
				"config: min segment length must be >= 0",
			},
		},
		{
			name: "aspect not a ratio",
			args: staticArgs("sample.mp4", "--aspect", "vertical"),
			env: map[string]string{
				"CLIPKIT_WHISPER_MODEL": "dummy.bin",
			},
			wantContains: []string{
				"want W:H",
			},
		},
		{
			name: "missing whisper model",
			args: staticArgs("sample.mp4"),
			env: map[string]string{
				"CLIPKIT_WHISPER_MODEL": "",
			},
			wantContains: []string{
				"whisper model path is required",
			},
		},
		{
			name: "chapters without input",
			args: staticArgs("chapters"),
			wantContains: []string{
				"accepts 1 arg(s), received 0",
			},
		},
	}

	runRobustCases(t, repoRoot, cases)
}

func TestRobustness_InvalidInputMedia(t *testing.T) {
	repoRoot := mustRepoRoot(t)

	cases := []robustCase{
		{
			name: "missing input path",
			args: func(t *testing.T, _ string) []string {
				t.Helper()
				tmp := t.TempDir()
				return []string{filepath.Join(tmp, "does-not-exist.mp4"), "--out", filepath.Join(tmp, "out")}
			},
			env: map[string]string{
				"CLIPKIT_WHISPER_MODEL": "dummy.bin",
			},
			wantContains: []string{
				"input video",
			},
		},
		{
			name: "input is directory",
			args: func(t *testing.T, _ string) []string {
				t.Helper()
				tmp := t.TempDir()
				return []string{tmp, "--out", filepath.Join(tmp, "out")}
			},
			env: map[string]string{
				"CLIPKIT_WHISPER_MODEL": "dummy.bin",
			},
			wantContains: []string{
				"is a directory",
			},
		},
		{
			name: "input is non media file",
			args: func(t *testing.T, _ string) []string {
				t.Helper()
				tmp := t.TempDir()
				fake := filepath.Join(tmp, "not-media.mp4")
				if err := os.WriteFile(fake, []byte("plain text, no moov atom here"), 0o644); err != nil {
					t.Fatalf("write fixture: %v", err)
				}
				return []string{fake, "--out", filepath.Join(tmp, "out")}
			},
			env: map[string]string{
				"CLIPKIT_WHISPER_MODEL": "dummy.bin",
			},
			wantContains: []string{
				"ffmpeg extract audio:",
			},
		},
		{
			name: "out points to file",
			args: func(t *testing.T, _ string) []string {
				t.Helper()
				tmp := t.TempDir()
				outFile := filepath.Join(tmp, "out-file")
				if err := os.WriteFile(outFile, []byte("x"), 0o644); err != nil {
					t.Fatalf("write out file fixture: %v", err)
				}
				return []string{"sample.mp4", "--out", filepath.Join(outFile, "nested")}
			},
			env: map[string]string{
				"CLIPKIT_WHISPER_MODEL": "dummy.bin",
			},
			wantContains: []string{
				"not a directory",
			},
		},
		{
			name: "history with no recorded runs",
			args: func(t *testing.T, _ string) []string {
				t.Helper()
				return []string{"history", "--out", t.TempDir()}
			},
			wantContains: []string{
				"no run history at",
			},
		},
	}

	runRobustCases(t, repoRoot, cases)
}

func runRobustCases(t *testing.T, repoRoot string, cases []robustCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := runCLI(t, repoRoot, tc.args(t, repoRoot), tc.env)
			if res.exitCode == 0 {
				t.Fatalf("expected non-zero exit code, got 0\noutput:\n%s", res.output)
			}
			for _, want := range tc.wantContains {
				if !strings.Contains(res.output, want) {
					t.Fatalf("expected output to contain %q\noutput:\n%s", want, res.output)
				}
			}
			for _, notWant := range tc.wantNotContains {
				if strings.Contains(res.output, notWant) {
					t.Fatalf("expected output to not contain %q\noutput:\n%s", notWant, res.output)
				}
			}
		})
	}
}

func runCLI(t *testing.T, repoRoot string, args []string, env map[string]string) cliRunResult {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	cmdArgs := append([]string{"run", "./cmd/clipkit"}, args...)
	cmd := exec.CommandContext(ctx, "go", cmdArgs...)
	cmd.Dir = repoRoot
	cmd.Env = mergeEnv(
		os.Environ(),
		map[string]string{
			"NO_COLOR": "1",
			"TERM":     "dumb",
		},
		env,
	)

	out, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Fatalf("command timed out after %s: go %s", cliTimeout, strings.Join(cmdArgs, " "))
	}

	res := cliRunResult{output: string(out)}
	if err == nil {
		res.exitCode = 0
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.exitCode = exitErr.ExitCode()
		return res
	}

	t.Fatalf("run command: %v\noutput:\n%s", err, string(out))
	return cliRunResult{}
}

func mergeEnv(base []string, overrides ...map[string]string) []string {
	env := make(map[string]string, len(base))
	for _, kv := range base {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		env[kv[:i]] = kv[i+1:]
	}

	for _, set := range overrides {
		for k, v := range set {
			env[k] = v
		}
	}

	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}

func staticArgs(args ...string) func(t *testing.T, _ string) []string {
	clone := append([]string(nil), args...)
	return func(t *testing.T, _ string) []string {
		t.Helper()
		return append([]string(nil), clone...)
	}
}
