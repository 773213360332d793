package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func setBuildInfo(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })
	Version, GitCommit, BuildDate = version, commit, date
}

func runVersion(t *testing.T) string {
	t.Helper()
	root := newRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	return buf.String()
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name                  string
		version, commit, date string
		want                  []string
	}{
		{
			name:    "stamped build",
			version: "0.4.0",
			commit:  "9f2c1ab",
			date:    "2026-05-02T08:00:00Z",
			want:    []string{"Togather Planner", "Version:    0.4.0", "Git commit: 9f2c1ab", "Build date: 2026-05-02T08:00:00Z", "Go version:", "Platform:"},
		},
		{
			name:    "unstamped build",
			version: "dev",
			commit:  "unknown",
			date:    "unknown",
			want:    []string{"Version:    dev", "Git commit: unknown", "Build date: unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBuildInfo(t, tt.version, tt.commit, tt.date)
			output := runVersion(t)
			for _, s := range tt.want {
				if !strings.Contains(output, s) {
					t.Errorf("expected output to contain %q, got:\n%s", s, output)
				}
			}
		})
	}
}

// version must work on a bare machine: no database, no secret, no config file.
func TestVersionCommandNeedsNoServerConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PLANNER_CONFIG", "")
	setBuildInfo(t, "dev", "unknown", "unknown")

	if output := runVersion(t); !strings.Contains(output, "Togather Planner") {
		t.Errorf("unexpected version output:\n%s", output)
	}
}
