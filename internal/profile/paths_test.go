package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func withBaseDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	baseDirOverride = dir
	t.Cleanup(func() { baseDirOverride = "" })
	return dir
}

func TestDir(t *testing.T) {
	base := withBaseDir(t)
	got := Dir("main")
	want := filepath.Join(base, "profiles", "main")
	if got != want {
		t.Errorf("Dir(main) = %q, want %q", got, want)
	}
}

func TestBaseDirEnv(t *testing.T) {
	t.Setenv("VTRACK_HOME", "/srv/vtrack")
	if got := BaseDir(); got != "/srv/vtrack" {
		t.Errorf("BaseDir() = %q, want /srv/vtrack", got)
	}
}

func TestFilePaths(t *testing.T) {
	withBaseDir(t)
	tests := []struct {
		name   string
		got    string
		suffix string
	}{
		{"control socket", ControlSocketPath("test"), filepath.Join("profiles", "test", "control.sock")},
		{"lock", LockPath("test"), filepath.Join("profiles", "test", "LOCK")},
		{"db", DBPath("test"), filepath.Join("profiles", "test", "vtrack.db")},
		{"auth", AuthPath("test"), filepath.Join("profiles", "test", "auth.json")},
		{"daemon log", DaemonLogPath("test"), filepath.Join("profiles", "test", "logs", "vtrackd.log")},
		{"client log", ClientLogPath("test"), filepath.Join("profiles", "test", "logs", "vtrack.log")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasSuffix(tt.got, tt.suffix) {
				t.Errorf("%s = %q, want suffix %s", tt.name, tt.got, tt.suffix)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	withBaseDir(t)
	if err := EnsureDir("test"); err != nil {
		t.Fatal(err)
	}

	for _, d := range []string{Dir("test"), LogDir("test")} {
		info, err := os.Stat(d)
		if err != nil {
			t.Fatalf("%s not created: %v", d, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", d)
		}
		if perm := info.Mode().Perm(); perm != 0700 {
			t.Errorf("%s permission = %o, want 0700", d, perm)
		}
	}
}

func TestResolve(t *testing.T) {
	base := withBaseDir(t)

	if got := Resolve("override"); got != "override" {
		t.Errorf("Resolve(override) = %q", got)
	}
	if got := Resolve(""); got != DefaultName {
		t.Errorf("Resolve(\"\") without config = %q, want %q", got, DefaultName)
	}

	cfg := "default_profile = \"gate-2\"\n"
	if err := os.WriteFile(filepath.Join(base, "config.toml"), []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}
	if got := Resolve(""); got != "gate-2" {
		t.Errorf("Resolve(\"\") with config = %q, want gate-2", got)
	}
}
