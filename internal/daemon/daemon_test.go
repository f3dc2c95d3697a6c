package daemon

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/schoolwatch/vtrack/internal/lock"
	"github.com/schoolwatch/vtrack/internal/profile"
	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// shortTempDir keeps unix socket paths under the 104-char macOS limit.
func shortTempDir(t *testing.T, pattern string) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", pattern)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

func TestControlServerHealth(t *testing.T) {
	socketPath := filepath.Join(shortTempDir(t, "vtrack-ctl-*"), "c.sock")

	srv, err := NewControlServer(Params{ProfileName: "test", ControlSocketPath: socketPath}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = srv.Start() }()

	info, err := os.Stat(socketPath)
	if err != nil {
		t.Fatalf("socket not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("socket perm = %o, want 0600", perm)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Probe(ctx, socketPath); err == nil {
		t.Error("Probe() before SetServing(true) should fail")
	}
	srv.SetServing(true)
	if err := Probe(ctx, socketPath); err != nil {
		t.Errorf("Probe() after SetServing(true) = %v", err)
	}

	srv.Stop(context.Background())
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Errorf("socket still present after Stop: %v", err)
	}
	if Running(socketPath) {
		t.Error("Running() = true after Stop")
	}
}

func TestControlServerReplacesStaleSocket(t *testing.T) {
	socketPath := filepath.Join(shortTempDir(t, "vtrack-stale-*"), "c.sock")
	if err := os.WriteFile(socketPath, []byte("stale"), 0600); err != nil {
		t.Fatal(err)
	}

	srv, err := NewControlServer(Params{ControlSocketPath: socketPath}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewControlServer() over stale file: %v", err)
	}
	srv.Stop(context.Background())
}

func TestHTTPServerPortConflict(t *testing.T) {
	first, err := NewHTTPServer(Params{ListenAddr: "127.0.0.1:0"}, http.NotFoundHandler(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = first.Stop(context.Background()) }()

	if _, err := NewHTTPServer(Params{ListenAddr: first.Addr()}, http.NotFoundHandler(), zap.NewNop()); err == nil {
		t.Error("second listener on the same address should fail")
	}
}

// TestFxModuleLifecycle boots the whole graph against a temp VTRACK_HOME
// and drives one request through the REST API.
func TestFxModuleLifecycle(t *testing.T) {
	home := shortTempDir(t, "vtrack-fx-*")
	t.Setenv("VTRACK_HOME", home)

	var httpSrv *HTTPServer
	app := fx.New(
		Module(Params{ProfileName: "fxtest", ListenAddr: "127.0.0.1:0"}),
		fx.Populate(&httpSrv),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		t.Fatalf("fx graph: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	socketPath := profile.ControlSocketPath("fxtest")
	if !WaitReady(socketPath, 5*time.Second) {
		t.Fatal("daemon never reported SERVING")
	}

	base := "http://" + httpSrv.Addr()
	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if strings.TrimSpace(string(body)) != "OK" {
		t.Errorf("/health = %q", body)
	}

	resp, err = http.Post(base+"/api/register", "application/json",
		strings.NewReader(`{"username":"guard1","email":"g1@x","password":"pw"}`))
	if err != nil {
		t.Fatal(err)
	}
	var reg wire.UserResponse
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if !reg.Success {
		t.Errorf("register = %+v", reg)
	}

	if _, err := lock.Acquire(profile.Dir("fxtest")); err == nil {
		t.Error("profile lock should be held while the daemon runs")
	}

	if err := app.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	lk, err := lock.Acquire(profile.Dir("fxtest"))
	if err != nil {
		t.Fatalf("lock not released after Stop: %v", err)
	}
	_ = lk.Release()

	if _, err := os.Stat(profile.DBPath("fxtest")); err != nil {
		t.Errorf("database missing: %v", err)
	}
}
