package daemon

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Probe asks the daemon behind socketPath for its health. A nil error means
// the REST API is serving.
func Probe(ctx context.Context, socketPath string) error {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: HealthService})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("daemon status %s", resp.GetStatus())
	}
	return nil
}

// Running reports whether a healthy daemon answers on socketPath within 2s.
func Running(socketPath string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return Probe(ctx, socketPath) == nil
}

// Spawn starts vtrackd for profileName in the background. The binary next
// to the running executable wins over one on $PATH.
func Spawn(profileName string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	vtrackd := filepath.Join(filepath.Dir(executable), "vtrackd")
	if _, err := os.Stat(vtrackd); err != nil {
		vtrackd = "vtrackd"
	}

	cmd := exec.Command(vtrackd, "--profile", profileName)
	// Inherit stderr so daemon startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

// WaitReady polls the daemon with a real health check (not just socket connect).
func WaitReady(socketPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if Running(socketPath) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
