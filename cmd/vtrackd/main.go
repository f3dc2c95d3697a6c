package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/schoolwatch/vtrack/internal/daemon"
	"github.com/schoolwatch/vtrack/internal/profile"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	listenFlag := flag.String("listen", "", "REST listen address (overrides config listen_addr)")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := profile.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{
			ProfileName: profileName,
			Config:      cfg,
			ListenAddr:  *listenFlag,
		}),
	)

	app.Run()
}
