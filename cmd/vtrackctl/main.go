package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/schoolwatch/vtrack/internal/auth"
	"github.com/schoolwatch/vtrack/internal/config"
	"github.com/schoolwatch/vtrack/internal/profile"
	"github.com/schoolwatch/vtrack/internal/tui/client"
)

type env struct {
	profile string
	cfg     *config.Config
	auth    *auth.Context
	jsonOut bool
}

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fatal(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := profile.LoadConfig()
	if err != nil {
		fatal(err)
	}
	c, err := client.New(cfg.BaseURL)
	if err != nil {
		fatal(err)
	}
	a := auth.New(c, profile.AuthPath(profileName), cfg.RequestTimeout.Duration, nil, nil)
	if err := a.Bootstrap(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	e := &env{profile: profileName, cfg: cfg, auth: a, jsonOut: *jsonFlag}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "status":
		cmdStatus(ctx, e)
	case "login":
		cmdLogin(ctx, e, args[1:])
	case "register":
		cmdRegister(ctx, e, args[1:])
	case "forgot-password":
		cmdForgotPassword(ctx, e, args[1:])
	case "logout":
		cmdLogout(e)
	case "whoami":
		cmdWhoami(e)
	case "suggest":
		cmdSuggest(ctx, e, args[1:])
	case "search":
		cmdSearch(ctx, e, args[1:])
	case "violation":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: vtrackctl violation <add|list>")
			os.Exit(1)
		}
		cmdViolation(ctx, e, args[1], args[2:])
	case "profile":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: vtrackctl profile <show|update>")
			os.Exit(1)
		}
		cmdProfile(ctx, e, args[1], args[2:])
	case "student":
		if len(args) < 2 || args[1] != "add" {
			fmt.Fprintln(os.Stderr, "usage: vtrackctl student add --name N --lrn L --grade G --section S")
			os.Exit(1)
		}
		cmdStudentAdd(ctx, e, args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: vtrackctl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                         Show daemon and login status")
	fmt.Fprintln(os.Stderr, "  login <username>               Log in (password read from the terminal)")
	fmt.Fprintln(os.Stderr, "  register <username> <email>    Create an account and log in")
	fmt.Fprintln(os.Stderr, "  forgot-password <email>        Request a password reset token")
	fmt.Fprintln(os.Stderr, "  logout                         Forget the saved login")
	fmt.Fprintln(os.Stderr, "  whoami                         Show the logged-in guard")
	fmt.Fprintln(os.Stderr, "  suggest [--type T] <text>      Show autocomplete suggestions")
	fmt.Fprintln(os.Stderr, "  search [--type T] <query>      Search violations")
	fmt.Fprintln(os.Stderr, "  violation add [flags]          Record a violation")
	fmt.Fprintln(os.Stderr, "  violation list [--limit N]     List recent violations")
	fmt.Fprintln(os.Stderr, "  profile show                   Show your profile")
	fmt.Fprintln(os.Stderr, "  profile update [flags]         Edit your profile")
	fmt.Fprintln(os.Stderr, "  student add [flags]            Register a student")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
