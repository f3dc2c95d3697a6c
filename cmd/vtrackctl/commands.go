package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/schoolwatch/vtrack/internal/auth"
	"github.com/schoolwatch/vtrack/internal/daemon"
	"github.com/schoolwatch/vtrack/internal/profile"
	"github.com/schoolwatch/vtrack/internal/search"
	"github.com/schoolwatch/vtrack/internal/wire"
	"golang.org/x/term"
)

func cmdStatus(ctx context.Context, e *env) {
	socketPath := profile.ControlSocketPath(e.profile)
	daemonErr := daemon.Probe(ctx, socketPath)

	type statusOut struct {
		Profile string     `json:"profile"`
		BaseURL string     `json:"base_url"`
		Daemon  string     `json:"daemon"`
		User    *wire.User `json:"user,omitempty"`
	}
	out := statusOut{Profile: e.profile, BaseURL: e.auth.BaseURL(), Daemon: "running", User: e.auth.User()}
	if daemonErr != nil {
		out.Daemon = "not running"
	}
	if e.jsonOut {
		outputJSON(out)
		return
	}
	fmt.Printf("Profile: %s\n", out.Profile)
	fmt.Printf("Server:  %s\n", out.BaseURL)
	fmt.Printf("Daemon:  %s\n", out.Daemon)
	if out.User != nil {
		fmt.Printf("User:    %s (%s)\n", out.User.Username, out.User.Email)
	} else {
		fmt.Println("User:    not logged in")
	}
}

func cmdLogin(ctx context.Context, e *env, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: vtrackctl login <username>")
		os.Exit(1)
	}
	password, err := readSecret("Password: ")
	if err != nil {
		fatal(err)
	}
	u, err := e.auth.Login(ctx, args[0], password)
	if err != nil {
		fatal(err)
	}
	if e.jsonOut {
		outputJSON(u)
		return
	}
	fmt.Printf("Logged in as %s.\n", u.Username)
}

func cmdRegister(ctx context.Context, e *env, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vtrackctl register <username> <email>")
		os.Exit(1)
	}
	password, err := readSecret("Password: ")
	if err != nil {
		fatal(err)
	}
	confirm, err := readSecret("Confirm password: ")
	if err != nil {
		fatal(err)
	}
	u, err := e.auth.Register(ctx, args[0], args[1], password, confirm)
	if err != nil {
		fatal(err)
	}
	if e.jsonOut {
		outputJSON(u)
		return
	}
	fmt.Printf("Registered and logged in as %s.\n", u.Username)
}

func cmdForgotPassword(ctx context.Context, e *env, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: vtrackctl forgot-password <email>")
		os.Exit(1)
	}
	token, err := e.auth.ForgotPassword(ctx, args[0])
	if err != nil {
		fatal(err)
	}
	if e.jsonOut {
		outputJSON(map[string]string{"token": token})
		return
	}
	fmt.Printf("Reset token: %s\n", token)
}

func cmdLogout(e *env) {
	if err := e.auth.Logout(); err != nil {
		fatal(err)
	}
	fmt.Println("Logged out.")
}

func cmdWhoami(e *env) {
	u := e.auth.User()
	if u == nil {
		fatal(auth.ErrNotLoggedIn)
	}
	if e.jsonOut {
		outputJSON(u)
		return
	}
	fmt.Printf("%s <%s> (id %d)\n", u.Username, u.Email, u.ID)
}

func searchFlags(name string, e *env, args []string) (search.Type, string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	typeFlag := fs.String("type", e.cfg.DefaultSearchType, "student_name or violation_type")
	_ = fs.Parse(args)
	typ, err := search.ParseType(*typeFlag)
	if err != nil {
		fatal(err)
	}
	query := strings.Join(fs.Args(), " ")
	return typ, query
}

func cmdSuggest(ctx context.Context, e *env, args []string) {
	typ, query := searchFlags("suggest", e, args)
	f := search.NewSuggestionFetcher(e.auth.Client(), e.cfg.RequestTimeout.Duration, nil)
	list, err := f.Fetch(ctx, query, typ)
	if err != nil {
		fatal(err)
	}
	if e.jsonOut {
		outputJSON(list)
		return
	}
	for _, s := range list {
		fmt.Println(s)
	}
}

func cmdSearch(ctx context.Context, e *env, args []string) {
	typ, query := searchFlags("search", e, args)
	x := search.NewExecutor(e.auth.Client(), e.cfg.RequestTimeout.Duration, nil)
	results, err := x.Execute(ctx, query, typ)
	if err != nil {
		fatal(errors.New(search.UserMessage(err)))
	}
	if e.jsonOut {
		outputJSON(results)
		return
	}
	printViolations(results)
}

func cmdViolation(ctx context.Context, e *env, sub string, args []string) {
	switch sub {
	case "add":
		fs := flag.NewFlagSet("violation add", flag.ExitOnError)
		studentID := fs.String("student-id", "", "student LRN or id (required)")
		name := fs.String("name", "", "student name (required)")
		vtype := fs.String("type", "", "violation type (required)")
		grade := fs.String("grade", "", "grade level")
		section := fs.String("section", "", "section")
		st := fs.String("status", "", "pending, in review, resolved or new")
		_ = fs.Parse(args)

		v := wire.NewViolation{
			StudentID:     *studentID,
			StudentName:   *name,
			ViolationType: *vtype,
			GradeLevel:    *grade,
			Section:       *section,
			Status:        *st,
		}
		if u := e.auth.User(); u != nil {
			v.ReportedBy = u.Username
		}
		ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout.Duration)
		defer cancel()
		id, err := e.auth.Client().SubmitViolation(ctx, v)
		if err != nil {
			fatal(err)
		}
		if e.jsonOut {
			outputJSON(map[string]int64{"violation_id": id})
			return
		}
		fmt.Printf("Violation %d recorded.\n", id)
	case "list":
		fs := flag.NewFlagSet("violation list", flag.ExitOnError)
		limit := fs.Int("limit", 20, "maximum rows; 0 lists all")
		_ = fs.Parse(args)

		ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout.Duration)
		defer cancel()
		list, err := e.auth.Client().ListViolations(ctx, *limit)
		if err != nil {
			fatal(err)
		}
		if e.jsonOut {
			outputJSON(list)
			return
		}
		printViolations(list)
	default:
		fmt.Fprintf(os.Stderr, "unknown violation subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func cmdProfile(ctx context.Context, e *env, sub string, args []string) {
	switch sub {
	case "show":
		p, err := e.auth.Profile(ctx)
		if err != nil {
			fatal(err)
		}
		if e.jsonOut {
			outputJSON(p)
			return
		}
		fmt.Printf("Name:    %s\n", p.FullName)
		fmt.Printf("Email:   %s\n", p.Email)
		fmt.Printf("Address: %s\n", p.Address)
		fmt.Printf("Contact: %s\n", p.ContactNumber)
	case "update":
		current, err := e.auth.Profile(ctx)
		if err != nil {
			fatal(err)
		}
		fs := flag.NewFlagSet("profile update", flag.ExitOnError)
		fullName := fs.String("full-name", current.FullName, "full name")
		email := fs.String("email", current.Email, "email")
		address := fs.String("address", current.Address, "address")
		contact := fs.String("contact", current.ContactNumber, "contact number")
		changePassword := fs.Bool("password", false, "prompt for a new password")
		_ = fs.Parse(args)

		upd := wire.ProfileUpdate{
			FullName:      *fullName,
			Email:         *email,
			Address:       *address,
			ContactNumber: *contact,
		}
		if *changePassword {
			pw, err := readSecret("New password: ")
			if err != nil {
				fatal(err)
			}
			confirm, err := readSecret("Confirm password: ")
			if err != nil {
				fatal(err)
			}
			if pw != confirm {
				fatal(auth.ErrPasswordMismatch)
			}
			upd.Password = pw
		}
		if err := e.auth.UpdateProfile(ctx, upd); err != nil {
			fatal(err)
		}
		fmt.Println("Profile updated.")
	default:
		fmt.Fprintf(os.Stderr, "unknown profile subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func cmdStudentAdd(ctx context.Context, e *env, args []string) {
	fs := flag.NewFlagSet("student add", flag.ExitOnError)
	name := fs.String("name", "", "student name")
	lrn := fs.String("lrn", "", "learner reference number")
	grade := fs.String("grade", "", "grade level")
	section := fs.String("section", "", "section")
	_ = fs.Parse(args)

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout.Duration)
	defer cancel()
	err := e.auth.Client().RegisterStudent(ctx, wire.Student{Name: *name, LRN: *lrn, GradeLevel: *grade, Section: *section})
	if err != nil {
		fatal(err)
	}
	fmt.Println("Student registered.")
}

func printViolations(list []wire.Violation) {
	if len(list) == 0 {
		fmt.Println("No violations found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTUDENT\tGRADE/SECTION\tVIOLATION\tDATE\tSTATUS\tCONFIDENCE\tREPORTED BY")
	for _, v := range list {
		conf := "-"
		if v.Confidence != nil {
			conf = fmt.Sprintf("%.1f%%", *v.Confidence)
		}
		fmt.Fprintf(w, "%d\t%s\t%s-%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.StudentName, v.GradeLevel, v.Section, v.ViolationType, v.DateFormatted, v.Status, conf, v.ReportedBy)
	}
	_ = w.Flush()
}

var stdin = bufio.NewReader(os.Stdin)

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(b), err
	}
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
