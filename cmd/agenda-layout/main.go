// Command agenda-layout lays out an events file offline with the same engine
// and profiles the API uses. It prints the placed events as JSON or as a
// plain report and exits non-zero when -strict is set and events were rejected.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/noah-isme/clinic-agenda-api/pkg/config"
	"github.com/noah-isme/clinic-agenda-api/pkg/layout"
)

type options struct {
	eventsPath   string
	profile      string
	profilesPath string
	format       string
	strict       bool
}

var errRejected = errors.New("events rejected")

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	err = run(os.Args[1:], cfg.Layout, os.Stdin, os.Stdout)
	switch {
	case errors.Is(err, errRejected):
		os.Exit(1)
	case err != nil:
		log.Fatalf("agenda-layout: %v", err)
	}
}

func run(args []string, layoutCfg config.LayoutConfig, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(args, layoutCfg.ProfilesFile)
	if err != nil {
		return err
	}

	profiles, err := config.LoadLayoutProfiles(opts.profilesPath, layoutCfg)
	if err != nil {
		return err
	}
	layoutOpts, ok := profiles[opts.profile]
	if !ok {
		return fmt.Errorf("unknown layout profile %q", opts.profile)
	}

	events, err := loadEvents(opts.eventsPath, stdin)
	if err != nil {
		return err
	}

	days := layout.ComputeDays(events, layoutOpts)

	switch opts.format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(days); err != nil {
			return err
		}
	case "report":
		printReport(stdout, opts.profile, days)
	default:
		return fmt.Errorf("unsupported format %q", opts.format)
	}

	if opts.strict && rejectedCount(days) > 0 {
		return errRejected
	}
	return nil
}

func parseFlags(args []string, defaultProfiles string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("agenda-layout", flag.ContinueOnError)
	fs.StringVar(&opts.eventsPath, "events", "-", "Path to a JSON array of events, - for stdin")
	fs.StringVar(&opts.profile, "profile", config.ProfileDay, "Layout profile name")
	fs.StringVar(&opts.profilesPath, "profiles", defaultProfiles, "Path to a YAML layout profiles file")
	fs.StringVar(&opts.format, "format", "report", "Output format: report or json")
	fs.BoolVar(&opts.strict, "strict", false, "Exit non-zero when any event is rejected")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.profile = strings.ToLower(strings.TrimSpace(opts.profile))
	opts.format = strings.ToLower(strings.TrimSpace(opts.format))
	return opts, nil
}

func loadEvents(path string, stdin io.Reader) ([]layout.Event, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var events []layout.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

func rejectedCount(days []layout.DayLayout) int {
	total := 0
	for _, d := range days {
		total += len(d.Rejected)
	}
	return total
}

func printReport(w io.Writer, profile string, days []layout.DayLayout) {
	fmt.Fprintf(w, "Agenda Layout Report (%s)\n", profile)
	fmt.Fprintln(w, "======================")
	for _, d := range days {
		date := d.Date
		if date == "" {
			date = "(no date)"
		}
		fmt.Fprintf(w, "%s: %d placed, %d rejected\n", date, len(d.Layouts), len(d.Rejected))
		for _, l := range d.Layouts {
			fmt.Fprintf(w, "  [%s-%s] %s lane %d/%d top=%.3f height=%.3f left=%.3f width=%.3f\n",
				layout.FormatClock(l.StartMinutes), layout.FormatClock(l.EndMinutes), l.ID,
				l.Lane+1, l.LaneCount, l.Top, l.Height, l.Left, l.Width)
		}
		for _, r := range d.Rejected {
			fmt.Fprintf(w, "  [REJECTED] %s %s: %s\n", r.Event.ID, r.Reason, r.Detail)
		}
	}
	fmt.Fprintf(w, "Rejected events: %d\n", rejectedCount(days))
}
