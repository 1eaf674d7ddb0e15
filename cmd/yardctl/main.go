// Command yardctl is the operator toolbox for the yard simulator. It checks
// and profiles zone files, runs headless simulations and watches a yard in
// the terminal, either simulated locally or followed from a running server.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

const Version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func defaultConfigDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "configs"
}

// newApp builds the command tree. Command output goes to out.
func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "yardctl",
		Usage:   "validate zones, run simulations and watch the yard",
		Version: Version,
		Writer:  out,
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "check every zone file in a directory",
				ArgsUsage: "[dir]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dir := cmd.Args().First()
					if dir == "" {
						dir = defaultConfigDir()
					}
					return runValidate(out, dir)
				},
			},
			{
				Name:      "analyze",
				Usage:     "print slot counts, coverage and route estimates per zone",
				ArgsUsage: "[dir]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "builtin", Usage: "analyze the built-in zones instead of a directory"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Bool("builtin") {
						return runAnalyzeBuiltin(out)
					}
					dir := cmd.Args().First()
					if dir == "" {
						dir = defaultConfigDir()
					}
					return runAnalyze(out, dir)
				},
			},
			{
				Name:  "simulate",
				Usage: "run a headless session and report what happened",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config-dir", Value: defaultConfigDir(), Usage: "zone directory"},
					&cli.StringFlag{Name: "zone", Value: "factory_a", Usage: "zone to simulate"},
					&cli.IntFlag{Name: "ticks", Value: 3600, Usage: "ticks to run (60 per simulated second)"},
					&cli.IntFlag{Name: "interval", Value: 300, Usage: "auto-spawn interval in ticks, 0 disables"},
					&cli.IntFlag{Name: "dwell", Value: 0, Usage: "ticks a parked truck stays before check-out, 0 keeps it"},
					&cli.BoolFlag{Name: "quiet", Usage: "only print the summary"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := simulate(ctx, out, simulateOptions{
						ConfigDir: cmd.String("config-dir"),
						Zone:      cmd.String("zone"),
						Ticks:     int(cmd.Int("ticks")),
						Interval:  int(cmd.Int("interval")),
						Dwell:     int(cmd.Int("dwell")),
						Quiet:     cmd.Bool("quiet"),
					})
					return err
				},
			},
			{
				Name:  "view",
				Usage: "watch a yard in the terminal (s spawns, p pauses, c checks out, q quits)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config-dir", Value: defaultConfigDir(), Usage: "zone directory for local mode"},
					&cli.StringFlag{Name: "zone", Value: "factory_a", Usage: "zone for local mode"},
					&cli.IntFlag{Name: "tick-rate", Value: 60, Usage: "ticks per second in local mode"},
					&cli.IntFlag{Name: "interval", Value: 300, Usage: "auto-spawn interval in ticks for local mode, 0 disables"},
					&cli.StringFlag{Name: "server", Usage: "follow a session on this server instead, e.g. http://localhost:8080"},
					&cli.StringFlag{Name: "session", Usage: "session to follow with --server"},
					&cli.BoolFlag{Name: "sound", Usage: "chime when trucks park, stall or leave"},
					&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second, Usage: "connect timeout for --server"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts := viewOptions{
						ConfigDir: cmd.String("config-dir"),
						Zone:      cmd.String("zone"),
						TickRate:  int(cmd.Int("tick-rate")),
						Interval:  int(cmd.Int("interval")),
						Server:    cmd.String("server"),
						SessionID: cmd.String("session"),
						Sound:     cmd.Bool("sound"),
						Timeout:   cmd.Duration("timeout"),
					}
					if opts.Server != "" && opts.SessionID == "" {
						return fmt.Errorf("--session is required with --server")
					}
					return runView(ctx, opts)
				},
			},
		},
	}
}
