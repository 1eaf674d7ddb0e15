package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/wricardo/mcp-training/yardsim/game/config"
	"github.com/wricardo/mcp-training/yardsim/game/engine"
	"github.com/wricardo/mcp-training/yardsim/game/service"
	"github.com/wricardo/mcp-training/yardsim/game/session"
)

// simulateChunk is how many ticks run between check-out passes
const simulateChunk = 60

type simulateOptions struct {
	ConfigDir string
	Zone      string
	Ticks     int
	Interval  int
	Dwell     int
	Quiet     bool
}

// SimulationSummary counts what happened during a headless run
type SimulationSummary struct {
	Spawned    int
	Parked     int
	CheckedOut int
	Stalled    int
	Statistics *engine.Statistics
}

func newLocalService(configDir string) (service.YardService, error) {
	configs, err := config.NewManager(configDir)
	if err != nil {
		return nil, err
	}
	return service.NewYardService(session.NewManager(), configs), nil
}

// simulate runs a paused session through the manual clock so the run is
// deterministic and as fast as the machine allows
func simulate(ctx context.Context, out io.Writer, opts simulateOptions) (*SimulationSummary, error) {
	if opts.Ticks <= 0 {
		return nil, fmt.Errorf("ticks must be positive, got %d", opts.Ticks)
	}

	svc, err := newLocalService(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	info, err := svc.CreateSession(ctx, opts.Zone)
	if err != nil {
		return nil, err
	}
	if _, err := svc.SetRunning(ctx, info.ID, false); err != nil {
		return nil, err
	}
	if opts.Interval > 0 {
		if _, err := svc.SetAutoSpawn(ctx, info.ID, service.AutoSpawnOptions{Enabled: true, IntervalTicks: opts.Interval}); err != nil {
			return nil, err
		}
	}

	fmt.Fprintf(out, "Simulating %s (%d slots) for %d ticks\n", info.ZoneID, info.Statistics.TotalSlots, opts.Ticks)

	summary := &SimulationSummary{}
	parkedAt := make(map[string]uint64)

	for remaining := opts.Ticks; remaining > 0; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := remaining
		if n > simulateChunk {
			n = simulateChunk
		}
		result, err := svc.Advance(ctx, info.ID, n)
		if err != nil {
			return nil, err
		}
		remaining -= result.Report.Ticks
		summary.Statistics = result.Statistics
		summary.record(out, result.Events, parkedAt, opts.Quiet)

		if opts.Dwell > 0 {
			if err := checkOutDue(ctx, out, svc, info.ID, result.Report.Tick, opts, parkedAt, summary); err != nil {
				return nil, err
			}
		}
	}

	stats := summary.Statistics
	fmt.Fprintf(out, "\nAfter %d ticks (%.1fs simulated):\n", stats.Tick, float64(stats.Tick)/60)
	fmt.Fprintf(out, "  Spawned: %d | Parked: %d | Checked out: %d | Stalled: %d\n",
		summary.Spawned, summary.Parked, summary.CheckedOut, summary.Stalled)
	fmt.Fprintf(out, "  Slots: %d total | %d occupied | %d reserved | %d empty\n",
		stats.TotalSlots, stats.OccupiedSlots, stats.ReservedSlots, stats.EmptySlots)
	fmt.Fprintf(out, "  In flight: %d\n", stats.InFlight)
	return summary, nil
}

func (s *SimulationSummary) record(out io.Writer, events []engine.Event, parkedAt map[string]uint64, quiet bool) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EventSpawned:
			s.Spawned++
		case engine.EventParked:
			s.Parked++
			parkedAt[ev.ContainerNumber] = ev.Tick
		case engine.EventCheckedOut:
			s.CheckedOut++
			delete(parkedAt, ev.ContainerNumber)
		case engine.EventStalled:
			s.Stalled++
		default:
			continue
		}
		if !quiet {
			fmt.Fprintf(out, "[tick %5d] %-11s %s slot %d %s\n", ev.Tick, ev.Type, ev.ContainerNumber, ev.SlotID, ev.Message)
		}
	}
}

// checkOutDue releases every container that has been parked for the dwell
// time, oldest first
func checkOutDue(ctx context.Context, out io.Writer, svc service.YardService, sessionID string, tick uint64,
	opts simulateOptions, parkedAt map[string]uint64, summary *SimulationSummary) error {

	var due []string
	for container, at := range parkedAt {
		if tick >= at+uint64(opts.Dwell) {
			due = append(due, container)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if parkedAt[due[i]] != parkedAt[due[j]] {
			return parkedAt[due[i]] < parkedAt[due[j]]
		}
		return due[i] < due[j]
	})

	for _, container := range due {
		result, err := svc.CheckOut(ctx, sessionID, container)
		if err != nil {
			return fmt.Errorf("check out %s: %w", container, err)
		}
		summary.record(out, result.Events, parkedAt, opts.Quiet)
	}
	return nil
}
