package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rasim/simcore/internal/config"
	"github.com/rasim/simcore/internal/dispatcher"
	"github.com/rasim/simcore/internal/session"
	"github.com/rasim/simcore/internal/storage/memory"
	"github.com/rasim/simcore/internal/util"
	"github.com/rasim/simcore/internal/worker"
)

const usage = `usage: rasim <command> [args]

commands:
  run [ticks] [win|lose]   play the configured game (default)
  replay <file> [ticks]    replay a saved recording
  check <scenario>         load a scenario and print what it contains
  report <file>            summarize an exported session report
  version                  print the version`

func runCLI(ctx context.Context, args []string, out io.Writer) error {
	cmd := "run"
	if len(args) > 0 {
		cmd = strings.ToLower(args[0])
		args = args[1:]
	}

	switch cmd {
	case "version":
		fmt.Fprintf(out, "%s %s (%s)\n", AppName, CurrentVersion, BuildDate)
		return nil
	case "help", "-h", "--help":
		fmt.Fprintln(out, usage)
		return nil
	case "report":
		if len(args) == 0 {
			return fmt.Errorf("report needs a file\n%s", usage)
		}
		return printReport(out, args[0])
	case "run", "replay", "check":
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}

	if err := setupLogging(); err != nil {
		return err
	}
	defer stopServices()
	if err := startServices(ctx); err != nil {
		return err
	}
	if _, err := dispatch(worker.CmdInit); err != nil {
		return err
	}

	switch cmd {
	case "replay":
		return replay(ctx, args)
	case "check":
		return check(out, args)
	default:
		return play(ctx, args, out)
	}
}

func dispatch(name string, args ...string) (any, error) {
	return eventDispatcher.Dispatch(dispatcher.Command{Name: name, Args: args, Issued: time.Now()})
}

// play starts the configured game, advances it and applies the outcome. A win keeps going
// through the campaign until it runs out of missions.
func play(ctx context.Context, args []string, out io.Writer) error {
	ticks := config.GetInt("session.ticks")
	outcome := config.GetString("session.outcome")
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("ticks must be a number, got %q", args[0])
		}
		ticks = n
	}
	if len(args) > 1 {
		outcome = strings.ToLower(args[1])
	}
	if outcome != "" && outcome != "win" && outcome != "lose" {
		return fmt.Errorf("outcome must be win or lose, got %q", outcome)
	}

	if _, err := dispatch(worker.CmdStart); err != nil {
		return err
	}
	for {
		lastScenario = engine.Scenario()
		if err := advance(ticks); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		switch outcome {
		case "lose":
			if _, err := dispatch(worker.CmdLose); err != nil {
				return err
			}
			_, err := dispatch(worker.CmdEnd, session.ResultLost)
			return printStatus(out, err)
		case "win":
			next, err := dispatch(worker.CmdWin)
			if err != nil {
				return err
			}
			if next == "" {
				return printStatus(out, nil)
			}
			Logger.Info("next mission", "scenario", next)
			if OTelProvider != nil {
				if err := OTelProvider.Flush(ctx); err != nil {
					Logger.Warn("OTel flush failed", "error", err)
				}
			}
		default:
			return printStatus(out, nil)
		}
	}
}

func advance(ticks int) error {
	if ticks <= 0 {
		return nil
	}
	ran, err := dispatch(worker.CmdRun, strconv.Itoa(ticks))
	if err != nil {
		return fmt.Errorf("stopped after %v ticks: %w", ran, err)
	}
	return nil
}

func replay(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("replay needs a recording\n%s", usage)
	}
	ticks := config.GetInt("session.ticks")
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("ticks must be a number, got %q", args[1])
		}
		ticks = n
	}

	if _, err := dispatch(worker.CmdSelect); err != nil {
		return err
	}
	h, err := dispatch(worker.CmdLoad, args[0])
	if err != nil {
		return err
	}
	Logger.InfoContext(ctx, "replaying", "recording", args[0], "header", h)
	lastScenario = engine.Scenario()
	return advance(ticks)
}

func check(out io.Writer, args []string) error {
	var start []string
	if len(args) > 0 {
		start = args[:1]
	}
	if _, err := dispatch(worker.CmdStart, start...); err != nil {
		return err
	}
	lastScenario = engine.Scenario()
	if err := printStatus(out, nil); err != nil {
		return err
	}
	if text := util.FormatBriefing(engine.World().Scen.Briefing); text != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, text)
	}
	return nil
}

func printStatus(out io.Writer, err error) error {
	if err != nil {
		return err
	}
	status, err := dispatch(worker.CmdStatus)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(b))
	return nil
}

func printReport(out io.Writer, path string) error {
	r, err := memory.ReadReport(path)
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}

	s := r.Session
	fmt.Fprintf(out, "session %s (%s) started %s\n", s.UUID, s.GameType, s.StartTime.Format(time.RFC3339))
	fmt.Fprintf(out, "result %s after %d frames, seed %d\n", s.Result, s.Frames, s.Seed)

	fmt.Fprintf(out, "\nscenarios loaded: %d\n", len(r.Loads))
	for _, l := range r.Loads {
		status := "ok"
		if l.Failed() {
			status = "failed at " + l.Stage + ": " + l.Error
		}
		fmt.Fprintf(out, "  %-14s %-8s %s\n", l.Name, l.PlayerHouse, status)
	}

	open := 0
	for i := range r.Teams {
		if r.Teams[i].IsOpen() {
			open++
		}
	}
	fmt.Fprintf(out, "\nteams formed: %d (%d still open)\n", len(r.Teams), open)

	fmt.Fprintf(out, "\noutcomes: %d\n", len(r.Outcomes))
	for _, o := range r.Outcomes {
		line := fmt.Sprintf("  frame %-6d %-8s %s", o.Frame, o.Kind, o.Scenario)
		if o.Next != "" {
			line += fmt.Sprintf(" -> %s (carry %d)", o.Next, o.CarryOverMoney)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
