// Sched runs the sample scheduler operations from the command line,
// optionally journaling a checkpoint after every few steps so an
// interrupted run can be resumed with -resume.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/neotheprogramist/scheduler/checkpoint"
	"github.com/neotheprogramist/scheduler/scheduler"
	"github.com/neotheprogramist/scheduler/tasks"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("sched")

func main() {
	configPath := flag.String("config", "", "Path to a sched.toml configuration file")
	capacity := flag.Int("capacity", 0, "Combined stack capacity in bytes (overrides config)")
	journalPath := flag.String("journal", "", "SQLite checkpoint journal path (overrides config)")
	every := flag.Uint64("every", 0, "Checkpoint interval in steps (overrides config)")
	resume := flag.String("resume", "", "Resume the run with the given ID from the journal")
	op := flag.String("op", "", "Operation to run: add, mul, exp, fib")
	x := flag.Uint("x", 0, "First operand (add, mul, exp)")
	y := flag.Uint("y", 0, "Second operand (add, mul, exp)")
	n := flag.Uint64("n", 0, "Index for fib")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sched [options] -op <operation>\n\n")
		fmt.Fprintf(os.Stderr, "Runs a task-engine operation to completion, one step at a time.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sched -op add -x 5 -y 10\n")
		fmt.Fprintf(os.Stderr, "  sched -op exp -x 2 -y 3 -journal runs.db\n")
		fmt.Fprintf(os.Stderr, "  sched -op fib -n 10 -journal runs.db -every 5\n")
		fmt.Fprintf(os.Stderr, "  sched -op fib -resume <run-id> -journal runs.db\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	cfg := defaultConfig()
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			fatal("%v", err)
		}
		cfg = loaded
	}
	if *capacity > 0 {
		cfg.Capacity = *capacity
	}
	if *journalPath != "" {
		cfg.Checkpoint.Path = *journalPath
	}
	if *every > 0 {
		cfg.Checkpoint.Every = *every
	}

	if *op == "" {
		flag.Usage()
		os.Exit(2)
	}

	var store *checkpoint.Store
	if cfg.Checkpoint.Path != "" {
		var err error
		store, err = checkpoint.Open(cfg.Checkpoint.Path)
		if err != nil {
			fatal("%v", err)
		}
		defer store.Close()
	}

	sched, runID, step, err := prepare(cfg, store, *resume, *op, uint8(*x), uint8(*y), *n)
	if err != nil {
		fatal("%v", err)
	}
	log.Infof("run %s: op=%s capacity=%d", runID, *op, sched.Capacity())

	for !sched.Idle() {
		if err := sched.Execute(); err != nil {
			fatal("run %s failed at step %d: %v", runID, step+1, err)
		}
		step++
		if store != nil && step%cfg.Checkpoint.Every == 0 {
			state, err := sched.MarshalBinary()
			if err != nil {
				fatal("%v", err)
			}
			if err := store.Append(runID, step, state); err != nil {
				fatal("%v", err)
			}
			log.Debugf("run %s: checkpointed step %d (%d bytes)", runID, step, len(state))
		}
	}
	log.Infof("run %s: completed in %d steps", runID, step)

	result, err := popResult(sched, *op)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(result)
}

// prepare builds the scheduler for a fresh run, or rebuilds it from
// the journal when resuming.
func prepare(cfg *Config, store *checkpoint.Store, resume, op string, x, y uint8, n uint64) (*scheduler.Scheduler, uuid.UUID, uint64, error) {
	if resume != "" {
		if store == nil {
			return nil, uuid.Nil, 0, errors.New("resume requires a checkpoint journal")
		}
		runID, err := uuid.Parse(resume)
		if err != nil {
			return nil, uuid.Nil, 0, fmt.Errorf("invalid run ID %q: %w", resume, err)
		}
		cp, err := store.Latest(runID)
		if err != nil {
			return nil, uuid.Nil, 0, err
		}
		sched, err := scheduler.Restore(cp.State)
		if err != nil {
			return nil, uuid.Nil, 0, err
		}
		log.Infof("run %s: resuming from step %d", runID, cp.Step)
		return sched, runID, cp.Step, nil
	}

	sched := scheduler.New(scheduler.WithCapacity(cfg.Capacity))
	var err error
	switch op {
	case "add":
		if err = sched.PushData(tasks.AddArgs{X: x, Y: y}); err == nil {
			err = sched.PushTask(tasks.NewAdd())
		}
	case "mul":
		if err = sched.PushData(tasks.MulArgs{X: x, Y: y}); err == nil {
			err = sched.PushTask(tasks.NewMul())
		}
	case "exp":
		if err = sched.PushData(tasks.ExpArgs{X: x, Y: y}); err == nil {
			err = sched.PushTask(tasks.NewExp())
		}
	case "fib":
		err = sched.PushTask(tasks.NewFib(n))
	default:
		err = fmt.Errorf("unknown operation %q", op)
	}
	if err != nil {
		return nil, uuid.Nil, 0, err
	}
	return sched, uuid.New(), 0, nil
}

// popResult reads the operation's result off the data stack.
func popResult(sched *scheduler.Scheduler, op string) (string, error) {
	switch op {
	case "add":
		res, err := scheduler.PopData[tasks.AddResult](sched)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", res.Result), nil
	case "mul":
		res, err := scheduler.PopData[tasks.MulResult](sched)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", res.Result), nil
	case "exp":
		res, err := scheduler.PopData[tasks.ExpResult](sched)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", res.Result), nil
	case "fib":
		res, err := scheduler.PopData[tasks.FibResult](sched)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", res.Result), nil
	}
	return "", fmt.Errorf("unknown operation %q", op)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
