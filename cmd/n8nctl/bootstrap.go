package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/speesrl/n8nctl/internal/config"
	"github.com/speesrl/n8nctl/internal/engine"
	"github.com/speesrl/n8nctl/internal/model"
	"github.com/speesrl/n8nctl/internal/probe"
	"github.com/speesrl/n8nctl/internal/seed"
	"github.com/speesrl/n8nctl/internal/tui"
)

type bootstrapOptions struct {
	ConfigPath  string
	Verbose     bool
	Interactive bool
}

var bootstrapCmdRunner = runBootstrap

func newBootstrapCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Wait for the stack to become ready, then converge its state",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := bootstrapOptions{
				ConfigPath:  root.configPath,
				Verbose:     root.verbose,
				Interactive: !root.plain && term.IsTerminal(int(os.Stdout.Fd())),
			}
			return bootstrapCmdRunner(opts)
		},
	}
	return cmd
}

func runBootstrap(opts bootstrapOptions) error {
	cfg, err := config.ParseConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	log, err := newRunLogger(opts.Verbose)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	querier, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer redisClient.Close()

	client, err := buildAPIClient(cfg, log)
	if err != nil {
		return err
	}

	assertions := seed.Assertions(cfg, querier, client)
	ids := make([]string, 0, len(assertions))
	for _, a := range assertions {
		ids = append(ids, a.ID())
	}

	state := tui.NewModel(ids)

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	if opts.Interactive {
		program = tea.NewProgram(state)
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	}

	dispatch := func(msg tea.Msg) {
		dispatchTuiMessage(opts.Interactive, program, &state, msg)
	}
	finish := func(report *model.RunReport, runErr error) error {
		dispatch(tui.DoneMsg{Report: report, Err: runErr})
		if opts.Interactive {
			<-done
			if programErr != nil {
				return programErr
			}
		} else {
			fmt.Fprintln(os.Stdout, state.View())
		}
		return runErr
	}

	probes := []struct {
		target string
		fn     probe.Func
	}{
		{"postgres", probe.Postgres(querier)},
		{"schema", probe.Tables(querier, "user", "project")},
		{"redis", probe.Redis(redisClient)},
		{"n8n", probe.HTTP(&http.Client{Timeout: 10 * time.Second}, cfg.N8N.URL+"/healthz")},
	}
	for _, p := range probes {
		result := probe.WaitUntilReady(ctx, p.target, p.fn, cfg.Probe.MaxAttempts, cfg.Probe.Interval())
		dispatch(tui.ProbeMsg{Target: result.Target, Ready: result.Ready})
		log.WithFields(map[string]any{
			"target":   result.Target,
			"ready":    result.Ready,
			"attempts": result.Attempts,
		}).Debug("readiness probe finished")
		if !result.Ready {
			return finish(nil, fmt.Errorf("%s not ready after %d attempts", result.Target, result.Attempts))
		}
	}

	reconciler := engine.NewReconciler(log, func(event engine.Event) {
		dispatch(tui.EventMsg{Event: event})
	})

	report, runErr := reconciler.Run(ctx, assertions)
	if err := finish(report, runErr); err != nil {
		return err
	}

	if report.HasRequiredFailures() {
		summary := report.Summarize()
		return fmt.Errorf("bootstrap finished with %d failed assertion(s)", summary.Failed)
	}
	return nil
}

func dispatchTuiMessage(interactive bool, program *tea.Program, state *tui.Model, msg tea.Msg) {
	if interactive {
		if program != nil {
			program.Send(msg)
		}
		return
	}

	updated, _ := state.Update(msg)
	if m, ok := updated.(tui.Model); ok {
		*state = m
	}
}
