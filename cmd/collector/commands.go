package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"canvass/internal/console"
	"canvass/internal/platform/config"
	"canvass/internal/platform/httpserver"
	platformmetrics "canvass/internal/platform/metrics"
)

type rootFlags struct {
	configPath  string
	verbose     bool
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "collector",
		Short:        "Voter registration data collection console",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv("CANVASS_CONFIG"), "path to canvass.yaml")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at the configured level instead of warn")

	run := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive collection wizard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				if flags.metricsAddr != "" {
					srv := httpserver.New(flags.metricsAddr, platformmetrics.Handler(e.registry), 0, 0)
					go func() {
						if err := httpserver.Run(ctx, srv, 2*time.Second, e.log); err != nil {
							e.log.Warn("metrics server stopped", "error", err)
						}
					}()
				}
				return console.New(e.app, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
			})
		},
	}
	run.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve collector metrics on this address while running")

	login := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				password, err := readLine(cmd, "Password: ")
				if err != nil {
					return err
				}
				return e.app.SignIn(ctx, args[0], password)
			})
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				e.app.Start(ctx)
				e.app.SignOut(ctx)
				return nil
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in operator and check the record store connection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				out := cmd.OutOrStdout()
				if session := e.app.Start(ctx); session != nil {
					fmt.Fprintf(out, "signed in as %s\n", session.Email)
				} else {
					fmt.Fprintln(out, "not signed in")
				}
				if e.redis != nil {
					if err := e.redis.Health(ctx); err != nil {
						fmt.Fprintf(out, "session store: redis unhealthy: %v\n", err)
					} else {
						fmt.Fprintln(out, "session store: redis healthy")
					}
				}
				if !e.app.CheckConnectivity(ctx).OK {
					return errors.New("record store unreachable")
				}
				return nil
			})
		},
	}

	root.AddCommand(run, login, logout, status, newOperatorCmd(flags))
	return root
}

func newOperatorCmd(flags *rootFlags) *cobra.Command {
	operator := &cobra.Command{
		Use:   "operator",
		Short: "Manage operators in the self-hosted directory",
	}
	add := &cobra.Command{
		Use:   "add EMAIL",
		Short: "Register an operator (directory auth backend only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				if e.directory == nil {
					return fmt.Errorf("auth backend is %q, operators can only be added with %q",
						e.cfg.Auth.Backend, config.BackendDirectory)
				}
				password, err := readLine(cmd, "Password: ")
				if err != nil {
					return err
				}
				id, err := e.directory.AddOperator(ctx, args[0], password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "operator %s added (%s)\n", args[0], id)
				return nil
			})
		},
	}
	operator.AddCommand(add)
	return operator
}

// withEnv loads config, wires the application and releases it after fn.
func withEnv(cmd *cobra.Command, flags *rootFlags, fn func(ctx context.Context, e *env) error) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateCollector(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := "warn"
	if flags.verbose {
		level = cfg.LogLevel
	}
	e, err := newEnv(ctx, cfg, level, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.close()
	return fn(ctx, e)
}

func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
