package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/playterm/internal/config"
	"github.com/unkn0wn-root/playterm/internal/dispatch"
	"github.com/unkn0wn-root/playterm/internal/errdef"
	"github.com/unkn0wn-root/playterm/internal/highlight"
	"github.com/unkn0wn-root/playterm/internal/history"
	"github.com/unkn0wn-root/playterm/internal/output"
	"github.com/unkn0wn-root/playterm/internal/playground"
	"github.com/unkn0wn-root/playterm/internal/theme"
	"github.com/unkn0wn-root/playterm/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "playterm",
		Short: "Terminal client for the Rust playground",
		Long: heredoc.Doc(`
			playterm edits Rust code in the terminal and sends it to a Rust
			playground server to run, compile, format, lint or share as a gist.

			Without a subcommand it opens the interactive editor. Subcommands run a
			single operation and print its result; they exit non-zero when the
			operation fails.
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configDir, "config-dir", "", "Configuration directory (default is the OS config dir)")
	flags.StringVar(&opts.serverURL, "server", "", "Playground server URL")
	flags.StringVarP(&opts.file, "file", "f", "", "Source file to load, - for stdin")
	flags.StringVar(&opts.channel, "channel", "", "Toolchain channel: stable, beta or nightly")
	flags.StringVar(&opts.mode, "mode", "", "Build mode: debug or release")
	flags.StringVar(&opts.crateType, "crate-type", "", "Crate type: bin or lib")
	flags.BoolVar(&opts.tests, "tests", false, "Build and run tests")
	flags.StringArrayVar(&opts.set, "set", nil, "Override a setting, key=value (repeatable)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colours")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVar(&opts.noHistory, "no-history", false, "Do not record runs in the history database")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		opts.testsSet = cmd.Flags().Changed("tests")
		if opts.noColor || os.Getenv("NO_COLOR") != "" {
			theme.UseNoColor()
		}
	}

	root.AddCommand(
		newExecuteCmd(opts),
		newCompileCmd(opts),
		newFormatCmd(opts),
		newLintCmd(opts),
		newGistCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)
	return root
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, *opts)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	hl := highlight.Defaults()
	hl.Disabled = opts.noColor || os.Getenv("NO_COLOR") != ""
	th := theme.DefaultTheme()

	model := ui.New(ui.Config{
		Dispatcher:    a.dispatcher,
		Theme:         &th,
		Highlight:     hl,
		PlaygroundURL: a.settings.PlaygroundURL(),
		Context:       ctx,
		Logger:        a.logger,
		Version:       version,
		SaveDefaults: func(cfg playground.Configuration) error {
			_, err := config.SaveDefaults(cfg)
			return err
		},
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

func newExecuteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "execute",
		Aliases: []string{"run"},
		Short:   "Run the program (or its tests) and print its output",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(cmd, opts, output.KindExecute, false, func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Cmd {
				return d.Execute(ctx)
			})
		},
	}
}

func newCompileCmd(opts *rootOptions) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile to assembly, LLVM IR or MIR",
		Example: heredoc.Doc(`
			playterm compile --target asm -f main.rs
			playterm compile --target mir --channel nightly -f main.rs
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := playground.ParseTarget(target)
			if err != nil {
				return err
			}
			return runHeadless(cmd, opts, output.KindForTarget(t), false, func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Cmd {
				return d.CompileTo(ctx, t)
			})
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", string(playground.TargetAssembly), "Output: asm, llvm-ir or mir")
	return cmd
}

func newFormatCmd(opts *rootOptions) *cobra.Command {
	var style string
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Format the source with rustfmt and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := playground.ParseFormatStyle(style)
			if err != nil {
				return err
			}
			return runHeadless(cmd, opts, output.KindFormat, true, func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Cmd {
				return d.Format(ctx, s)
			})
		},
	}
	cmd.Flags().StringVar(&style, "style", string(playground.FormatDefault), "Format style: default or rfc")
	return cmd
}

func newLintCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "lint",
		Aliases: []string{"clippy"},
		Short:   "Run clippy on the source",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(cmd, opts, output.KindClippy, false, func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Cmd {
				return d.Lint(ctx)
			})
		},
	}
}

func newGistCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gist",
		Short: "Share or fetch code through GitHub gists",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "save",
			Short: "Save the source as a gist and print its links",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runHeadless(cmd, opts, output.KindGist, false, func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Cmd {
					return d.SaveSnippet(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "load <id>",
			Short: "Fetch a gist and print its code",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id := args[0]
				return runHeadless(cmd, opts, output.KindGist, true, func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Cmd {
					return d.LoadSnippet(ctx, id)
				})
			},
		},
	)
	return cmd
}

func openHistory(opts *rootOptions) (*history.Store, error) {
	if opts.configDir != "" {
		if err := os.Setenv("PLAYTERM_CONFIG_DIR", opts.configDir); err != nil {
			return nil, err
		}
	}
	s, _, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	return history.Open(config.HistoryPath(), s.History.MaxEntries)
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		limit int
		kind  string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent dispatches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			var entries []history.Entry
			if kind != "" {
				entries, err = store.ByKind(kind, limit)
			} else {
				entries, err = store.Entries(limit)
			}
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tKIND\tSTATE\tCHANNEL\tMODE\tDURATION\tERROR")
			for _, e := range entries {
				state := e.State
				if e.Superseded {
					state += " (superseded)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID,
					e.ExecutedAt.Format(time.DateTime),
					e.Kind,
					state,
					e.Channel,
					e.Mode,
					e.Duration.Round(time.Millisecond),
					e.Error,
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries, 0 for all")
	cmd.Flags().StringVar(&kind, "kind", "", "Only show one operation kind")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Remove one history entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openHistory(opts)
				if err != nil {
					return err
				}
				defer store.Close()
				removed, err := store.Delete(args[0])
				if err != nil {
					return err
				}
				if !removed {
					return errdef.New(errdef.CodeHistory, "no history entry %s", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every history entry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openHistory(opts)
				if err != nil {
					return err
				}
				defer store.Close()
				n, err := store.Clear()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries\n", n)
				return nil
			},
		},
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "playterm %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
