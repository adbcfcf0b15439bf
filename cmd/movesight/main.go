// cmd/movesight/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"movesight/client"
	"movesight/internal/diff"
	"movesight/internal/highlight"
	"movesight/internal/logging"
	"movesight/internal/moved"
	"movesight/internal/watch"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var logger = logging.Nop()

// Flags shared by every command.
var opts struct {
	json     bool
	minLines int
	server   string
	noColor  bool
	noLines  bool
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "movesight",
	Short: "Movesight finds code that was moved, not rewritten",
	Long: `Movesight reads a diff and reports the blocks of removed lines that reappear
as added lines elsewhere, even when their indentation changed. Reviewers can
then skip over code that only moved.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.NewDevelopmentLogger(opts.logLevel)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		if opts.noColor {
			color.NoColor = true
		}
		return nil
	},
}

func init() {
	var useGit bool

	var detectCmd = &cobra.Command{
		Use:   "detect [diff-file|-]",
		Short: "Detect moved blocks in a unified diff",
		Long: `Reads a unified diff from a file, from stdin ("-" or no argument) or, with
--git, from running git diff in the current directory. Arguments after --
are passed to git diff.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var raw []byte
			var source string
			var err error
			switch {
			case useGit:
				source = "git diff"
				raw, err = diff.GitDiff(ctx, "", args...)
			case len(args) == 0 || args[0] == "-":
				source = "stdin"
				raw, err = io.ReadAll(cmd.InOrStdin())
			default:
				source = args[0]
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading diff: %w", err)
			}

			if opts.server != "" {
				sess, err := client.New(opts.server).DetectDiff(ctx, raw, source, minLinesFlag(cmd))
				if err != nil {
					return fmt.Errorf("detecting remotely: %w", err)
				}
				return show(cmd.OutOrStdout(), sess.Result, sess)
			}

			cs, err := diff.ParseUnified(raw)
			if err != nil {
				return err
			}
			return detectLocal(cmd.OutOrStdout(), cs)
		},
	}
	detectCmd.Flags().BoolVar(&useGit, "git", false, "Read the diff from git diff")

	var compareCmd = &cobra.Command{
		Use:   "compare <old> <new>",
		Short: "Detect moved blocks between two versions of a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return compare(cmd, args[0], args[1])
		},
	}

	var watchCmd = &cobra.Command{
		Use:   "watch <old> <new>",
		Short: "Re-run compare whenever either file changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := watch.New(args, watch.DefaultDebounce, logger.Logger)
			if err != nil {
				return err
			}
			defer w.Close()

			out := cmd.OutOrStdout()
			run := func() {
				if err := compare(cmd, args[0], args[1]); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				}
			}

			run()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return w.Run(ctx, func(path string) {
				logger.Debug("file changed", zap.String("path", path))
				color.New(color.Faint).Fprintf(out, "\n--- %s changed at %s ---\n", filepath.Base(path), time.Now().Format(time.TimeOnly))
				run()
			})
		},
	}

	var sessionsCmd = &cobra.Command{
		Use:   "sessions",
		Short: "Manage detection sessions on a server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			if opts.server == "" {
				return fmt.Errorf("--server is required")
			}
			return nil
		},
	}

	var listSessionsCmd = &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.New(opts.server).ListSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), list)
			}

			id := color.New(color.FgYellow).SprintFunc()
			for _, s := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d block(s)  %s\n",
					id(s.ID), s.CreatedAt.Local().Format(time.DateTime), s.BlockCount, s.Source)
			}
			return nil
		},
	}

	var showSessionCmd = &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session's moved blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := client.New(opts.server).GetSession(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("getting session: %w", err)
			}
			return show(cmd.OutOrStdout(), sess.Result, sess)
		},
	}

	var deleteSessionCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Close a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.New(opts.server).DeleteSession(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session", args[0], "closed")
			return nil
		},
	}

	sessionsCmd.AddCommand(listSessionsCmd, showSessionCmd, deleteSessionCmd)

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&opts.json, "json", false, "Print results as JSON")
	pf.IntVar(&opts.minLines, "min-lines", 2, "Minimum lines count; negative disables detection")
	pf.StringVar(&opts.server, "server", "", "Delegate to a movesight server at this URL")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable colour output")
	pf.BoolVar(&opts.noLines, "no-lines", false, "Only print block headers")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(detectCmd, compareCmd, watchCmd, sessionsCmd)
}

// minLinesFlag is nil unless --min-lines was given, leaving the choice to
// the server.
func minLinesFlag(cmd *cobra.Command) *int {
	if !cmd.Flags().Changed("min-lines") {
		return nil
	}
	v := opts.minLines
	return &v
}

func compare(cmd *cobra.Command, oldPath, newPath string) error {
	oldContent, err := os.ReadFile(oldPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", oldPath, err)
	}
	newContent, err := os.ReadFile(newPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", newPath, err)
	}

	result, err := diff.NewEngine(3).Diff(oldContent, newContent)
	if err != nil {
		return fmt.Errorf("diffing: %w", err)
	}
	cs := diff.FromResult(oldPath, result)
	// added lines live in the new file
	for i := range cs.Added {
		cs.Added[i].File = newPath
	}
	if newPath != oldPath {
		cs.Files = append(cs.Files, newPath)
	}
	logger.Debug("compared files",
		zap.Int("removed", len(cs.Removed)),
		zap.Int("added", len(cs.Added)),
	)

	if opts.server != "" {
		sess, err := client.New(opts.server).Detect(cmd.Context(), cs.Removed, cs.Added, minLinesFlag(cmd))
		if err != nil {
			return fmt.Errorf("detecting remotely: %w", err)
		}
		return show(cmd.OutOrStdout(), sess.Result, sess)
	}
	return detectLocal(cmd.OutOrStdout(), cs)
}

func detectLocal(w io.Writer, cs *diff.ChangeSet) error {
	removed, added, err := cs.Lines()
	if err != nil {
		return err
	}
	res := moved.Detect(removed, added, moved.Options{MinLinesCount: opts.minLines})
	logger.Debug("detection finished",
		zap.Int("files", len(cs.Files)),
		zap.Int("blocks", len(res.Blocks)),
	)
	return show(w, res, nil)
}

// show prints res, or the whole session when asked for JSON and one exists.
func show(w io.Writer, res moved.Result, session any) error {
	blocks := highlight.NewBuilder().Build(res.Blocks)
	if opts.json {
		if session != nil {
			return writeJSON(w, session)
		}
		return writeJSON(w, struct {
			Result     moved.Result      `json:"result"`
			Highlights []highlight.Block `json:"highlights"`
		}{res, blocks})
	}
	return highlight.Render(w, res, blocks, highlight.RenderOptions{
		NoColor: opts.noColor || color.NoColor,
		Lines:   !opts.noLines,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
