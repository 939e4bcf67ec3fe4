package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"

	"github.com/Alp4ka/keyset"
)

const browseHelp = `  n, next       move to the next row
  p, prev       move to the previous row
  first, last   jump to an end of the ordering
  pos           print the position of the current row
  go <id>       jump to a row by primary key
  sql           print the seek predicates of the current row
  exit          quit`

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [id]",
		Short: "Walk the ordering row by row",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			rl, err := readline.NewFromConfig(&readline.Config{
				Prompt:          "keysetq> ",
				HistoryFile:     historyPath(),
				HistoryLimit:    500,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("readline init: %w", err)
			}
			defer func() { _ = rl.Close() }()

			b := &browser{s: s, out: cmd.OutOrStdout()}
			if len(args) == 1 {
				err = b.execute(cmd.Context(), "go "+args[0])
			} else {
				err = b.execute(cmd.Context(), "first")
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(b.out, "type 'help' for commands, 'exit' to quit")
			for {
				line, err := rl.ReadLine()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if err != nil {
					break
				}

				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if lower := strings.ToLower(line); lower == "exit" || lower == "quit" {
					break
				}
				if err := b.execute(cmd.Context(), line); err != nil {
					fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
				}
			}

			return nil
		},
	}
}

// browser holds the current row of a browse session.
type browser struct {
	s       *session
	out     io.Writer
	current keyset.Row
}

func (b *browser) execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)

	var (
		row keyset.Row
		ok  bool
		err error
	)

	switch strings.ToLower(fields[0]) {
	case "help", "?":
		fmt.Fprintln(b.out, browseHelp)
		return nil
	case "n", "next":
		if b.current == nil {
			return fmt.Errorf("no current row")
		}
		row, ok, err = b.s.set.At(b.current).Next(ctx, true)
	case "p", "prev", "previous":
		if b.current == nil {
			return fmt.Errorf("no current row")
		}
		row, ok, err = b.s.set.At(b.current).Previous(ctx, true)
	case "first":
		row, ok, err = b.s.set.First(ctx)
	case "last":
		row, ok, err = b.s.set.Last(ctx)
	case "go":
		if len(fields) != 2 {
			return fmt.Errorf("usage: go <id>")
		}
		row, err = b.s.row(ctx, fields[1])
		ok = err == nil
	case "pos", "position":
		if b.current == nil {
			return fmt.Errorf("no current row")
		}
		pos, err := b.s.set.At(b.current).Position(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(b.out, "position %d\n", pos)
		return nil
	case "sql":
		if b.current == nil {
			return fmt.Errorf("no current row")
		}
		for _, side := range []keyset.Side{keyset.SideAfter, keyset.SideBefore} {
			expr, err := b.s.set.At(b.current).Predicate(side, true)
			if err != nil {
				return err
			}
			printExpr(b.out, fmt.Sprintf("%-7s", string(side)+":"), expr)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q, type 'help'", fields[0])
	}

	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(b.out, "(none)")
		return nil
	}

	b.current = row
	printRows(b.out, b.s.set, []keyset.Row{row})

	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".keysetq_history")
}
