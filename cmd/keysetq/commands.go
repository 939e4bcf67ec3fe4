package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alp4ka/keyset"
)

func newSQLCmd() *cobra.Command {
	var after, before string

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Print the compiled ORDER BY and, for a row, its seek predicates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "columns:  %s\n", s.set)
			printExpr(out, "order:   ", s.set.OrderBy())
			printExpr(out, "reverse: ", s.set.ReverseOrderBy())

			for _, ref := range []struct {
				id   string
				side keyset.Side
			}{{after, keyset.SideAfter}, {before, keyset.SideBefore}} {
				if ref.id == "" {
					continue
				}

				row, err := s.row(cmd.Context(), ref.id)
				if err != nil {
					return err
				}
				expr, err := s.set.At(row).Predicate(ref.side, true)
				if err != nil {
					return err
				}
				printExpr(out, fmt.Sprintf("%-9s", string(ref.side)+":"), expr)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&after, "after", "", "primary key of the row to seek after")
	cmd.Flags().StringVar(&before, "before", "", "primary key of the row to seek before")

	return cmd
}

func newListCmd() *cobra.Command {
	var (
		limit    int
		token    string
		backward bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a page of rows in order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			pager, err := keyset.DecodeCursorPager(limit, token)
			if err != nil {
				return err
			}
			pager = pager.WithLookahead()
			if backward {
				pager = pager.WithBackward()
			}

			res, err := keyset.FetchPage(cmd.Context(), pager, s.set)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printRows(out, s.set, res.Items)
			fmt.Fprintf(out, "(%d of %d rows)\n", len(res.Items), res.Total)
			if res.NextPageToken != nil {
				fmt.Fprintf(out, "next page: --token %s\n", res.NextPageToken)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", keyset.DefaultLimit, "page size")
	cmd.Flags().StringVarP(&token, "token", "t", "", "page token printed by a previous list")
	cmd.Flags().BoolVar(&backward, "backward", false, "page towards the start of the ordering")

	return cmd
}

func newNeighbourCmd(use, short string, forward bool) *cobra.Command {
	var noLoop bool

	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			row, ok, err := s.neighbour(cmd.Context(), args[0], forward, !noLoop)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "(none)")
				return nil
			}

			printRows(cmd.OutOrStdout(), s.set, []keyset.Row{row})

			return nil
		},
	}

	cmd.Flags().BoolVar(&noLoop, "no-loop", false, "do not wrap around at the ends")

	return cmd
}

func newPositionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "position <id>",
		Short: "Print the 1-based position of a row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			row, err := s.row(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			pos, err := s.set.At(row).Position(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), pos)

			return nil
		},
	}
}

func (s *session) neighbour(ctx context.Context, id string, forward, loop bool) (keyset.Row, bool, error) {
	row, err := s.row(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if forward {
		return s.set.At(row).Next(ctx, loop)
	}

	return s.set.At(row).Previous(ctx, loop)
}

func printExpr(w io.Writer, label string, expr keyset.Expr) {
	if expr.IsEmpty() {
		fmt.Fprintf(w, "%s (none)\n", label)
		return
	}

	fmt.Fprintf(w, "%s %s\n", label, expr.SQL)
	if len(expr.Vars) > 0 {
		fmt.Fprintf(w, "%s %v\n", strings.Repeat(" ", len(label)), expr.Vars)
	}
}
