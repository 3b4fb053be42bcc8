package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bitflora/patristics-explorer/internal/explore"
	"github.com/bitflora/patristics-explorer/internal/filter"
	"github.com/bitflora/patristics-explorer/internal/heat"
)

const excerptRunes = 240

// withSession opens the corpus for the duration of fn.
func withSession(g *globalFlags, fn func(ctx context.Context, s *session, w io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		s, err := g.open(ctx)
		if err != nil {
			return err
		}
		defer s.close()
		return fn(ctx, s, cmd.OutOrStdout(), args)
	}
}

func booksCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "Show the citation heatmap of every book",
		Args:  cobra.NoArgs,
		RunE: withSession(g, func(_ context.Context, s *session, w io.Writer, _ []string) error {
			for _, b := range s.explorer.Books(s.active) {
				fmt.Fprintf(w, "%-22s %9s  %s\n", b.Name, comma(b.Count), heatBar(b.Level))
			}
			fmt.Fprintf(w, "%-22s %9s\n", "Total", comma(filter.GlobalCount(s.explorer.Index(), s.active)))
			return nil
		}),
	}
}

func categoriesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List work categories with their citation totals",
		Args:  cobra.NoArgs,
		RunE: withSession(g, func(_ context.Context, s *session, w io.Writer, _ []string) error {
			for _, c := range filter.CategoryTotals(s.explorer.Index()) {
				mark := " "
				if s.active.Has(c.Category) {
					mark = "*"
				}
				fmt.Fprintf(w, "%s %-24s %9s\n", mark, c.Category, comma(c.Count))
			}
			return nil
		}),
	}
}

func chaptersCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <book>",
		Short: "Show the citation heatmap of a book's chapters",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(g, func(_ context.Context, s *session, w io.Writer, args []string) error {
			chs, err := s.explorer.Chapters(args[0], s.active)
			if err != nil {
				return err
			}
			for _, ch := range chs {
				fmt.Fprintf(w, "%4d %9s  %s\n", ch.Number, comma(ch.Count), heatBar(ch.Level))
			}
			return nil
		}),
	}
}

func versesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verses <book> <chapter>",
		Short: "Group a chapter's citations by verse",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(g, func(ctx context.Context, s *session, w io.Writer, args []string) error {
			sel, err := selection(args)
			if err != nil {
				return err
			}
			vv, _, err := s.explorer.Verses(ctx, sel, s.active)
			if err != nil {
				return err
			}
			for _, grp := range vv.Groups {
				fmt.Fprintf(w, "%-8s %7s  %s\n", grp.Key, comma(len(grp.Citations)), heatBar(vv.Levels[grp.Key]))
			}
			return nil
		}),
	}
}

func citeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cite <book> <chapter> [verse]",
		Short: "Print the citing passages of a chapter or verse",
		Long: `Print the citing passages of a chapter, or of one verse key.
Use "whole" for citations of the chapter as a whole.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: withSession(g, func(ctx context.Context, s *session, w io.Writer, args []string) error {
			sel, err := selection(args)
			if err != nil {
				return err
			}
			cards, _, err := s.explorer.Cards(ctx, sel, s.active)
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Fprintln(w, "No citations.")
				return nil
			}
			for _, c := range cards {
				writeCard(w, c)
			}
			return nil
		}),
	}
}

func timelineCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Bucket the active works' citations by era and canonical section",
		Args:  cobra.NoArgs,
		RunE: withSession(g, func(ctx context.Context, s *session, w io.Writer, _ []string) error {
			view, _ := s.explorer.Timeline(ctx, s.active)
			fmt.Fprintf(w, "Bucket width: %d years\n", view.Width)
			for _, b := range view.Buckets {
				fmt.Fprintf(w, "%5d to %-5d  %s works, %s citations\n",
					b.Start, b.Start+b.Width-1, comma(b.WorkCount), comma(b.Citations()))
				for _, st := range b.Sections {
					if st.Citations == 0 {
						continue
					}
					fmt.Fprintf(w, "    %-16s %7s\n", st.Section, comma(st.Citations))
				}
			}
			fmt.Fprintf(w, "Undated works: %s\n", comma(view.Undated))
			if len(view.Failed) > 0 {
				fmt.Fprintf(w, "Works not loaded: %s\n", joinInts(view.Failed))
			}
			return nil
		}),
	}
}

// selection parses <book> <chapter> [verse].
func selection(args []string) (explore.Selection, error) {
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return explore.Selection{}, fmt.Errorf("invalid chapter %q", args[1])
	}
	sel := explore.Selection{}.WithBook(args[0]).WithChapter(n)
	if len(args) > 2 {
		sel = sel.WithVerse(args[2])
	}
	return sel, nil
}

func writeCard(w io.Writer, c explore.Card) {
	head := c.Work.Author
	if c.Work.Title != "" {
		head += ", " + c.Work.Title
	}
	if c.Work.Year != nil {
		head += fmt.Sprintf(" (%d)", *c.Work.Year)
	}
	fmt.Fprintf(w, "[%s] %s\n", c.VerseKey, head)

	switch {
	case c.Err != nil:
		fmt.Fprintf(w, "    (passage unavailable: %v)\n", c.Err)
	case c.Span.Found():
		fmt.Fprintf(w, "    >> %s <<\n", clip(c.Span.Highlighted, excerptRunes))
	default:
		fmt.Fprintf(w, "    %s\n", clip(c.Span.Prefix, excerptRunes))
	}
}

func heatBar(level int) string {
	return strings.Repeat("#", level) + strings.Repeat(".", heat.MaxLevel-level)
}

func comma(n int) string { return humanize.Comma(int64(n)) }

func clip(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
