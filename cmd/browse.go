package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"careers/listing-service/internal/client"
	"careers/listing-service/internal/config"
	"careers/listing-service/internal/kanban"
	"careers/listing-service/internal/listing"
	"careers/listing-service/internal/model"
	"careers/listing-service/internal/session"
)

// footerStyle is applied outside the tabwriter; escape codes inside cells
// would break column widths.
var footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)

func newClient(opts ...client.Option) (*client.Client, *config.Config, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	c, err := client.New(cfg.ServerURL, cfg.HTTPTimeout, opts...)
	if err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}

type browseFlags struct {
	criteria map[listing.Key]*string
	sort     string
	dir      string
	page     int
	pageSize int
	all         bool
	asJSON      bool
	interactive bool
	retries     int
}

func browseCommand() *cobra.Command {
	f := browseFlags{criteria: map[listing.Key]*string{}}
	cmd := &cobra.Command{
		Use:       "browse <positions|projects|posts|applications>",
		Short:     "Print one page of a listing from a running instance",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"positions", "projects", "posts", "applications"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []client.Option
			if f.retries > 0 {
				opts = append(opts, client.WithRetries(f.retries))
			}
			c, cfg, err := newClient(opts...)
			if err != nil {
				return err
			}
			q := f.query(cfg.DefaultPageSize)
			bio := browseIO{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}
			switch args[0] {
			case "positions":
				return browse(cmd.Context(), bio, c.ListPositions, q, cfg, f, nil, positionRow,
					"ID", "TITLE", "LOCATION", "TYPE", "LEVEL", "STATUS")
			case "projects":
				return browse(cmd.Context(), bio, c.ListProjects, q, cfg, f, nil, projectRow,
					"ID", "KIND", "TITLE", "STATUS", "FEATURED")
			case "posts":
				return browse(cmd.Context(), bio, c.ListPosts, q, cfg, f, nil, postRow,
					"ID", "TITLE", "CATEGORY", "PUBLISHED")
			default:
				return browse(cmd.Context(), bio, c.ListApplications, q, cfg, f, boardShell(c), applicationRow,
					"ID", "CANDIDATE", "POSITION", "STATUS", "APPLIED")
			}
		},
	}
	for _, k := range listing.Keys {
		f.criteria[k] = cmd.Flags().String(string(k), "", "filter by "+string(k))
	}
	cmd.Flags().StringVar(&f.sort, "sort", "", "newest, oldest, title, salary_high, salary_low or deadline")
	cmd.Flags().StringVar(&f.dir, "dir", "", "asc or desc")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "items per page")
	cmd.Flags().BoolVar(&f.all, "all", false, "walk every page")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print pages as JSON")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "read search, filter and paging commands from stdin")
	cmd.Flags().IntVar(&f.retries, "retries", 0, "retry failed page fetches up to n times")
	return cmd
}

func (f browseFlags) query(defaultPageSize int) listing.Query {
	size := f.pageSize
	if size <= 0 {
		size = defaultPageSize
	}
	q := listing.NewQuery(size)
	for _, k := range listing.Keys {
		if v := *f.criteria[k]; v != "" {
			q = q.WithCriterion(k, v)
		}
	}
	if f.sort != "" || f.dir != "" {
		q = q.WithSort(listing.NewSortSpec(f.sort, f.dir))
	}
	return q.WithPage(f.page)
}

type browseIO struct {
	in  io.Reader
	out io.Writer
}

func browse[T any](
	ctx context.Context, bio browseIO,
	fetch session.Fetcher[T], q listing.Query, cfg *config.Config, f browseFlags,
	setup func(*shell[T]), row func(T) []string, header ...string,
) error {
	b := session.NewBrowser(ctx, session.RemoteSource(fetch), q, cfg.SearchDebounce)
	defer b.Close()

	out := bio.out
	if f.interactive {
		sh := &shell[T]{b: b, out: out, render: func(w io.Writer, p listing.Page[T]) {
			printPage(w, p, row, header)
		}}
		if setup != nil {
			setup(sh)
		}
		return sh.run(ctx, bio.in)
	}

	if err := b.Refresh(ctx); err != nil {
		return err
	}
	for {
		page := b.Snapshot().Page
		if f.asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(page); err != nil {
				return err
			}
		} else {
			printPage(out, page, row, header)
		}
		if !f.all || !page.HasNext {
			return nil
		}
		if err := b.Next(ctx); err != nil {
			return err
		}
	}
}

func printPage[T any](out io.Writer, page listing.Page[T], row func(T) []string, header []string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, it := range page.Items {
		fmt.Fprintln(w, strings.Join(row(it), "\t"))
	}
	_ = w.Flush()
	fmt.Fprintln(out, footerStyle.Render(fmt.Sprintf("page %d/%d · %d total", page.Page, page.TotalPages, page.Total)))
}

func positionRow(p model.Position) []string {
	return []string{p.ID, p.Title, p.Location, p.EmploymentType, p.Level, p.Status}
}

func projectRow(p model.Project) []string {
	return []string{p.ID, p.Kind, p.Title, p.Status, strconv.FormatBool(p.Featured)}
}

func postRow(p model.Post) []string {
	published := ""
	if p.PublishedAt != nil {
		published = p.PublishedAt.Format("2006-01-02")
	}
	return []string{p.ID, p.Title, deref(p.CategorySlug), published}
}

func applicationRow(a kanban.Application) []string {
	return []string{a.ID, a.CandidateName, a.PositionTitle, string(a.Status), a.AppliedAt.Format("2006-01-02")}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ─── Application workflow ────────────────────────────────────────────────────

func appCommand() *cobra.Command {
	var note string
	app := &cobra.Command{
		Use:   "app",
		Short: "Drive the application workflow on a running instance",
	}

	printApp := func(cmd *cobra.Command, a *kanban.Application) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", a.ID, a.CandidateName, a.Status)
	}

	move := &cobra.Command{
		Use:   "move <id> <status>",
		Short: "Move an application to any status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			a, err := c.MoveApplication(cmd.Context(), args[0], args[1], note)
			if err != nil {
				return err
			}
			printApp(cmd, a)
			return nil
		},
	}

	action := &cobra.Command{
		Use:   "action <id> <action>",
		Short: "Run a guided action such as review or reject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			a, err := c.ApplyAction(cmd.Context(), args[0], args[1], note)
			if err != nil {
				return err
			}
			printApp(cmd, a)
			return nil
		},
	}

	actions := &cobra.Command{
		Use:   "actions <id>",
		Short: "List the guided actions offered for an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			list, err := c.Actions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, a := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s → %s\n", a.Name, a.To)
			}
			return nil
		},
	}

	addNote := &cobra.Command{
		Use:   "note <id> <text>",
		Short: "Append a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			a, err := c.AddNote(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printApp(cmd, a)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rejected application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			return c.DeleteApplication(cmd.Context(), args[0])
		},
	}

	for _, sub := range []*cobra.Command{move, action} {
		sub.Flags().StringVar(&note, "note", "", "note recorded with the transition")
	}
	app.AddCommand(move, action, actions, addNote, del)
	return app
}
