package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"careers/listing-service/internal/client"
	"careers/listing-service/internal/kanban"
	"careers/listing-service/internal/listing"
	"careers/listing-service/internal/session"
)

const shellHelp = `commands:
  /<text>              search (debounced)
  filter <key> [value] set or clear one criterion
  clear                drop every criterion
  sort <key> [asc|desc]
  n | p | page <n>     paging
  q                    quit
`

// shell drives a Browser from line commands. Pages are printed whenever the
// browser applies a fetch, including debounced searches.
type shell[T any] struct {
	b      *session.Browser[T]
	out    io.Writer
	render func(io.Writer, listing.Page[T])

	// extra handles kind-specific commands; ok reports whether name was one.
	extra  func(ctx context.Context, name, rest string) (ok bool, err error)
	onPage func([]T)
	help   string

	mu sync.Mutex // guards out
}

func (s *shell[T]) run(ctx context.Context, in io.Reader) error {
	s.b.OnChange(s.show)
	if err := s.b.Refresh(ctx); err != nil && !errors.Is(err, session.ErrSuperseded) {
		return err
	}
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		quit, err := s.exec(ctx, line)
		if err != nil {
			s.printf("error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
	return sc.Err()
}

// exec runs one command. Fetch errors are not returned; they reach the
// output through the browser's snapshot.
func (s *shell[T]) exec(ctx context.Context, line string) (quit bool, err error) {
	if text, ok := strings.CutPrefix(line, "/"); ok {
		s.b.SetSearch(strings.TrimSpace(text))
		return false, nil
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch name {
	case "q", "quit":
		return true, nil
	case "help":
		s.printf("%s%s", shellHelp, s.help)
	case "n", "next":
		_ = s.b.Next(ctx)
	case "p", "prev":
		_ = s.b.Prev(ctx)
	case "page":
		if len(args) != 1 {
			return false, errors.New("usage: page <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("page %q is not a number", args[0])
		}
		_ = s.b.SetPage(ctx, n)
	case "filter":
		if len(args) == 0 {
			return false, errors.New("usage: filter <key> [value]")
		}
		key := listing.Key(args[0])
		if !slices.Contains(listing.Keys, key) {
			return false, fmt.Errorf("unknown filter %q", args[0])
		}
		_ = s.b.SetFilter(ctx, key, strings.Join(args[1:], " "))
	case "clear":
		_ = s.b.ClearFilters(ctx)
	case "sort":
		if len(args) == 0 {
			return false, errors.New("usage: sort <key> [asc|desc]")
		}
		dir := ""
		if len(args) > 1 {
			dir = args[1]
		}
		_ = s.b.SetSort(ctx, listing.NewSortSpec(args[0], dir))
	default:
		if s.extra != nil {
			if ok, err := s.extra(ctx, name, rest); ok {
				return false, err
			}
		}
		return false, fmt.Errorf("unknown command %q (try help)", name)
	}
	return false, nil
}

func (s *shell[T]) show(snap session.Snapshot[T]) {
	if snap.Err == nil && s.onPage != nil {
		s.onPage(snap.Page.Items)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Err != nil {
		fmt.Fprintf(s.out, "error: %v\n", snap.Err)
		return
	}
	s.render(s.out, snap.Page)
}

func (s *shell[T]) printf(format string, a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, a...)
}

// ─── Applications board ──────────────────────────────────────────────────────

const boardHelp = `  note <id> <text>     append a note
  move <id> <status>   explicit status change
  act <id> <action>    guided action
  rm <id>              delete a rejected application
`

// boardShell adds workflow commands to an applications shell. Notes are
// shown before the server confirms them; moves and deletes wait for it.
func boardShell(c *client.Client) func(*shell[kanban.Application]) {
	return func(s *shell[kanban.Application]) {
		board := session.NewCollection[kanban.Application](nil)
		s.onPage = board.Replace
		s.help = boardHelp
		s.extra = func(ctx context.Context, name, rest string) (bool, error) {
			id, arg, _ := strings.Cut(rest, " ")
			arg = strings.TrimSpace(arg)
			var err error
			switch name {
			case "note":
				err = addNote(ctx, c, board, id, arg)
			case "move":
				_, err = c.MoveApplication(ctx, id, arg, "")
			case "act":
				_, err = c.ApplyAction(ctx, id, arg, "")
			case "rm":
				err = board.Delete(ctx, id, func(ctx context.Context) error {
					return c.DeleteApplication(ctx, id)
				})
			default:
				return false, nil
			}
			if err != nil {
				return true, err
			}
			_ = s.b.Refresh(ctx)
			return true, nil
		}
	}
}

func addNote(ctx context.Context, c *client.Client, board *session.Collection[kanban.Application], id, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("usage: note <id> <text>")
	}
	items := board.Items()
	i := slices.IndexFunc(items, func(a kanban.Application) bool { return a.ID == id })
	if i < 0 {
		return fmt.Errorf("application %s is not on this page", id)
	}
	next := items[i]
	next.Notes = kanban.AppendNote(next.Notes, kanban.FormatNote(time.Now(), "", "", text))
	_, err := board.Update(ctx, next, func(ctx context.Context) (kanban.Application, error) {
		a, err := c.AddNote(ctx, id, text)
		if err != nil {
			return kanban.Application{}, err
		}
		return *a, nil
	})
	return err
}
