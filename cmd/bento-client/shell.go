package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/skawashin1122/bento-app-project/internal/presenter"
	"github.com/skawashin1122/bento-app-project/internal/session"
)

const shellHelp = `Commands:
  menu               show the cached menu
  refresh            reload the menu from the server
  add <id> [n]       add n (default 1) of a menu item
  remove <id> [n]    remove n (default 1) of a menu item
  cart               show the cart and its total
  name <user>        set the name orders are placed under
  submit [user]      place one order per cart line
  history            list past orders
  clear              empty the cart
  help               show this help
  quit               leave the shell`

// shell is the interactive terminal front-end of one session.
type shell struct {
	sess *session.Session
	term *presenter.Terminal
	out  io.Writer
	user string
}

func newShell(sess *session.Session, term *presenter.Terminal, out io.Writer, user string) *shell {
	return &shell{sess: sess, term: term, out: out, user: user}
}

// run reads commands from in until quit, EOF or ctx is cancelled.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		s.prompt()
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if quit := s.exec(ctx, line); quit {
				return nil
			}
		}
	}
}

func (s *shell) prompt() {
	if s.user != "" {
		fmt.Fprintf(s.out, "%s> ", s.user)
		return
	}
	fmt.Fprint(s.out, "> ")
}

// exec runs a single command line and reports whether the shell should stop.
func (s *shell) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help", "?":
		s.term.Println(shellHelp)
	case "menu":
		if !s.sess.Catalog().Loaded() {
			s.term.Println("The menu has not been loaded yet. Type 'refresh' to load it.")
			return false
		}
		s.term.CatalogLoaded(s.sess.Catalog().Items(), nil)
	case "refresh":
		_, _ = s.sess.LoadCatalog(ctx)
	case "add", "remove":
		id, n, err := parseItemArgs(args)
		if err != nil {
			s.term.Println(err)
			return false
		}
		if cmd == "remove" {
			n = -n
		}
		if _, err := s.sess.ChangeQuantity(id, n); err != nil {
			s.term.Println(err)
		}
	case "cart":
		snap := s.sess.Cart()
		s.term.CartChanged(snap.Lines(), s.sess.Totals())
	case "name":
		name := strings.TrimSpace(strings.Join(args, " "))
		if name == "" {
			s.term.Println("usage: name <user>")
			return false
		}
		s.user = name
		s.term.Println("Orders will be placed as " + name + ".")
	case "submit":
		name := s.user
		if len(args) > 0 {
			name = strings.Join(args, " ")
		}
		_, _ = s.sess.Submit(ctx, name)
	case "history":
		_, _ = s.sess.LoadHistory(ctx)
	case "clear":
		s.sess.ClearCart()
	default:
		s.term.Println(fmt.Sprintf("unknown command %q, type 'help' for the list", cmd))
	}
	return false
}

func parseItemArgs(args []string) (id, n int, err error) {
	if len(args) == 0 || len(args) > 2 {
		return 0, 0, fmt.Errorf("usage: add|remove <id> [n]")
	}
	id, err = strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, 0, fmt.Errorf("invalid menu id %q", args[0])
	}
	n = 1
	if len(args) == 2 {
		n, err = strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("invalid quantity %q", args[1])
		}
	}
	return id, n, nil
}
