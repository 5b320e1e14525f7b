package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/skawashin1122/bento-app-project/internal/clients"
	"github.com/skawashin1122/bento-app-project/internal/config"
	"github.com/skawashin1122/bento-app-project/internal/events"
	httpapi "github.com/skawashin1122/bento-app-project/internal/http"
	"github.com/skawashin1122/bento-app-project/internal/journal"
	"github.com/skawashin1122/bento-app-project/internal/order"
	"github.com/skawashin1122/bento-app-project/internal/presenter"
	"github.com/skawashin1122/bento-app-project/internal/session"
)

const (
	sessionIdleTimeout = 30 * time.Minute
	sweepInterval      = time.Minute
)

const usage = `usage: bento-client [command]

Commands:
  shell            interactive ordering shell (default)
  serve            HTTP adapter with a browser front-end
  migrate          apply submission journal migrations
  health           probe the backend API
  journal [n]      list the n most recent submission attempts`

func main() {
	cfg := config.Load()

	cmd, args := "shell", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	// The shell owns stdout, so its logs go to stderr.
	out := io.Writer(os.Stdout)
	if cmd == "shell" {
		out = os.Stderr
	}
	logger := log.New(out, "[bento-client] ", log.LstdFlags|log.Lmicroseconds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "shell":
		err = runShell(ctx, cfg, logger)
	case "serve":
		err = serve(ctx, cfg, logger)
	case "migrate":
		err = migrateJournal(cfg, logger)
	case "health":
		err = checkHealth(ctx, cfg)
	case "journal":
		err = listJournal(ctx, cfg, args)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Printf("%s: %v", cmd, err)
		stop()
		os.Exit(1)
	}
}

type backend struct {
	api  *clients.API
	base *clients.Client
}

func newBackend(cfg config.Config) backend {
	// Base HTTP client (shared)
	sharedHTTP := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	base := clients.NewClient("bento-api", cfg.APIURL, sharedHTTP)
	return backend{api: clients.NewAPI(base), base: base}
}

func (b backend) probes() []clients.HealthProbe {
	return []clients.HealthProbe{
		{Name: "bento-api", Client: b.base, Path: "/health"},
	}
}

// openRecorders connects the optional journal and event publisher. A recorder
// that cannot be reached is logged and left out; ordering works without it.
func openRecorders(ctx context.Context, cfg config.Config, logger *log.Logger) ([]session.Recorder, func()) {
	var (
		recorders []session.Recorder
		closers   []func()
	)

	if cfg.JournalDSN != "" {
		if repo, closeFn, err := openJournal(ctx, cfg, logger); err != nil {
			logger.Printf("journal disabled: %v", err)
		} else {
			recorders = append(recorders, repo)
			closers = append(closers, closeFn)
			logger.Printf("journal enabled")
		}
	}

	if cfg.RabbitURL != "" {
		if pub, closeFn, err := openPublisher(cfg); err != nil {
			logger.Printf("events disabled: %v", err)
		} else {
			recorders = append(recorders, pub)
			closers = append(closers, closeFn)
			logger.Printf("events enabled (exchange %s)", events.EventsExchange)
		}
	}

	return recorders, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

func openJournal(ctx context.Context, cfg config.Config, logger *log.Logger) (*journal.Repository, func(), error) {
	if cfg.JournalMigrate {
		if err := journal.RunMigrations(cfg.JournalDSN, logger); err != nil {
			return nil, nil, err
		}
	}
	pool, err := journal.NewPool(ctx, cfg.JournalDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open pool: %w", err)
	}
	return journal.NewRepository(pool), pool.Close, nil
}

func openPublisher(cfg config.Config) (*events.Publisher, func(), error) {
	conn, err := events.Dial(cfg.RabbitURL)
	if err != nil {
		return nil, nil, err
	}
	pub, err := events.NewPublisher(conn, "")
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return pub, func() {
		_ = pub.Close()
		_ = conn.Close()
	}, nil
}

func runShell(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	b := newBackend(cfg)
	recorders, closeRecorders := openRecorders(ctx, cfg, logger)
	defer closeRecorders()

	term := presenter.NewTerminal(os.Stdout)
	sess := session.New(session.Deps{
		Backend:   b.api,
		Presenter: term,
		Recorders: recorders,
		Logger:    logger,
	})

	term.Println("Bento ordering shell. Type 'help' for commands.")
	_, _ = sess.LoadCatalog(ctx)

	return newShell(sess, term, os.Stdout, cfg.UserName).run(ctx, os.Stdin)
}

func serve(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	b := newBackend(cfg)
	recorders, closeRecorders := openRecorders(ctx, cfg, logger)
	defer closeRecorders()

	sessions := httpapi.NewRegistry(func(p session.Presenter) *session.Session {
		return session.New(session.Deps{
			Backend:   b.api,
			Presenter: p,
			Recorders: recorders,
			Logger:    logger,
		})
	})

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       logger,
		Cfg:          cfg,
		Sessions:     sessions,
		HealthProbes: b.probes(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go sweepSessions(ctx, sessions, logger)

	serveErr := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s (backend %s)", cfg.Addr, cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Printf("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
	logger.Printf("shutdown complete")
	return nil
}

func sweepSessions(ctx context.Context, sessions *httpapi.Registry, logger *log.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := sessions.Sweep(now, sessionIdleTimeout); n > 0 {
				logger.Printf("expired %d idle session(s), %d active", n, sessions.Len())
			}
		}
	}
}

func migrateJournal(cfg config.Config, logger *log.Logger) error {
	if cfg.JournalDSN == "" {
		return errors.New("BENTO_JOURNAL_DSN is not set")
	}
	return journal.RunMigrations(cfg.JournalDSN, logger)
}

func checkHealth(ctx context.Context, cfg config.Config) error {
	results := clients.CheckAll(ctx, newBackend(cfg).probes())
	for _, r := range results {
		switch {
		case r.OK:
			fmt.Printf("%s: ok (%d)\n", r.Name, r.StatusCode)
		case r.Error != "":
			fmt.Printf("%s: unreachable: %s\n", r.Name, r.Error)
		default:
			fmt.Printf("%s: unhealthy (%d)\n", r.Name, r.StatusCode)
		}
	}
	if !clients.Healthy(results) {
		return errors.New("backend is unhealthy")
	}
	return nil
}

func listJournal(ctx context.Context, cfg config.Config, args []string) error {
	if cfg.JournalDSN == "" {
		return errors.New("BENTO_JOURNAL_DSN is not set")
	}
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid count %q", args[0])
		}
		limit = n
	}

	pool, err := journal.NewPool(ctx, cfg.JournalDSN)
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	defer pool.Close()

	attempts, err := journal.NewRepository(pool).ListRecent(ctx, limit)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		fmt.Println("No submissions recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ATTEMPT\tSUBMITTED AT\tUSER\tSTATUS\tACCEPTED\tTOTAL")
	for _, a := range attempts {
		var total int64
		accepted := a.Results()
		for _, r := range accepted {
			total += r.TotalPrice
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			a.ID,
			presenter.FormatTime(order.Timestamp{Time: a.SubmittedAt}),
			a.UserName,
			a.Status(),
			len(accepted), len(a.Lines),
			presenter.FormatYen(total),
		)
	}
	return tw.Flush()
}
