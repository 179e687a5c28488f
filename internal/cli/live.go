package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/forgo/surql/internal/database"
	"github.com/forgo/surql/internal/jobs"
)

// LiveOptions holds flags for the live command.
type LiveOptions struct {
	*RootOptions
	Entity string
	Where  string
	Action string
	Diff   bool
}

// NewLiveCommand creates the live command.
func NewLiveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Stream live changes of an entity",
		Long: `Start a LIVE SELECT on an entity and print each notification as a
JSON line until interrupted. The live query is killed on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Entity, "entity", "e", "", "entity name")
	cmd.Flags().StringVarP(&opts.Where, "where", "w", "", "filter document")
	cmd.Flags().StringVar(&opts.Action, "action", jobs.ActionAll, "CREATE, UPDATE, DELETE or ALL")
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "receive JSON patches instead of records")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

// LiveEvent is one printed notification.
type LiveEvent struct {
	LiveID string      `json:"live_id"`
	Action string      `json:"action"`
	Result interface{} `json:"result"`
}

func runLive(opts *LiveOptions, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	if err := opts.entity(opts.Entity); err != nil {
		return err
	}
	if _, err := jobs.ParseAction(opts.Action); err != nil {
		return err
	}
	filter, err := readFilter(cmd, opts.Where)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, _, release, err := opts.open(ctx, opts.Entity)
	if err != nil {
		return err
	}
	defer release()

	if opts.cfg.Metrics.Enabled {
		shutdown := opts.serveMetrics()
		defer shutdown()
	}

	listener, err := jobs.NewLiveListener(m, printEvents(cmd.OutOrStdout()), jobs.LiveConfig{
		Filter: filter,
		Diff:   opts.Diff,
		Action: opts.Action,
		Logger: opts.logger.With(slog.String("entity", opts.Entity)),
	})
	if err != nil {
		return err
	}
	if err := listener.Start(ctx); err != nil {
		return err
	}
	defer listener.Stop()

	<-ctx.Done()
	return nil
}

// printEvents writes each notification as one JSON line.
func printEvents(w io.Writer) jobs.Handler {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	return func(ctx context.Context, n database.Notification) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(LiveEvent{LiveID: n.LiveID, Action: string(n.Action), Result: n.Result})
	}
}

// serveMetrics exposes the command's registry on /metrics until the
// returned function is called.
func (o *RootOptions) serveMetrics() func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              o.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		o.logger.Info("metrics server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			o.logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			o.logger.Warn("metrics server shutdown", slog.Any("error", fmt.Errorf("shutdown: %w", err)))
		}
	}
}
