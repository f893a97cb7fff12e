package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-admin/internal/appointment"
	"github.com/hackgods/clinic-admin/internal/backend"
	"github.com/hackgods/clinic-admin/internal/catalog"
	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/config"
	"github.com/hackgods/clinic-admin/internal/doctor"
	"github.com/hackgods/clinic-admin/internal/lock"
	"github.com/hackgods/clinic-admin/internal/logging"
	redisclient "github.com/hackgods/clinic-admin/internal/redis"
	"github.com/hackgods/clinic-admin/internal/session"
)

const redisPrefix = "clinic-admin"

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", clinic.UserMessage(err))
		os.Exit(1)
	}
}

// app is everything a command needs. It is built once per invocation.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	client   *backend.Client
	sessions session.Store
	catalog  *catalog.Store
	doctors  *doctor.Registry
	appts    *appointment.Registry
	rdb      *redis.Client
	in       io.Reader
	out      io.Writer
	now      func() time.Time
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out, now: time.Now}

	rootCmd := &cobra.Command{
		Use:           "clinic-admin",
		Short:         "Manage clinic doctors and appointments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			backendURL, _ := cmd.Flags().GetString("backend")
			catalogFile, _ := cmd.Flags().GetString("catalog")
			profile, _ := cmd.Flags().GetString("profile")
			verbose, _ := cmd.Flags().GetBool("verbose")
			return a.init(cmd.Context(), backendURL, catalogFile, profile, verbose)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().String("backend", "", "Backend base URL (overrides BACKEND_URL)")
	rootCmd.PersistentFlags().String("catalog", "", "Legacy doctor name to specialization JSON file")
	rootCmd.PersistentFlags().String("profile", "default", "Session profile name for the redis session store")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log backend calls to stderr")

	rootCmd.AddCommand(loginCmd(a))
	rootCmd.AddCommand(logoutCmd(a))
	rootCmd.AddCommand(whoamiCmd(a))
	rootCmd.AddCommand(specializationsCmd(a))
	rootCmd.AddCommand(doctorsCmd(a))
	rootCmd.AddCommand(appointmentsCmd(a))
	rootCmd.AddCommand(dashboardCmd(a))

	return rootCmd
}

func (a *app) init(ctx context.Context, backendURL, catalogFile, profile string, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	a.cfg = cfg

	if verbose {
		a.log = logging.NewWithWriter(cfg.Env, os.Stderr).Level(zerolog.DebugLevel)
	} else {
		a.log = logging.NewWithWriter(cfg.Env, os.Stderr).Level(zerolog.WarnLevel)
	}

	if cfg.SessionStore == "redis" || cfg.LockBackend == "redis" {
		a.rdb, err = redisclient.Connect(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}

	if cfg.SessionStore == "redis" {
		a.sessions = session.NewRedisStore(a.rdb, redisPrefix, profile)
	} else {
		a.sessions = session.NewFileStore(cfg.SessionFile)
	}

	var locker lock.Locker = lock.NewLocal()
	if cfg.LockBackend == "redis" {
		locker = lock.NewRedis(a.rdb, redisPrefix, cfg.LockTTL)
	}

	a.catalog = catalog.NewDefault()
	if catalogFile != "" {
		f, err := os.Open(catalogFile)
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		err = a.catalog.Import(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	a.client = backend.New(cfg.BackendURL, cfg.RequestTimeout, a.log)
	a.doctors = doctor.NewRegistry(a.client, a.catalog, locker, a.log)
	a.appts = appointment.NewRegistry(a.client, locker, a.log)
	return nil
}

func (a *app) close() error {
	if a.rdb != nil {
		return a.rdb.Close()
	}
	return nil
}

// authed returns ctx carrying the stored session token.
func (a *app) authed(ctx context.Context) (context.Context, session.Session, error) {
	s, err := session.Current(ctx, a.sessions, a.now())
	if err != nil {
		return nil, session.Session{}, err
	}
	return backend.WithToken(ctx, s.Token), s, nil
}

// checkSession drops a session the backend no longer accepts.
func (a *app) checkSession(ctx context.Context, err error) error {
	if errors.Is(err, backend.ErrUnauthorized) {
		_ = a.sessions.Clear(ctx)
		return session.ErrExpired
	}
	return err
}
