package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-admin/internal/auth"
	"github.com/hackgods/clinic-admin/internal/catalog"
	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/config"
	"github.com/hackgods/clinic-admin/internal/db"
	"github.com/hackgods/clinic-admin/internal/logging"
	"github.com/hackgods/clinic-admin/internal/store"
)

func main() {
	doctors := flag.Int("doctors", 40, "number of doctors to create")
	appointments := flag.Int("appointments", 200, "number of appointments to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Env).With().Str("service", "seed").Logger()

	if err := run(cfg, log, *doctors, *appointments); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Msg("seed complete")
}

func run(cfg config.Config, log zerolog.Logger, doctorCount, apptCount int) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		return err
	}
	st := store.NewPgStore(pool)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		hash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			return err
		}
		if err := st.PutAdmin(ctx, store.Admin{Username: cfg.AdminUsername, PasswordHash: hash}); err != nil {
			return err
		}
		log.Info().Str("admin", cfg.AdminUsername).Msg("admin seeded")
	}

	names, err := seedDoctors(ctx, st, log, doctorCount)
	if err != nil {
		return fmt.Errorf("seed doctors: %w", err)
	}
	if err := seedAppointments(ctx, st, log, names, apptCount); err != nil {
		return fmt.Errorf("seed appointments: %w", err)
	}
	return nil
}

// seedDoctors creates doctors spread over every label but General and
// returns doctor name to label.
func seedDoctors(ctx context.Context, st store.Store, log zerolog.Logger, count int) (map[string]string, error) {
	log.Info().Int("count", count).Msg("seeding doctors")

	labels := catalog.DefaultLabels[1:]
	// one shared hash keeps seeding fast
	hash, err := auth.HashPassword("doctor-password")
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, count)
	for len(names) < count {
		name := "Dr. " + gofakeit.LastName()
		if _, taken := names[name]; taken {
			continue
		}
		spec := labels[gofakeit.Number(0, len(labels)-1)]
		email := strings.ToLower(strings.ReplaceAll(gofakeit.Username(), " ", "")) + fmt.Sprintf(".%d@clinic.test", len(names))

		_, err := st.CreateDoctor(ctx, clinic.Doctor{Name: name, Email: email, Specialization: spec}, hash)
		if errors.Is(err, store.ErrDuplicateName) {
			// left over from an earlier run
			continue
		}
		if err != nil {
			return nil, err
		}
		names[name] = spec
	}

	log.Info().Msg("doctors seeded")
	return names, nil
}

func seedAppointments(ctx context.Context, st store.Store, log zerolog.Logger, doctors map[string]string, count int) error {
	if len(doctors) == 0 || count == 0 {
		return nil
	}
	log.Info().Int("count", count).Msg("seeding appointments")

	names := make([]string, 0, len(doctors))
	for n := range doctors {
		names = append(names, n)
	}

	for i := 0; i < count; i++ {
		doc := names[gofakeit.Number(0, len(names)-1)]
		visit := gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 2, 0))

		_, err := st.CreateAppointment(ctx, clinic.NewAppointment{
			PatientName: gofakeit.Name(),
			Age:         gofakeit.Number(1, 95),
			Diagnosis:   doctors[doc],
			Doctor:      doc,
			Date:        visit.Format(time.DateOnly),
			Time:        fmt.Sprintf("%02d:%02d", gofakeit.Number(8, 17), 15*gofakeit.Number(0, 3)),
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		if (i+1)%50 == 0 {
			log.Info().Int("done", i+1).Int("total", count).Msg("appointments seeded")
		}
	}
	return nil
}
