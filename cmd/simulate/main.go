package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-admin/internal/backend"
	"github.com/hackgods/clinic-admin/internal/catalog"
	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/config"
	"github.com/hackgods/clinic-admin/internal/logging"
	"github.com/hackgods/clinic-admin/internal/selection"
)

type SimConfig struct {
	BackendURL   string
	Username     string
	Password     string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	DeleteRatio  float64
	ReadRatio    float64
	Timeout      time.Duration
}

// DataPool holds the ids of appointments booked during the run.
type DataPool struct {
	mu           sync.Mutex
	appointments []string
}

func (dp *DataPool) AddAppointment(id string) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

// TakeRandomAppointment removes and returns a random booked id.
func (dp *DataPool) TakeRandomAppointment(rng *rand.Rand) (string, bool) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	if len(dp.appointments) == 0 {
		return "", false
	}
	i := rng.Intn(len(dp.appointments))
	id := dp.appointments[i]
	dp.appointments[i] = dp.appointments[len(dp.appointments)-1]
	dp.appointments = dp.appointments[:len(dp.appointments)-1]
	return id, true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Rejected  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

// Record classifies err: nil is a success, a backend 4xx a rejection and
// anything else an error.
func (om *OperationMetrics) Record(latency time.Duration, err error) {
	atomic.AddInt64(&om.Total, 1)
	var sErr *clinic.ExternalServiceError
	switch {
	case err == nil:
		atomic.AddInt64(&om.Success, 1)
	case errors.As(err, &sErr) && sErr.Rejected():
		atomic.AddInt64(&om.Rejected, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	om.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0, 0
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	return sum / time.Duration(len(latencies)),
		latencies[0],
		latencies[len(latencies)-1],
		percentile(latencies, 50),
		percentile(latencies, 95)
}

func percentile(sorted []time.Duration, p int) time.Duration {
	i := len(sorted) * p / 100
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}

type Metrics struct {
	Booking          OperationMetrics
	Delete           OperationMetrics
	ListDoctors      OperationMetrics
	ListAppointments OperationMetrics
}

type Simulator struct {
	config  SimConfig
	client  *backend.Client
	catalog *catalog.Store
	doctors []clinic.Doctor
	pool    *DataPool
	log     zerolog.Logger
	metrics Metrics
}

func main() {
	cmd := &cobra.Command{
		Use:          "simulate",
		Short:        "Generate booking load against the clinic backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := config.Load()
			if err != nil {
				return err
			}
			f := cmd.Flags()
			cfg := SimConfig{BackendURL: base.BackendURL, Timeout: base.RequestTimeout}
			cfg.Username, _ = f.GetString("username")
			cfg.Password, _ = f.GetString("password")
			cfg.Duration, _ = f.GetDuration("duration")
			cfg.Workers, _ = f.GetInt("workers")
			cfg.BookingRatio, _ = f.GetFloat64("booking")
			cfg.DeleteRatio, _ = f.GetFloat64("delete")
			cfg.ReadRatio, _ = f.GetFloat64("read")
			if cfg.Username == "" {
				cfg.Username = base.AdminUsername
			}
			if cfg.Password == "" {
				cfg.Password = base.AdminPassword
			}
			return run(cmd.Context(), normalize(cfg), logging.New(base.Env), os.Stdout)
		},
	}
	cmd.Flags().String("username", "", "Admin username (defaults to ADMIN_USERNAME)")
	cmd.Flags().String("password", "", "Admin password (defaults to ADMIN_PASSWORD)")
	cmd.Flags().Duration("duration", 30*time.Second, "How long to run")
	cmd.Flags().Int("workers", 10, "Concurrent workers")
	cmd.Flags().Float64("booking", 0.5, "Share of booking operations")
	cmd.Flags().Float64("delete", 0.1, "Share of delete operations")
	cmd.Flags().Float64("read", 0.4, "Share of list operations")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// normalize scales the ratios to sum to one.
func normalize(cfg SimConfig) SimConfig {
	total := cfg.BookingRatio + cfg.DeleteRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.DeleteRatio /= total
		cfg.ReadRatio /= total
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("admin credentials are required (flags or ADMIN_USERNAME/ADMIN_PASSWORD)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	return nil
}

func run(ctx context.Context, cfg SimConfig, log zerolog.Logger, out io.Writer) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	log.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("booking", cfg.BookingRatio).
		Float64("delete", cfg.DeleteRatio).
		Float64("read", cfg.ReadRatio).
		Msg("simulator starting")

	client := backend.New(cfg.BackendURL, cfg.Timeout, log)
	res, err := client.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return err
	}
	ctx = backend.WithToken(ctx, res.Token)

	doctors, err := client.ListDoctors(ctx)
	if err != nil {
		return err
	}
	if len(doctors) == 0 {
		return errors.New("backend has no doctors, run seed first")
	}
	log.Info().Int("doctors", len(doctors)).Msg("loaded doctors")

	sim := &Simulator{
		config:  cfg,
		client:  client,
		catalog: catalog.NewDefault(),
		doctors: doctors,
		pool:    &DataPool{},
		log:     log,
	}
	sim.Run(ctx)
	sim.PrintReport(out)
	return nil
}

func (s *Simulator) Run(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.config.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.config.BookingRatio:
			s.doBooking(ctx, rng)
		case r < s.config.BookingRatio+s.config.DeleteRatio:
			s.doDelete(ctx, rng)
		case rng.Intn(2) == 0:
			start := time.Now()
			_, err := s.client.ListDoctors(ctx)
			s.record(ctx, &s.metrics.ListDoctors, start, err)
		default:
			start := time.Now()
			_, err := s.client.ListAppointments(ctx)
			s.record(ctx, &s.metrics.ListAppointments, start, err)
		}
	}
}

// doBooking books a random diagnosis with one of its eligible doctors.
func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	labels := s.catalog.ListSpecializations()
	diagnosis := labels[rng.Intn(len(labels))]
	eligible := selection.Eligible(s.doctors, s.catalog, diagnosis)
	if len(eligible) == 0 {
		return
	}
	doc := eligible[rng.Intn(len(eligible))]
	visit := time.Now().AddDate(0, 0, 1+rng.Intn(60))

	start := time.Now()
	a, err := s.client.AddAppointment(ctx, clinic.NewAppointment{
		PatientName: fmt.Sprintf("Sim Patient %d", rng.Intn(100000)),
		Age:         1 + rng.Intn(95),
		Diagnosis:   diagnosis,
		Doctor:      doc.Name,
		Date:        visit.Format(time.DateOnly),
		Time:        fmt.Sprintf("%02d:%02d", 8+rng.Intn(10), 15*rng.Intn(4)),
		CreatedAt:   time.Now().UTC(),
	})
	s.record(ctx, &s.metrics.Booking, start, err)
	if err == nil {
		s.pool.AddAppointment(a.ID)
	}
}

func (s *Simulator) doDelete(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.TakeRandomAppointment(rng)
	if !ok {
		return
	}
	start := time.Now()
	err := s.client.DeleteAppointment(ctx, id)
	s.record(ctx, &s.metrics.Delete, start, err)
}

// record skips calls cut short by the end of the run.
func (s *Simulator) record(ctx context.Context, om *OperationMetrics, start time.Time, err error) {
	if err != nil && ctx.Err() != nil {
		return
	}
	om.Record(time.Since(start), err)
}

func (s *Simulator) PrintReport(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "SIMULATION REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Duration: %s\n", s.config.Duration)
	fmt.Fprintf(w, "Workers: %d\n\n", s.config.Workers)

	printOperationReport(w, "Booking", &s.metrics.Booking)
	printOperationReport(w, "Delete", &s.metrics.Delete)
	printOperationReport(w, "List doctors", &s.metrics.ListDoctors)
	printOperationReport(w, "List appointments", &s.metrics.ListAppointments)
}

func printOperationReport(w io.Writer, name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}
	success := atomic.LoadInt64(&om.Success)
	rejected := atomic.LoadInt64(&om.Rejected)
	failed := atomic.LoadInt64(&om.Error)
	avg, min, max, p50, p95 := om.Stats()

	fmt.Fprintf(w, "%s:\n", name)
	fmt.Fprintf(w, "  Total: %d\n", total)
	fmt.Fprintf(w, "  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if rejected > 0 {
		fmt.Fprintf(w, "  Rejected: %d (%.1f%%)\n", rejected, float64(rejected)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Fprintf(w, "  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Fprintf(w, "  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n\n", avg, min, max, p50, p95)
}
