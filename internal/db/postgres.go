package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The api-server is the only writer and handles one admin client at a
// time, so a small pool is plenty.
const (
	maxConns     = 8
	minConns     = 1
	pingTimeout  = 5 * time.Second
	healthPeriod = 30 * time.Second
	connLifetime = time.Hour
	connIdleTime = 15 * time.Minute
)

// ConnectPostgres opens a pool on dsn and pings it once. Errors name the
// database host but never the credentials.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		// the parse error may quote the dsn, password included
		return nil, errors.New("postgres dsn is malformed")
	}
	host := dsnHost(cfg)

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.HealthCheckPeriod = healthPeriod
	cfg.MaxConnLifetime = connLifetime
	cfg.MaxConnIdleTime = connIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool %s: %w", host, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres %s: %w", host, err)
	}

	return pool, nil
}

// dsnHost renders host:port/database for log and error messages.
func dsnHost(cfg *pgxpool.Config) string {
	cc := cfg.ConnConfig
	addr := net.JoinHostPort(cc.Host, strconv.Itoa(int(cc.Port)))
	if cc.Database == "" {
		return addr
	}
	return addr + "/" + cc.Database
}
