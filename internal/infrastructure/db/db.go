package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"trade-journal/internal/infrastructure/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const defaultPingTimeout = 5 * time.Second

// sqlite 連線建立後套用的 pragma，連線池固定一條所以只需設定一次。
var sqlitePragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// Connect 依 driver 建立連線池並確認可連線；未設定 DSN 時回傳 nil，呼叫端改用記憶體儲存。
func Connect(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, nil
	}
	driverName, err := sqlDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	conn, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	configurePool(conn, driverName, cfg)

	if err := ping(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}
	if driverName == "sqlite" {
		for _, p := range sqlitePragmas {
			if _, err := conn.ExecContext(ctx, p); err != nil {
				conn.Close()
				return nil, fmt.Errorf("apply %q: %w", p, err)
			}
		}
	}
	log.Printf("[DB] connected driver=%s max_open=%d", driverName, conn.Stats().MaxOpenConnections)
	return conn, nil
}

func configurePool(conn *sql.DB, driverName string, cfg config.DBConfig) {
	if driverName == "sqlite" {
		// 單一寫入者，:memory: 也靠同一條連線保存資料
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		return
	}
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxIdleTime(cfg.MaxIdleTime)
}

func ping(ctx context.Context, conn *sql.DB) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultPingTimeout)
		defer cancel()
	}
	return conn.PingContext(ctx)
}

func sqlDriver(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres, "":
		return "pgx", nil
	case config.DriverSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", driver)
	}
}
