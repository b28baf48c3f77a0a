// Package database opens the MySQL connection pool and applies the schema.
package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Options are the connection parameters read from the environment.
type Options struct {
	User, Pass       string
	Host, Port, Name string
	// Location is used for DATE/DATETIME values; event days are calendar
	// days in this zone.
	Location *time.Location
}

// DSN builds the driver connection string.  parseTime=true scans DATE and
// DATETIME columns into time.Time interpreted in opts.Location;
// clientFoundRows makes UPDATE report matched rows.
func DSN(opts Options) string {
	cfg := mysql.NewConfig()
	cfg.User = opts.User
	cfg.Passwd = opts.Pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(opts.Host, opts.Port)
	cfg.DBName = opts.Name
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.Loc = opts.Location
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(opts))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
