// Command sqldbal-cli is a small demonstration program that wires the
// embedded, MySQL-family, and PostgreSQL adapters together behind one
// configuration and logging setup. It opens whichever backend its
// config names, runs one transacted write/read round trip through it,
// and reports the outcome.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/somnisoft/sqldbal"
	"github.com/somnisoft/sqldbal/config"
	apperrors "github.com/somnisoft/sqldbal/errors"
	"github.com/somnisoft/sqldbal/klog"
	"github.com/somnisoft/sqldbal/pgtypes"
	"github.com/somnisoft/sqldbal/transactor"
)

// cliConfig is loaded from an optional config file and overridden by
// environment variables, matching the pattern config.Load exercises.
type cliConfig struct {
	Driver   string `yaml:"driver" env:"SQLDBAL_DRIVER" envDefault:"embedded"`
	Location string `yaml:"location" env:"SQLDBAL_LOCATION" envDefault:"sqldbal-cli.db"`
	Port     string `yaml:"port" env:"SQLDBAL_PORT"`
	User     string `yaml:"user" env:"SQLDBAL_USER"`
	Password string `yaml:"password" env:"SQLDBAL_PASSWORD"`
	Database string `yaml:"database" env:"SQLDBAL_DATABASE"`
	Debug    bool   `yaml:"debug" env:"SQLDBAL_DEBUG"`
}

func driverTag(name string) sqldbal.DriverTag {
	switch strings.ToLower(name) {
	case "embedded", "sqlite":
		return sqldbal.DriverEmbedded
	case "mysql":
		return sqldbal.DriverMySQL
	case "mariadb":
		return sqldbal.DriverMariaDB
	case "postgres", "postgresql":
		return sqldbal.DriverPostgreSQL
	default:
		return sqldbal.DriverInvalid
	}
}

func main() {
	zapLogger, err := klog.InitProvider(true)
	if err != nil {
		log.Fatalf("sqldbal-cli: failed to initialize logger: %v", err)
	}
	logger := klog.NewSlogBuilder(zapLogger).
		WithContextValue(requestIDKey{}, "request_id").
		Build()

	cfg := cliConfig{}
	if path := os.Getenv("SQLDBAL_CLI_CONFIG"); path != "" {
		if err := config.Load(path, &cfg); err != nil {
			logger.Warn("falling back to environment-only config", "error", err)
		}
	}
	applyEnvOnlyDefaults(&cfg)

	if cfg.Debug {
		sqldbal.SetDebugLogger(logger)
	}

	tag := driverTag(cfg.Driver)
	if tag == sqldbal.DriverInvalid {
		logger.Error("unrecognized driver", "driver", cfg.Driver)
		os.Exit(1)
	}

	flags := sqldbal.Flags(0)
	if cfg.Debug {
		flags |= sqldbal.FlagDebug
	}
	if tag == sqldbal.DriverEmbedded {
		flags |= sqldbal.FlagEmbeddedOpenCreate
	}

	conn := sqldbal.Open(tag, cfg.Location, cfg.Port, cfg.User, cfg.Password, cfg.Database, flags, nil)
	defer conn.Close()

	if st := conn.StatusGet(); st != sqldbal.StatusOK {
		reportAndExit(logger, conn)
	}
	logger.Info("connected", "driver", tag.String())

	ctx := context.WithValue(context.Background(), requestIDKey{}, newRequestID())
	if err := runDemo(ctx, conn, tag); err != nil {
		logger.Error("demo failed", "error", err)
		if appErr, ok := err.(*apperrors.Error); ok {
			logger.Error("demo failed (structured)",
				"code", appErr.Code,
				"http_status", appErr.Code.HTTPStatusCode(),
				"grpc_code", appErr.Code.GRPCCode(),
			)
		}
		os.Exit(1)
	}
	logger.Info("demo completed successfully")
}

// reportAndExit logs conn's current status as a structured apperrors.Error
// and terminates the process, printing the CLI-formatted rendering
// (with stack trace, since this is a failure the operator needs to
// act on) to stderr.
func reportAndExit(logger *slog.Logger, conn *sqldbal.Connection) {
	err := conn.AsError()
	logger.Error("connection failed", "error", err)
	fmt.Fprintln(os.Stderr, apperrors.ToCMDErrorWithStack(err))
	os.Exit(1)
}

// applyEnvOnlyDefaults fills an empty Driver or Location from the
// environment or the built-in default, and lets the environment
// override Port, User, Password, Database and Debug. It covers the
// case where no config file was loaded at all (config.Load's own
// envDefault handling only runs when a file was successfully parsed
// first).
func applyEnvOnlyDefaults(cfg *cliConfig) {
	if cfg.Driver == "" {
		cfg.Driver = envOr("SQLDBAL_DRIVER", "embedded")
	}
	if cfg.Location == "" {
		cfg.Location = envOr("SQLDBAL_LOCATION", "sqldbal-cli.db")
	}
	cfg.Port = envOr("SQLDBAL_PORT", cfg.Port)
	cfg.User = envOr("SQLDBAL_USER", cfg.User)
	cfg.Password = envOr("SQLDBAL_PASSWORD", cfg.Password)
	cfg.Database = envOr("SQLDBAL_DATABASE", cfg.Database)
	if v, ok := os.LookupEnv("SQLDBAL_DEBUG"); ok {
		cfg.Debug = v == "1" || strings.EqualFold(v, "true")
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// runDemo creates a table, writes one row inside a transaction using
// transactor, and reads it back to verify the round trip.
func runDemo(ctx context.Context, conn *sqldbal.Connection, tag sqldbal.DriverTag) error {
	createSQL := "CREATE TABLE IF NOT EXISTS sqldbal_cli_demo (id INTEGER PRIMARY KEY, created_at TEXT, note TEXT)"
	if tag == sqldbal.DriverPostgreSQL {
		createSQL = "CREATE TABLE IF NOT EXISTS sqldbal_cli_demo (id SERIAL PRIMARY KEY, created_at TEXT, note TEXT)"
	}
	if st := conn.Exec(createSQL, nil, nil); st != sqldbal.StatusOK {
		return conn.AsError()
	}

	note := "hello from sqldbal-cli"
	createdAt, _ := pgtypes.TimestampText(time.Now().UTC())

	insertSQL := "INSERT INTO sqldbal_cli_demo (created_at, note) VALUES (?, ?)"
	if tag == sqldbal.DriverPostgreSQL {
		insertSQL = "INSERT INTO sqldbal_cli_demo (created_at, note) VALUES ($1, $2)"
	}

	tx := transactor.New(conn)
	err := tx.Atomically(ctx, func(_ context.Context, c *sqldbal.Connection) error {
		st, stmt := c.StmtPrepare(insertSQL)
		if st != sqldbal.StatusOK {
			return c.AsError()
		}
		defer stmt.Close()

		if st := stmt.BindText(0, createdAt); st != sqldbal.StatusOK {
			return c.AsError()
		}
		if st := stmt.BindText(1, note); st != sqldbal.StatusOK {
			return c.AsError()
		}
		if st := stmt.Execute(); st != sqldbal.StatusOK {
			return c.AsError()
		}
		return nil
	})
	if err != nil {
		return err
	}

	var found string
	cb := func(_ any, cols []sqldbal.NullableString) int {
		if len(cols) > 0 && cols[0].Valid {
			found = cols[0].Value
		}
		return 0
	}
	if st := conn.Exec(fmt.Sprintf("SELECT note FROM sqldbal_cli_demo WHERE note = '%s'", note), cb, nil); st != sqldbal.StatusOK {
		return conn.AsError()
	}
	if found != note {
		return apperrors.New(apperrors.CodeDatabase, "round-trip read did not return the written row")
	}
	return nil
}

type requestIDKey struct{}

func newRequestID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}
