// Command duckvec runs SQL against a database file and prints the results,
// streaming chunk by chunk.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/duckvec/duckvec"
)

func main() {
	var (
		dbPath     = pflag.StringP("db", "d", duckvec.MemoryPath, "database path (default in-memory)")
		configPath = pflag.String("config", "", "YAML config file")
		command    = pflag.StringP("command", "c", "", "SQL to run; reads stdin when omitted")
		timeout    = pflag.Duration("timeout", 0, "per-query timeout (0 disables)")
		readOnly   = pflag.Bool("readonly", false, "open the database read-only")
		threads    = pflag.Int("threads", 0, "engine worker thread cap (0 keeps default)")
		verbose    = pflag.BoolP("verbose", "v", false, "enable debug logging")
		version    = pflag.Bool("version", false, "print engine version and exit")
	)
	pflag.Parse()

	logCfg := zap.NewProductionConfig()
	if *verbose {
		logCfg = zap.NewDevelopmentConfig()
	}
	log, err := logCfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	duckvec.SetLogger(log)

	if *version {
		v, err := duckvec.EngineVersion()
		if err != nil {
			log.Fatal("engine version", zap.Error(err))
		}
		fmt.Println(v)
		return
	}

	cfg := &duckvec.Config{Path: *dbPath}
	if *configPath != "" {
		cfg, err = duckvec.LoadConfig(*configPath)
		if err != nil {
			log.Fatal("load config", zap.Error(err))
		}
		if pflag.CommandLine.Changed("db") {
			cfg.Path = *dbPath
		}
	}
	if *readOnly {
		cfg.ReadOnly = true
	}
	if *threads > 0 {
		cfg.Threads = *threads
	}

	sql := *command
	if sql == "" {
		data, err := readStdin()
		if err != nil {
			log.Fatal("read stdin", zap.Error(err))
		}
		sql = data
	}
	if strings.TrimSpace(sql) == "" {
		fmt.Fprintln(os.Stderr, "no SQL given; pass -c or pipe a script")
		os.Exit(2)
	}

	if err := run(cfg, sql, *timeout, log); err != nil {
		log.Fatal("query failed", zap.Error(err))
	}
}

func readStdin() (string, error) {
	data, err := os.ReadFile("/dev/stdin")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func run(cfg *duckvec.Config, sql string, timeout time.Duration, log *zap.Logger) error {
	db, err := duckvec.OpenConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	conn, err := db.Connect()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	cursor, err := conn.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer cursor.Close()

	printHeader(cursor)
	rows, err := duckvec.Fold(cursor, uint64(0), func(n uint64, chunk *duckvec.Chunk) (uint64, error) {
		if err := printChunk(cursor, chunk); err != nil {
			return n, err
		}
		return n + chunk.RowCount(), nil
	})
	if err != nil {
		return err
	}

	log.Info("done",
		zap.Uint64("rows", rows),
		zap.Uint64("changed", cursor.RowsChanged()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func printHeader(cursor *duckvec.ResultCursor) {
	if cursor.ColumnCount() == 0 {
		return
	}
	parts := make([]string, cursor.ColumnCount())
	for i := range parts {
		name, _ := cursor.ColumnName(i)
		typ, _ := cursor.ColumnType(i)
		parts[i] = fmt.Sprintf("%s(%s)", name, typ.Kind())
	}
	fmt.Println(strings.Join(parts, "\t"))
}

func printChunk(cursor *duckvec.ResultCursor, chunk *duckvec.Chunk) error {
	cols := chunk.ColumnCount()
	for row := uint64(0); row < chunk.RowCount(); row++ {
		parts := make([]string, cols)
		for i := 0; i < cols; i++ {
			vec, err := chunk.Column(i)
			if err != nil {
				return err
			}
			val, err := duckvec.GetValue[any](vec, row)
			if err != nil {
				return err
			}
			if val == nil {
				parts[i] = "NULL"
			} else {
				parts[i] = fmt.Sprintf("%v", val)
			}
		}
		fmt.Println(strings.Join(parts, "\t"))
	}
	return nil
}
