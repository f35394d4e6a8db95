// Command order-ingest imports order snapshots from gzip-compressed JSONL
// exports into PostgreSQL. Each line of an input file is one order
// snapshot in the same format the file-backed store uses. Orders already
// seen in this run are skipped via a bloom filter, so re-listing a file
// or overlapping exports do not produce duplicate writes.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/hexshop/internal/domain/order"
	"github.com/xenking/hexshop/internal/storage/file"
	"github.com/xenking/hexshop/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// dedupe wraps a bloom filter behind a mutex so concurrent file workers
// can share it. A false positive only skips an order that would have been
// an idempotent upsert anyway.
type dedupe struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

func newDedupe() *dedupe {
	return &dedupe{filter: bloom.NewWithEstimates(bloomCapacity, bloomFPR)}
}

// seen marks id as processed and reports whether it was already marked.
func (d *dedupe) seen(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter.TestOrAddString(id)
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing orders-*.jsonl.gz exports")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("order ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("order ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "orders-*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "list exports")
	}
	if len(files) == 0 {
		return errors.Errorf("no orders-*.jsonl.gz files in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewOrderRepository(pool)
	seen := newDedupe()

	slog.Info("importing exports", slog.Int("files", len(files)))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(importFile(ctx, i, f, repo, seen))
	}
	return g.Wait()
}

func importFile(ctx context.Context, idx int, path string, repo *postgres.OrderRepository, seen *dedupe) func() error {
	return func() error {
		var imported, skipped uint64

		err := streamGzLines(ctx, path, func(line []byte) error {
			s, err := decodeLine(line)
			if err != nil {
				return err
			}

			if seen.seen(s.ID.String()) {
				skipped++
				return nil
			}

			o, err := order.FromSnapshot(s)
			if err != nil {
				return errors.Wrapf(err, "restore order %s", s.ID)
			}
			if err := repo.Save(ctx, o); err != nil {
				return err
			}

			imported++
			if imported%progressEvery == 0 {
				slog.Info("import progress",
					slog.Int("file", idx+1),
					slog.Uint64("imported", imported),
				)
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "import %s", path)
		}

		slog.Info("import complete",
			slog.Int("file", idx+1),
			slog.Uint64("imported", imported),
			slog.Uint64("skipped", skipped),
		)
		return nil
	}
}

func decodeLine(line []byte) (order.Snapshot, error) {
	d := jx.DecodeBytes(line)
	s, err := file.DecodeSnapshot(d)
	if err != nil {
		return order.Snapshot{}, errors.Wrap(err, "decode snapshot")
	}
	return s, nil
}

// streamGzLines opens a gzip-compressed file and calls fn for each
// non-empty line.
func streamGzLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}
