// Package database wires together the catalog, buffer pool, and write-ahead
// log into a single injectable handle. Nothing in this package is a
// process-wide singleton: every caller constructs and owns its own
// Database, so more than one can coexist in a test process.
package database

import (
	"path/filepath"

	"tinybase/pkg/catalog"
	"tinybase/pkg/concurrency/transaction"
	"tinybase/pkg/log"
	"tinybase/pkg/memory"
	"tinybase/pkg/storage/heap"
	"tinybase/pkg/storage/page"
	"tinybase/pkg/tuple"
)

// Database is the dependency-injected context operators and table
// management code receive instead of reaching into globals.
type Database struct {
	catalog *catalog.Catalog
	pool    *memory.Pool
	wal     *log.WAL
	dataDir string
}

// Open creates a Database rooted at dataDir, with its write-ahead log at
// dataDir/wal.log and a buffer pool of bufferSize pages.
func Open(dataDir string, bufferSize int) (*Database, error) {
	wal, err := log.NewWAL(filepath.Join(dataDir, "wal.log"))
	if err != nil {
		return nil, err
	}
	cat := catalog.NewCatalog()
	return &Database{
		catalog: cat,
		pool:    memory.NewPool(cat, wal, bufferSize),
		wal:     wal,
		dataDir: dataDir,
	}, nil
}

func (d *Database) Catalog() *catalog.Catalog { return d.catalog }
func (d *Database) Pool() *memory.Pool        { return d.pool }
func (d *Database) WAL() *log.WAL             { return d.wal }
func (d *Database) DataDir() string           { return d.dataDir }

// CreateTable opens (or creates) a heap file for name at dataDir/name.tbl
// and registers it in the catalog.
func (d *Database) CreateTable(name, primaryKey string, td *tuple.TupleDescription) (int, error) {
	path := filepath.Join(d.dataDir, name+".tbl")
	file, err := heap.NewFile(path, td)
	if err != nil {
		return 0, err
	}
	d.catalog.AddTable(file, name, primaryKey)
	return file.ID(), nil
}

// DbFile is a convenience accessor combining a catalog lookup with the
// page.DbFile interface operators need.
func (d *Database) DbFile(tableID int) (page.DbFile, error) {
	return d.catalog.DbFile(tableID)
}

// BeginTransaction allocates a fresh transaction id. The transaction is not
// logged until its first write.
func (d *Database) BeginTransaction() *transaction.ID {
	return transaction.NewID()
}

// Commit and Abort are thin wrappers over Pool.TransactionComplete, kept
// here so callers never need to import pkg/memory just to end a
// transaction.
func (d *Database) Commit(tid *transaction.ID) error {
	return d.pool.TransactionComplete(tid, true)
}

func (d *Database) Abort(tid *transaction.ID) error {
	return d.pool.TransactionComplete(tid, false)
}

func (d *Database) Close() error {
	return d.pool.Close()
}
