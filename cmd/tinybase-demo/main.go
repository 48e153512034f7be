// Command tinybase-demo exercises the storage and execution layers
// directly: create a table, insert rows inside a transaction, commit, then
// scan, filter, and aggregate them. There is no SQL parser or shell here —
// callers drive the engine the way a test would, through Go calls.
package main

import (
	"flag"
	"fmt"
	"os"

	"tinybase/pkg/database"
	"tinybase/pkg/execution"
	"tinybase/pkg/execution/aggregation"
	"tinybase/pkg/logging"
	"tinybase/pkg/memory"
	"tinybase/pkg/primitives"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

func main() {
	dataDir := flag.String("data", "./data", "data directory")
	bufferSize := flag.Int("buffer-pages", memory.DefaultCapacity, "buffer pool capacity in pages")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		logging.GetLogger().Error("failed to create data directory", "err", err)
		os.Exit(1)
	}

	db, err := database.Open(*dataDir, *bufferSize)
	if err != nil {
		logging.GetLogger().Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := run(db); err != nil {
		logging.GetLogger().Error("demo failed", "err", err)
		os.Exit(1)
	}
}

func run(db *database.Database) error {
	td := tuple.NewTupleDescription(
		[]types.Type{types.IntType, types.StringType, types.IntType},
		[]string{"id", "name", "age"},
	)
	tableID, err := db.CreateTable("people", "id", td)
	if err != nil {
		return err
	}

	tid := db.BeginTransaction()
	rows := []struct {
		id   int32
		name string
		age  int32
	}{
		{1, "ada", 36},
		{2, "alan", 41},
		{3, "grace", 85},
	}
	for _, r := range rows {
		t := tuple.NewTuple(td)
		if err := t.SetField(0, types.NewIntField(r.id)); err != nil {
			return err
		}
		if err := t.SetField(1, types.NewStringField(r.name)); err != nil {
			return err
		}
		if err := t.SetField(2, types.NewIntField(r.age)); err != nil {
			return err
		}
		if err := db.Pool().InsertTuple(tid, tableID, t); err != nil {
			return err
		}
	}
	if err := db.Commit(tid); err != nil {
		return err
	}

	readTid := db.BeginTransaction()
	defer db.Commit(readTid)

	dbFile, err := db.DbFile(tableID)
	if err != nil {
		return err
	}
	scan := execution.NewSeqScan(readTid, tableID, "people", db.Pool(), dbFile)
	filtered := execution.NewFilter(scan, 2, primitives.GreaterThan, types.NewIntField(40))
	agg, err := execution.NewAggregate(filtered, 2, aggregation.NoGrouping, aggregation.Avg)
	if err != nil {
		return err
	}

	if err := agg.Open(); err != nil {
		return err
	}
	defer agg.Close()

	for {
		has, err := agg.HasNext()
		if err != nil {
			return err
		}
		if !has {
			break
		}
		t, err := agg.Next()
		if err != nil {
			return err
		}
		fmt.Println(t.String())
	}
	return nil
}
