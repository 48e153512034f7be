// Package catalog implements the process-wide table registry: table_id ->
// (DbFile, name, primary-key field name, TupleDesc).
package catalog

import (
	"sync"

	dberror "tinybase/pkg/error"
	"tinybase/pkg/storage/page"
	"tinybase/pkg/tuple"
)

type tableEntry struct {
	file       page.DbFile
	name       string
	primaryKey string
	tupleDesc  *tuple.TupleDescription
}

// Catalog is a dependency-injected registry, not a process-wide singleton;
// each Database owns its own instance so that multiple engines can coexist
// in one process without sharing table state.
type Catalog struct {
	mu       sync.RWMutex
	tables   map[int]*tableEntry
	nameToID map[string]int
}

func NewCatalog() *Catalog {
	return &Catalog{
		tables:   make(map[int]*tableEntry),
		nameToID: make(map[string]int),
	}
}

// AddTable registers a table under its DbFile's own id.
func (c *Catalog) AddTable(file page.DbFile, name, primaryKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[file.ID()] = &tableEntry{
		file:       file,
		name:       name,
		primaryKey: primaryKey,
		tupleDesc:  file.TupleDesc(),
	}
	c.nameToID[name] = file.ID()
}

func (c *Catalog) TableIDByName(name string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.nameToID[name]
	if !ok {
		return 0, dberror.New(dberror.NotFound, "Catalog", "TableIDByName", "no table named "+name)
	}
	return id, nil
}

func (c *Catalog) TupleDesc(tableID int) (*tuple.TupleDescription, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.tables[tableID]
	if !ok {
		return nil, dberror.New(dberror.NotFound, "Catalog", "TupleDesc", "no such table id")
	}
	return e.tupleDesc, nil
}

func (c *Catalog) DbFile(tableID int) (page.DbFile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.tables[tableID]
	if !ok {
		return nil, dberror.New(dberror.NotFound, "Catalog", "DbFile", "no such table id")
	}
	return e.file, nil
}

func (c *Catalog) PrimaryKey(tableID int) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.tables[tableID]
	if !ok {
		return "", dberror.New(dberror.NotFound, "Catalog", "PrimaryKey", "no such table id")
	}
	return e.primaryKey, nil
}

func (c *Catalog) TableName(tableID int) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.tables[tableID]
	if !ok {
		return "", dberror.New(dberror.NotFound, "Catalog", "TableName", "no such table id")
	}
	return e.name, nil
}

// TableIDs returns every registered table id, in no particular order.
func (c *Catalog) TableIDs() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]int, 0, len(c.tables))
	for id := range c.tables {
		ids = append(ids, id)
	}
	return ids
}
