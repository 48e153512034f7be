// Package heap implements the slotted heap page and heap file: the only
// concrete Page/DbFile variant this module ships.
package heap

import (
	"fmt"

	"tinybase/pkg/tuple"
)

// PageID identifies a page by the table it belongs to and its page number
// within that table's file. It implements tuple.PageID.
type PageID struct {
	tableID    int
	pageNumber int
}

func NewPageID(tableID, pageNumber int) PageID {
	return PageID{tableID: tableID, pageNumber: pageNumber}
}

func (p PageID) TableID() int {
	return p.tableID
}

func (p PageID) PageNumber() int {
	return p.pageNumber
}

func (p PageID) Equals(other tuple.PageID) bool {
	o, ok := other.(PageID)
	if !ok {
		return false
	}
	return p.tableID == o.tableID && p.pageNumber == o.pageNumber
}

func (p PageID) String() string {
	return fmt.Sprintf("p(%d,%d)", p.tableID, p.pageNumber)
}
