// Package log implements the write-ahead log the buffer pool forces on
// commit. It exposes begin/write/commit/abort and force; the buffer pool
// calls all of them except abort. The on-disk layout is an
// implementation detail of this package, not a contract any other package
// depends on.
package log

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/klauspost/compress/snappy"
	"github.com/pkg/errors"

	"tinybase/pkg/concurrency/transaction"
	dberror "tinybase/pkg/error"
	"tinybase/pkg/logging"
)

// WAL appends log records to a single segment file, buffering writes until
// Force flushes them to disk. Before/after images are snappy-compressed
// since they are full page-sized byte buffers and usually mostly zero.
type WAL struct {
	mu sync.Mutex

	file       *os.File
	segmentID  uuid.UUID
	currentLSN LSN
	flushedLSN LSN

	buffer []byte
}

// NewWAL opens (creating if necessary) the log segment at path. Each
// segment is stamped with a fresh random id purely for log messages; it
// does not participate in the record format.
func NewWAL(path string) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "open WAL segment %s", path)
	}
	pos, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, "seek to end of WAL segment")
	}
	return &WAL{
		file:       file,
		segmentID:  uuid.New(),
		currentLSN: LSN(pos),
		flushedLSN: LSN(pos),
	}, nil
}

// LogBegin records the start of a transaction. Every call appends a new
// begin record; the buffer pool calls it once per transaction, on its
// first write.
func (w *WAL) LogBegin(tid *transaction.ID) (LSN, error) {
	return w.append(&LogRecord{Type: RecordBegin, TxnID: tid})
}

// LogWrite appends an update record carrying both the page's before-image
// (for undo on abort, though this engine never needs to consult it since
// abort reloads from the DbFile) and after-image (for redo on recovery).
func (w *WAL) LogWrite(tid *transaction.ID, pageID string, beforeImage, afterImage []byte) (LSN, error) {
	return w.append(&LogRecord{
		Type:        RecordUpdate,
		TxnID:       tid,
		PageID:      pageID,
		BeforeImage: beforeImage,
		AfterImage:  afterImage,
	})
}

func (w *WAL) LogCommit(tid *transaction.ID) (LSN, error) {
	return w.append(&LogRecord{Type: RecordCommit, TxnID: tid})
}

func (w *WAL) LogAbort(tid *transaction.ID) (LSN, error) {
	return w.append(&LogRecord{Type: RecordAbort, TxnID: tid})
}

func (w *WAL) append(rec *LogRecord) (LSN, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := serialize(rec)
	if err != nil {
		return 0, err
	}
	rec.LSN = w.currentLSN
	w.buffer = append(w.buffer, data...)
	w.currentLSN += LSN(len(data))
	return rec.LSN, nil
}

// Force flushes every buffered record to disk. The buffer pool calls this
// immediately after logging a transaction's commit record, before marking
// any page clean.
func (w *WAL) Force() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buffer) == 0 {
		return nil
	}
	n, err := w.file.Write(w.buffer)
	if err != nil {
		return dberror.Wrap(err, dberror.IoError, "WAL", "Force")
	}
	if n != len(w.buffer) {
		return dberror.New(dberror.IoError, "WAL", "Force", fmt.Sprintf("short write: %d of %d bytes", n, len(w.buffer)))
	}
	if err := w.file.Sync(); err != nil {
		return dberror.Wrap(err, dberror.IoError, "WAL", "Force")
	}
	w.flushedLSN = w.currentLSN
	w.buffer = w.buffer[:0]
	logging.GetLogger().Debug("wal forced", "segment", w.segmentID, "lsn", w.flushedLSN)
	return nil
}

func (w *WAL) Close() error {
	if err := w.Force(); err != nil {
		return err
	}
	return w.file.Close()
}

// serialize lays out a record as:
// [type byte][txnID 8-byte big-endian][pageID len+bytes][before len+snappy bytes][after len+snappy bytes]
func serialize(rec *LogRecord) ([]byte, error) {
	buf := make([]byte, 0, 32)
	buf = append(buf, byte(rec.Type))

	var txnID int64
	if rec.TxnID != nil {
		txnID = rec.TxnID.Value()
	}
	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], uint64(txnID))
	buf = append(buf, idBytes[:]...)

	buf = appendLenPrefixed(buf, []byte(rec.PageID))
	buf = appendLenPrefixed(buf, snappy.Encode(nil, rec.BeforeImage))
	buf = appendLenPrefixed(buf, snappy.Encode(nil, rec.AfterImage))
	return buf, nil
}

func appendLenPrefixed(buf, data []byte) []byte {
	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(data)))
	buf = append(buf, lenBytes[:]...)
	return append(buf, data...)
}
