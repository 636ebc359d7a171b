package output

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const EventLogMagic = "SUNCETEV"

// EventLogWriter appends timestamped CBOR records:
// 8 bytes unix nanos (LE), 4 bytes length (LE), payload.
type EventLogWriter struct {
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	path string
}

func NewEventLogWriter(outputDir string, prefix string) (*EventLogWriter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}
	filename := filepath.Join(outputDir, fmt.Sprintf("%s_%s.bin", Timestamp(), prefix))
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriterSize(f, 64*1024)
	if _, err := w.WriteString(EventLogMagic); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &EventLogWriter{
		f:    f,
		w:    w,
		path: filename,
	}, nil
}

func (r *EventLogWriter) Path() string {
	return r.path
}

func (r *EventLogWriter) Record(payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return fmt.Errorf("event log writer is closed")
	}
	var header [12]byte
	binary.LittleEndian.PutUint64(header[:8], uint64(time.Now().UnixNano()))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(payload)))
	if _, err := r.w.Write(header[:]); err != nil {
		return err
	}
	if _, err := r.w.Write(payload); err != nil {
		return err
	}
	return r.w.Flush()
}

func (r *EventLogWriter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return nil
	}
	if err := r.w.Flush(); err != nil {
		_ = r.f.Close()
		r.w = nil
		return err
	}
	err := r.f.Close()
	r.w = nil
	return err
}

type EventRecord struct {
	Time    time.Time
	Payload []byte
}

// ReadEventLog checks the magic and returns a function yielding one record
// per call; it returns io.EOF after the last complete record.
func ReadEventLog(r io.Reader) (func() (EventRecord, error), error) {
	header := make([]byte, len(EventLogMagic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(header) != EventLogMagic {
		return nil, fmt.Errorf("unexpected event log magic %q", string(header))
	}
	return func() (EventRecord, error) {
		var meta [12]byte
		if _, err := io.ReadFull(r, meta[:]); err != nil {
			if err == io.ErrUnexpectedEOF {
				return EventRecord{}, io.EOF
			}
			return EventRecord{}, err
		}
		ts := int64(binary.LittleEndian.Uint64(meta[:8]))
		size := binary.LittleEndian.Uint32(meta[8:12])
		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return EventRecord{}, fmt.Errorf("read payload: %w", err)
		}
		return EventRecord{Time: time.Unix(0, ts), Payload: payload}, nil
	}, nil
}

func Timestamp() string {
	return time.Now().Format("20060102_150405")
}
