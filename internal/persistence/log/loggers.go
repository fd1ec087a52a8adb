package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"horde.ai/internal/sim/world"
)

// JSONLZstdWriter appends JSON lines to hourly zstd files named
// <prefix>-YYYY-MM-DD-HH.jsonl.zst under baseDir.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour || w.w == nil {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// Appending starts a new zstd frame; readers decode concatenated frames.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// Files lists the rotated files for prefix under dir, oldest first. The hour
// stamp sorts lexically.
func Files(dir, prefix string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix+"-") || !strings.HasSuffix(name, ".jsonl.zst") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

// ReadJSONL decodes every line of one compressed file into fn.
func ReadJSONL(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

// TickLogger writes one JSONL entry per tick (compressed).
type TickLogger struct{ w *JSONLZstdWriter }

func NewTickLogger(worldDir string) *TickLogger {
	return &TickLogger{w: NewJSONLZstdWriter(TickDir(worldDir), "events")}
}

// TickDir is where NewTickLogger writes for worldDir.
func TickDir(worldDir string) string { return filepath.Join(worldDir, "events") }

func (l *TickLogger) WriteTick(v world.TickLogEntry) error { return l.w.Write(v) }
func (l *TickLogger) Close() error                         { return l.w.Close() }

// ReadTicks streams every tick entry logged under worldDir in file order.
func ReadTicks(worldDir string, fn func(world.TickLogEntry) error) error {
	files, err := Files(TickDir(worldDir), "events")
	if err != nil {
		return err
	}
	for _, path := range files {
		err := ReadJSONL(path, func(line []byte) error {
			var e world.TickLogEntry
			if err := json.Unmarshal(line, &e); err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			return fn(e)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// MultiTickLogger fans one entry out to several loggers. It reports the first
// error but always writes to every logger.
type MultiTickLogger []world.TickLogger

func (m MultiTickLogger) WriteTick(e world.TickLogEntry) error {
	var first error
	for _, l := range m {
		if l == nil {
			continue
		}
		if err := l.WriteTick(e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
