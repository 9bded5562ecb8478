package events

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pickbetter/labelscan/internal/models"
)

// Sink is the low-level destination for serialized events.
type Sink interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// NewSink builds the sink named by the configuration.
func NewSink(cfg models.EventsConfig) (Sink, error) {
	switch cfg.Sink {
	case "", "console":
		return &ConsoleSink{}, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("events.file_path is required for the file sink")
		}
		return NewFileSink(cfg.FilePath)
	case "kafka":
		return NewKafkaSink(cfg.KafkaBrokerList)
	default:
		return nil, fmt.Errorf("unknown event sink %q", cfg.Sink)
	}
}

// ConsoleSink prints events to stdout, one JSON document per line.
type ConsoleSink struct{}

func (c *ConsoleSink) WriteMessage(topic string, msg []byte) error {
	_, err := fmt.Fprintf(os.Stdout, "%s\t%s\n", topic, msg)
	return err
}

func (c *ConsoleSink) Close() error { return nil }

// FileSink appends events to a JSONL file, one line per event.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", path, err)
	}
	return &FileSink{file: f, enc: json.NewEncoder(f)}, nil
}

func (f *FileSink) WriteMessage(topic string, msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var doc json.RawMessage = msg
	return f.enc.Encode(struct {
		Topic string          `json:"topic"`
		Event json.RawMessage `json:"event"`
	}{Topic: topic, Event: doc})
}

func (f *FileSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
