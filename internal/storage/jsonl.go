package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
)

// JsonlCandleSink appends candles to a JSONL file, one candle per line.
type JsonlCandleSink struct {
	path string
	mu   sync.Mutex
}

func NewJsonlCandleSink(path string) *JsonlCandleSink {
	return &JsonlCandleSink{path: path}
}

// PutCandleBatch appends a batch of candles as JSON lines.
func (s *JsonlCandleSink) PutCandleBatch(candles []model.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, candle := range candles {
		line, err := json.Marshal(candle)
		if err != nil {
			return fmt.Errorf("marshal candle: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write candle: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
