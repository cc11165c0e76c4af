package queue

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JsonlPublisher appends jobs to per-queue JSONL files. Used for offline
// backfills where no Redis is available but the fanout should still be
// inspectable.
type JsonlPublisher struct {
	dir string
	mu  sync.Mutex
}

func NewJsonlPublisher(dir string) *JsonlPublisher {
	return &JsonlPublisher{dir: dir}
}

// Publish implements Publisher.
func (p *JsonlPublisher) Publish(_ context.Context, queue string, payload interface{}) error {
	body, err := wrap(queue, payload)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(p.dir, queue+".jsonl")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.Write(body); err != nil {
		return fmt.Errorf("write job: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// PublishDelayed implements Publisher. Files have no scheduler; delayed
// jobs are written immediately.
func (p *JsonlPublisher) PublishDelayed(ctx context.Context, queue string, payload interface{}, _ time.Duration) error {
	return p.Publish(ctx, queue, payload)
}
