// Package store persists small JSON documents as whole-file replacements.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

// Document binds a value of type T to one JSON file. Writes go to a temp file
// in the same directory and are renamed over the target, so readers never see
// a truncated document.
type Document[T any] struct {
	path     string
	defaults func() T
	logger   *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

func NewDocument[T any](path string, defaults func() T, logger *zap.Logger) *Document[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Document[T]{
		path:     path,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

func (d *Document[T]) Path() string {
	return d.path
}

// Load reads the document. A missing file is created with the default value.
// A file that cannot be decoded is moved aside to <name>.corrupt-<unix> and
// replaced with the default.
func (d *Document[T]) Load() (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			value := d.defaults()
			if err := d.write(value); err != nil {
				return value, err
			}
			d.logger.Info("Created default document", zap.String("path", d.path))
			return value, nil
		}
		return d.defaults(), errors.NewStoreError("failed to read document", "load", d.path, err)
	}

	var value T
	if len(bytes.TrimSpace(data)) == 0 {
		value = d.defaults()
		return value, d.write(value)
	}

	if err := json.Unmarshal(data, &value); err != nil {
		quarantine := fmt.Sprintf("%s.corrupt-%d", d.path, d.now().Unix())
		d.logger.Warn("Document is corrupt, replacing with default",
			zap.String("path", d.path),
			zap.String("quarantine", quarantine),
			zap.Error(err),
		)
		if renameErr := os.Rename(d.path, quarantine); renameErr != nil {
			return d.defaults(), errors.NewStoreError("failed to quarantine corrupt document", "load", d.path, renameErr)
		}
		value = d.defaults()
		return value, d.write(value)
	}

	return value, nil
}

// Save replaces the document with value.
func (d *Document[T]) Save(value T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(value)
}

func (d *Document[T]) write(value T) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return errors.NewStoreError("failed to encode document", "save", d.path, err)
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStoreError("failed to create document directory", "save", d.path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.path)+".tmp-*")
	if err != nil {
		return errors.NewStoreError("failed to create temp file", "save", d.path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.NewStoreError("failed to write temp file", "save", d.path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.NewStoreError("failed to sync temp file", "save", d.path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.NewStoreError("failed to close temp file", "save", d.path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return errors.NewStoreError("failed to chmod temp file", "save", d.path, err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		cleanup()
		return errors.NewStoreError("failed to replace document", "save", d.path, err)
	}
	return nil
}
