package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Store loads and saves the document through a backend and remembers the
// last bytes it saw, so a reload can tell its own writes from outside edits.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu   sync.Mutex
	last []byte
}

func New(backend Backend, logger *slog.Logger) *Store {
	return &Store{backend: backend, logger: logger.With("component", "store")}
}

// Load returns the stored document, or the default document when nothing is
// stored. Repairs made while decoding are logged as warnings.
func (s *Store) Load(ctx context.Context) (Document, error) {
	doc, _, err := s.load(ctx)
	return doc, err
}

// Reload loads the document and reports whether its bytes differ from the
// last load or save.
func (s *Store) Reload(ctx context.Context) (Document, bool, error) {
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (Document, bool, error) {
	data, err := s.backend.Load(ctx)
	if errors.Is(err, ErrNoDocument) {
		s.logger.Debug("no stored document, using defaults")
		return Default(), false, nil
	}
	if err != nil {
		return Document{}, false, err
	}

	s.mu.Lock()
	changed := !bytes.Equal(data, s.last)
	s.last = data
	s.mu.Unlock()

	doc, warnings := Decode(data)
	for _, w := range warnings {
		s.logger.Warn("repaired stored document", "detail", w)
	}
	return doc, changed, nil
}

// Save stores doc.
func (s *Store) Save(ctx context.Context, doc Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	s.mu.Lock()
	s.last = data
	s.mu.Unlock()
	s.logger.Debug("saved document", "frames", len(doc.Frames), "styles", len(doc.Styles))
	return nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
