package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kirillkom/derma-consult/internal/core/domain"
	"github.com/kirillkom/derma-consult/internal/core/ports"
)

// Service owns the filename -> uploaded-document cache. It is populated by
// Sync at startup, read by every consultation, and replaced wholesale by
// Reload. Uploads run outside the cache lock; reads stay cheap.
type Service struct {
	dir       string
	uploader  ports.FileUploader
	summaries *SummaryRegistry
	logger    *slog.Logger

	syncMu sync.Mutex

	mu    sync.RWMutex
	cache map[string]domain.ReferenceDocument
}

func NewService(dir string, uploader ports.FileUploader, summaries *SummaryRegistry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		dir:       dir,
		uploader:  uploader,
		summaries: summaries,
		logger:    logger,
		cache:     make(map[string]domain.ReferenceDocument),
	}
}

// Sync walks the corpus directory and uploads every PDF not already cached.
// A failed upload is logged and skipped; the batch continues. A repeat call
// over an unchanged directory uploads nothing and leaves the mapping keys
// unchanged. Returns the cached document count.
func (s *Service) Sync(ctx context.Context) (int, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	return s.sync(ctx)
}

// Reload drops the cache and re-uploads the whole directory.
func (s *Service) Reload(ctx context.Context) (int, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.Lock()
	s.cache = make(map[string]domain.ReferenceDocument)
	s.mu.Unlock()

	return s.sync(ctx)
}

func (s *Service) sync(ctx context.Context) (int, error) {
	paths, err := s.listPDFs()
	if err != nil {
		return s.count(), err
	}

	pending := make([]string, 0, len(paths))
	s.mu.RLock()
	for _, path := range paths {
		if _, ok := s.cache[filepath.Base(path)]; !ok {
			pending = append(pending, path)
		}
	}
	s.mu.RUnlock()

	for _, path := range pending {
		if err := ctx.Err(); err != nil {
			return s.count(), err
		}

		name := filepath.Base(path)
		doc, err := s.uploader.Upload(ctx, path)
		if err != nil {
			s.logger.Warn("corpus_upload_failed", "file", name, "error", err)
			continue
		}
		doc.Filename = name
		if doc.Summary == "" {
			doc.Summary = s.summaries.For(name, path)
		}

		s.mu.Lock()
		s.cache[name] = doc
		s.mu.Unlock()
		s.logger.Info("corpus_document_cached", "file", name, "handle", doc.Handle)
	}

	return s.count(), nil
}

func (s *Service) Status() domain.CorpusStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.cache))
	for name := range s.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return domain.CorpusStatus{
		Ready:     len(s.cache) > 0,
		Documents: len(s.cache),
		Filenames: names,
	}
}

// Documents returns the cached documents ordered by filename so prompts
// built from them are stable between calls.
func (s *Service) Documents() []domain.ReferenceDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.ReferenceDocument, 0, len(s.cache))
	for _, doc := range s.cache {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs
}

func (s *Service) Document(filename string) (domain.ReferenceDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.cache[filename]
	return doc, ok
}

func (s *Service) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func (s *Service) listPDFs() ([]string, error) {
	if _, err := os.Stat(s.dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("corpus_dir_missing", "dir", s.dir)
			return nil, nil
		}
		return nil, fmt.Errorf("stat corpus dir: %w", err)
	}

	var paths []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus dir: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}
