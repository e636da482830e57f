package ingestion

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter-agent/internal/retrieval"
)

// LoadDirectory reads every .pdf and .txt file below dir, in lexical path order.
// Other files are ignored; unreadable or unparsable files are skipped with a
// warning. A missing directory yields no documents.
func LoadDirectory(ctx context.Context, dir string, logger *zerolog.Logger) ([]retrieval.Document, error) {
	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "ingestion").Logger()
	}

	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("dir", dir).Msg("static content directory not found")
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			log.Warn().Err(err).Str("path", path).Msg("skipping unreadable path")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if k := kindFromExtension(path); k == KindPDF || k == KindText {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var docs []retrieval.Document
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping unreadable file")
			continue
		}

		name, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			name = path
		}
		fileDocs, err := LoadDocuments(ctx, File{Name: filepath.ToSlash(name), Data: data})
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping file")
			continue
		}
		docs = append(docs, fileDocs...)
	}

	log.Debug().Str("dir", dir).Int("files", len(paths)).Int("documents", len(docs)).Msg("loaded directory")
	return docs, nil
}
