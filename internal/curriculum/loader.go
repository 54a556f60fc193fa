package curriculum

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// SourceDocument is a parsed document together with the file it came from.
type SourceDocument struct {
	Path     string
	Document *SubjectDocument
}

// LoadFile reads and parses a single subject document. The format is picked
// from the file extension.
func LoadFile(path string, maxBytes int64) (*SubjectDocument, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported document extension: %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("document %s is %d bytes, limit is %d", path, info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Load reads one document from a file, or every .json/.yaml/.yml document
// under a directory in lexical path order. Any invalid document fails the
// whole load.
func Load(root string, maxBytes int64) ([]SourceDocument, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		doc, err := LoadFile(root, maxBytes)
		if err != nil {
			return nil, err
		}
		return []SourceDocument{{Path: root, Document: doc}}, nil
	}

	var paths []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if _, ok := FormatFromPath(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(paths)

	docs := make([]SourceDocument, 0, len(paths))
	for _, p := range paths {
		doc, err := LoadFile(p, maxBytes)
		if err != nil {
			return nil, err
		}
		docs = append(docs, SourceDocument{Path: p, Document: doc})
	}

	slog.Info("curriculum documents loaded", "root", root, "documents", len(docs))
	return docs, nil
}
