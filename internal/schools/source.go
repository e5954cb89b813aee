package schools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Source yields school records. When divisions is empty every record is
// returned.
type Source interface {
	Schools(ctx context.Context, divisions ...string) ([]*School, error)
}

// FileSource reads a JSON array of school objects from disk.
type FileSource struct {
	Path   string
	logger *zap.Logger
}

func NewFileSource(path string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{Path: path, logger: logger}
}

func (s *FileSource) Schools(ctx context.Context, divisions ...string) ([]*School, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read schools file: %w", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse schools file %s: %w", s.Path, err)
	}

	all, err := Decode(records)
	if err != nil {
		return nil, err
	}

	selected := filterDivisions(all, divisions)
	s.logger.Debug("schools loaded from file",
		zap.String("path", s.Path),
		zap.Int("total", len(all)),
		zap.Int("selected", len(selected)),
	)
	return selected, nil
}

func filterDivisions(list []*School, divisions []string) []*School {
	if len(divisions) == 0 {
		return list
	}
	out := make([]*School, 0, len(list))
	for _, school := range list {
		for _, division := range divisions {
			if strings.EqualFold(school.DivisionGroup, division) {
				out = append(out, school)
				break
			}
		}
	}
	return out
}
