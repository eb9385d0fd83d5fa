package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/flightparser/internal/core"
)

// LoadQueries reads a query document from path. Files ending in .yaml or
// .yml are decoded as YAML, everything else as JSON.
func LoadQueries(path string) ([]core.Query, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeQueriesYAML(data)
	default:
		return DecodeQueriesJSON(bytes.NewReader(data))
	}
}

// DecodeQueriesJSON decodes either a single query object or an array of them.
func DecodeQueriesJSON(r io.Reader) ([]core.Query, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrQueryDocument, err)
	}

	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		var queries []core.Query
		if err := json.Unmarshal(trimmed, &queries); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrQueryDocument, err)
		}
		if queries == nil {
			queries = []core.Query{}
		}
		return queries, nil
	case len(trimmed) > 0 && trimmed[0] == '{':
		var q core.Query
		if err := json.Unmarshal(trimmed, &q); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrQueryDocument, err)
		}
		return []core.Query{q}, nil
	default:
		return nil, fmt.Errorf("%w: expected object or array, got %.20s", core.ErrQueryDocument, trimmed)
	}
}

// DecodeQueriesYAML decodes either a single query mapping or a sequence of them.
func DecodeQueriesYAML(data []byte) ([]core.Query, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrQueryDocument, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", core.ErrQueryDocument)
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		queries := []core.Query{}
		if err := root.Decode(&queries); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrQueryDocument, err)
		}
		return queries, nil
	case yaml.MappingNode:
		var q core.Query
		if err := root.Decode(&q); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrQueryDocument, err)
		}
		return []core.Query{q}, nil
	default:
		return nil, fmt.Errorf("%w: expected mapping or sequence at line %d", core.ErrQueryDocument, root.Line)
	}
}
