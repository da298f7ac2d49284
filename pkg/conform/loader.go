package conform

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// LoadSchemaDir reads every *.json file in dir and returns the documents
// keyed by file name. Subdirectories are ignored.
func LoadSchemaDir(dir string) (map[string]any, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	schemas := make(map[string]any, len(names))
	for _, name := range names {
		doc, err := LoadSchemaFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		schemas[name] = doc
	}
	return schemas, nil
}

// LoadSchemaFile decodes one JSON Schema document, keeping numbers exact.
func LoadSchemaFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema: %w", err)
	}
	defer f.Close()

	doc, err := sjsonschema.UnmarshalJSON(f)
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}
