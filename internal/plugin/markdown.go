package plugin

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"docdex/pkg/types"
)

func init() {
	Register("markdown", func() Plugin { return &Markdown{} })
}

// Markdown indexes ATX headings of Markdown files as documentation records,
// using the direct extraction contract.
type Markdown struct{}

func (m *Markdown) Name() string { return "markdown" }

func (m *Markdown) Extensions() []string { return []string{".md", ".markdown"} }

func (m *Markdown) Init(InitContext) error { return nil }

func (m *Markdown) Dispose() error { return nil }

// ExtractDirect returns one record per heading. Headings inside fenced code
// blocks are ignored. Duplicate heading text within one file gets an
// occurrence suffix so record IDs stay unique.
func (m *Markdown) ExtractDirect(relPath string, content []byte) ([]types.SymbolRecord, error) {
	var records []types.SymbolRecord
	seen := make(map[string]int)

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	inFence := false
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		trimmed := strings.TrimSpace(text)

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(trimmed, "#") {
			continue
		}

		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}
		if level > 6 || level == len(trimmed) || trimmed[level] != ' ' {
			continue
		}

		name := strings.TrimSpace(trimmed[level:])
		if name == "" {
			continue
		}

		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s (%d)", name, n)
		}

		rec := types.SymbolRecord{
			Name:      name,
			Kind:      types.KindHeading,
			File:      relPath,
			Signature: trimmed,
			Line:      line,
			Exported:  true,
		}
		rec.ID = types.SymbolID(relPath, "", name, types.KindHeading)
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", relPath, err)
	}

	return records, nil
}
