package types

import (
	"errors"
	"fmt"
	"path"
	"sort"
)

// SymbolKind classifies a documented symbol.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindStruct    SymbolKind = "struct"
	KindInterface SymbolKind = "interface"
	KindType      SymbolKind = "type"
	KindConst     SymbolKind = "const"
	KindVar       SymbolKind = "var"
	KindField     SymbolKind = "field"
	KindHeading   SymbolKind = "heading"
)

// SymbolRecord is one documentation record in the index. File is always a
// slash-separated path relative to the project root; ID is derived from it.
type SymbolRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	File      string     `json:"file"`
	Package   string     `json:"package,omitempty"`
	Receiver  string     `json:"receiver,omitempty"`
	Signature string     `json:"signature,omitempty"`
	Doc       string     `json:"doc,omitempty"`
	Line      int        `json:"line"`
	Exported  bool       `json:"exported"`
}

// SymbolID builds the stable identifier for a symbol: relative file path,
// receiver (for methods), name, and kind. Two distinct symbols in one file
// never share an ID because kind participates.
func SymbolID(relPath, receiver, name string, kind SymbolKind) string {
	if receiver != "" {
		return fmt.Sprintf("%s#%s.%s:%s", relPath, receiver, name, kind)
	}
	return fmt.Sprintf("%s#%s:%s", relPath, name, kind)
}

// Rekey moves a record to a new relative file path and regenerates its ID.
// Used when plugin output produced under a synthetic path is attributed back
// to the original source file.
func (s *SymbolRecord) Rekey(relPath string) {
	s.File = path.Clean(relPath)
	s.ID = SymbolID(s.File, s.Receiver, s.Name, s.Kind)
}

// Validate checks the fields the engine relies on downstream.
func (s *SymbolRecord) Validate() error {
	if s.Name == "" {
		return errors.New("symbol name is required")
	}
	if s.File == "" {
		return errors.New("symbol file is required")
	}
	if s.ID == "" {
		return errors.New("symbol id is required")
	}
	if s.Kind == KindMethod && s.Receiver == "" {
		return errors.New("methods must have a receiver type")
	}
	return nil
}

// SortRecords orders records by ID so snapshot output is deterministic.
func SortRecords(records []SymbolRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
}
