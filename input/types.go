package input

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Format int

const (
	FormatXML Format = iota + 1
	FormatJSON
)

var extensions = map[string]Format{
	".xml":  FormatXML,
	".json": FormatJSON,
}

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatJSON:
		return "json"
	}
	return "unknown"
}

// DetectFormat picks the input format from the file extension.
func DetectFormat(filename string) (Format, error) {
	if f, ok := extensions[filepath.Ext(filename)]; ok {
		return f, nil
	}
	return 0, &UnsupportedFormatError{Filename: filename}
}

type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %q. Supported formats: .xml, .json", e.Filename)
}

type ParseError struct {
	Filename string
	Format   Format
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s file %s: %s", e.Format, e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type document struct {
	CVEs *[]entry `json:"cves"`
}

type entry struct {
	CVEID *string `json:"cve_id"`
}

// Join returns the identifiers as a single comma-separated query value.
func Join(ids []string) string {
	return strings.Join(ids, ",")
}
