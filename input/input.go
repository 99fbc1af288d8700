package input

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/epss-sorter/utils"
)

const (
	cveElement   = "cve"
	cveIDElement = "cve_id"
)

type option func(*Parser)

func WithFs(fs afero.Fs) option {
	return func(p *Parser) { p.fs = fs }
}

type Parser struct {
	fs afero.Fs
}

func NewParser(opts ...option) Parser {
	p := Parser{
		fs: afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Collect returns every CVE ID in filename joined by commas. On failure the
// returned query is empty and the error describes why.
func (p Parser) Collect(filename string) (string, error) {
	ids, err := p.Parse(filename)
	if err != nil {
		return "", err
	}
	return Join(ids), nil
}

// Parse returns the CVE IDs found in filename in document order.
func (p Parser) Parse(filename string) ([]string, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	b, err := afero.ReadFile(p.fs, filename)
	if err != nil {
		return nil, &ParseError{Filename: filename, Format: format, Err: err}
	}

	var ids []string
	switch format {
	case FormatXML:
		ids, err = parseXML(b)
	case FormatJSON:
		ids, err = parseJSON(b)
	}
	if err != nil {
		return nil, &ParseError{Filename: filename, Format: format, Err: err}
	}
	return ids, nil
}

// parseXML matches cve_id elements whose parent is a cve element below the
// document root, at any depth. Only comments, processing instructions and
// whitespace may follow the document element.
func parseXML(b []byte) ([]string, error) {
	d := xml.NewDecoder(bytes.NewReader(b))

	var (
		ids      []string
		stack    []string
		text     bytes.Buffer
		capture  int
		seenRoot bool
		closed   bool
	)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, xerrors.Errorf("xml decode error: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if closed {
				return nil, xerrors.Errorf("xml decode error: element <%s> after document element", t.Name.Local)
			}
			seenRoot = true
			stack = append(stack, t.Name.Local)
			if capture == 0 && isCVEIDPath(stack) {
				capture = len(stack)
				text.Reset()
			}
		case xml.CharData:
			if closed && len(bytes.TrimSpace(t)) > 0 {
				return nil, xerrors.New("xml decode error: junk after document element")
			}
			if capture != 0 && capture == len(stack) {
				text.Write(t)
			}
		case xml.EndElement:
			if capture != 0 && capture == len(stack) {
				id := utils.TrimSpaceNewline(text.String())
				if id == "" {
					return nil, xerrors.Errorf("empty %s element at position %d", cveIDElement, len(ids))
				}
				ids = append(ids, id)
				capture = 0
			}
			stack = stack[:len(stack)-1]
			closed = len(stack) == 0
		}
	}

	if !seenRoot {
		return nil, xerrors.New("no root element")
	}
	return ids, nil
}

func isCVEIDPath(stack []string) bool {
	n := len(stack)
	return n >= 3 && stack[n-2] == cveElement && stack[n-1] == cveIDElement
}

func parseJSON(b []byte) ([]string, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, xerrors.Errorf("json unmarshal error: %w", err)
	}
	if doc.CVEs == nil {
		return nil, xerrors.New(`missing "cves" array`)
	}

	for i, e := range *doc.CVEs {
		if e.CVEID == nil {
			return nil, xerrors.Errorf(`entry %d has no "cve_id"`, i)
		}
	}

	return lo.Map(*doc.CVEs, func(e entry, _ int) string {
		return *e.CVEID
	}), nil
}
