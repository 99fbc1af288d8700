package input_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/epss-sorter/input"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     input.Format
		wantErr  string
	}{
		{
			name:     "xml",
			filename: "report.xml",
			want:     input.FormatXML,
		},
		{
			name:     "json with directories",
			filename: "/tmp/scans/report.json",
			want:     input.FormatJSON,
		},
		{
			name:     "text file",
			filename: "cves.txt",
			wantErr:  "Supported formats: .xml, .json",
		},
		{
			name:     "upper case extension",
			filename: "report.JSON",
			wantErr:  "unsupported file format",
		},
		{
			name:     "no extension",
			filename: "report",
			wantErr:  "unsupported file format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := input.DetectFormat(tt.filename)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				var fe *input.UnsupportedFormatError
				assert.True(t, xerrors.As(err, &fe))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name         string
		inputFile    string
		want         []string
		wantErr      string
		wantParseErr bool
	}{
		{
			name:      "happy path xml",
			inputFile: "testdata/cves.xml",
			want: []string{
				"CVE-2023-4863",
				"CVE-2021-44228",
				"CVE-2022-22965",
				"CVE-2023-4863",
			},
		},
		{
			name:      "happy path json",
			inputFile: "testdata/cves.json",
			want: []string{
				"CVE-2023-4863",
				"CVE-2021-44228",
				"CVE-2022-22965",
				"CVE-2023-4863",
			},
		},
		{
			name:      "root cve element is not matched",
			inputFile: "testdata/root-cve.xml",
			want:      nil,
		},
		{
			name:      "empty cves array",
			inputFile: "testdata/empty.json",
			want:      []string{},
		},
		{
			name:      "unsupported format",
			inputFile: "testdata/cves.txt",
			wantErr:   "unsupported file format",
		},
		{
			name:         "missing file",
			inputFile:    "testdata/does-not-exist.json",
			wantErr:      "failed to parse json file",
			wantParseErr: true,
		},
		{
			name:         "malformed xml",
			inputFile:    "testdata/malformed.xml",
			wantErr:      "xml decode error",
			wantParseErr: true,
		},
		{
			name:         "second root element",
			inputFile:    "testdata/two-roots.xml",
			wantErr:      "element <b> after document element",
			wantParseErr: true,
		},
		{
			name:         "junk after root element",
			inputFile:    "testdata/trailing-junk.xml",
			wantErr:      "junk after document element",
			wantParseErr: true,
		},
		{
			name:      "comment after root element",
			inputFile: "testdata/trailing-comment.xml",
			want:      []string{"CVE-2023-4863"},
		},
		{
			name:         "empty xml file",
			inputFile:    "testdata/empty.xml",
			wantErr:      "no root element",
			wantParseErr: true,
		},
		{
			name:         "empty cve_id element",
			inputFile:    "testdata/empty-id.xml",
			wantErr:      "empty cve_id element",
			wantParseErr: true,
		},
		{
			name:         "malformed json",
			inputFile:    "testdata/malformed.json",
			wantErr:      "json unmarshal error",
			wantParseErr: true,
		},
		{
			name:         "missing cves key",
			inputFile:    "testdata/missing-cves.json",
			wantErr:      `missing "cves" array`,
			wantParseErr: true,
		},
		{
			name:         "missing cve_id key",
			inputFile:    "testdata/missing-id.json",
			wantErr:      `entry 1 has no "cve_id"`,
			wantParseErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := input.NewParser()
			got, err := p.Parse(tt.inputFile)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				var pe *input.ParseError
				assert.Equal(t, tt.wantParseErr, xerrors.As(err, &pe))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParser_ParseCount(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, n := range []int{0, 1, 7, 250} {
		var xmlDoc, jsonDoc strings.Builder
		var want []string
		xmlDoc.WriteString("<root>")
		jsonDoc.WriteString(`{"cves":[`)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("CVE-2024-%04d", n-i)
			want = append(want, id)
			fmt.Fprintf(&xmlDoc, "<cve><cve_id>%s</cve_id></cve>", id)
			if i > 0 {
				jsonDoc.WriteString(",")
			}
			fmt.Fprintf(&jsonDoc, `{"cve_id":%q}`, id)
		}
		xmlDoc.WriteString("</root>")
		jsonDoc.WriteString("]}")

		xmlFile := fmt.Sprintf("/in/%d.xml", n)
		jsonFile := fmt.Sprintf("/in/%d.json", n)
		require.NoError(t, afero.WriteFile(fs, xmlFile, []byte(xmlDoc.String()), 0644))
		require.NoError(t, afero.WriteFile(fs, jsonFile, []byte(jsonDoc.String()), 0644))

		p := input.NewParser(input.WithFs(fs))
		for _, f := range []string{xmlFile, jsonFile} {
			got, err := p.Parse(f)
			require.NoError(t, err, f)
			assert.Len(t, got, n, f)
			if n > 0 {
				assert.Equal(t, want, got, f)
			}
		}
	}
}

func TestParser_Collect(t *testing.T) {
	tests := []struct {
		name      string
		inputFile string
		want      string
		wantErr   string
	}{
		{
			name:      "happy path",
			inputFile: "testdata/cves.json",
			want:      "CVE-2023-4863,CVE-2021-44228,CVE-2022-22965,CVE-2023-4863",
		},
		{
			name:      "no identifiers",
			inputFile: "testdata/empty.json",
			want:      "",
		},
		{
			name:      "unsupported format yields an empty query",
			inputFile: "testdata/cves.txt",
			want:      "",
			wantErr:   "unsupported file format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := input.NewParser().Collect(tt.inputFile)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
