package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/epss-sorter/epss"
	"github.com/aquasecurity/epss-sorter/utils"
)

const (
	filePrefix      = "sorted_data_"
	timestampLayout = "2006-01-02_15-04-05"
	indent          = "    "
)

type Document struct {
	Data []epss.Record `json:"data"`
}

type option func(*Reporter)

func WithFs(fs afero.Fs) option {
	return func(r *Reporter) { r.fs = utils.NewFs(fs) }
}

func WithDir(dir string) option {
	return func(r *Reporter) { r.dir = dir }
}

func WithClock(clock func() time.Time) option {
	return func(r *Reporter) { r.clock = clock }
}

func WithWriter(w io.Writer) option {
	return func(r *Reporter) { r.w = w }
}

type Reporter struct {
	fs    utils.Fs
	dir   string
	clock func() time.Time
	w     io.Writer
}

func NewReporter(opts ...option) Reporter {
	r := Reporter{
		fs:    utils.NewFs(afero.NewOsFs()),
		dir:   ".",
		clock: time.Now,
		w:     os.Stdout,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Filename returns the output file name for a report written at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("%s%s.json", filePrefix, t.Local().Format(timestampLayout))
}

// Save writes records to a new timestamped JSON file and returns its path.
func (r Reporter) Save(records []epss.Record) (string, error) {
	if records == nil {
		records = []epss.Record{}
	}

	filePath := filepath.Join(r.dir, Filename(r.clock()))
	if err := r.fs.WriteJSONIndent(filePath, Document{Data: records}, indent); err != nil {
		return "", xerrors.Errorf("unable to write a JSON file: %w", err)
	}
	return filePath, nil
}

func (r Reporter) Print(records []epss.Record) error {
	for _, rec := range records {
		if _, err := fmt.Fprintf(r.w, "CVE: %s, EPSS: %s, Percentile: %s\n", rec.CVE, rec.EPSS, rec.Percentile); err != nil {
			return xerrors.Errorf("write error: %w", err)
		}
	}
	return nil
}
