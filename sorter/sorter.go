package sorter

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/epss-sorter/epss"
	"github.com/aquasecurity/epss-sorter/input"
	"github.com/aquasecurity/epss-sorter/logger"
	"github.com/aquasecurity/epss-sorter/report"
)

const (
	ExitOK      = 0
	ExitFailure = 1
)

type Result struct {
	// InputErr is set when the input file could not be read. The query still
	// runs, with no CVE IDs.
	InputErr   error
	Query      string
	StatusCode int
	Records    []epss.Record
	OutputFile string
}

type option func(*Sorter)

func WithParser(p input.Parser) option {
	return func(s *Sorter) { s.parser = p }
}

func WithClient(c epss.Client) option {
	return func(s *Sorter) { s.client = c }
}

func WithReporter(r report.Reporter) option {
	return func(s *Sorter) { s.reporter = r }
}

func WithLogger(l logrus.FieldLogger) option {
	return func(s *Sorter) { s.logger = l }
}

type Sorter struct {
	parser   input.Parser
	client   epss.Client
	reporter report.Reporter
	logger   logrus.FieldLogger
}

func New(opts ...option) Sorter {
	s := Sorter{
		parser:   input.NewParser(),
		client:   epss.NewClient(),
		reporter: report.NewReporter(),
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Run parses filename, fetches the scores of its CVEs, and saves them sorted by
// score. A non-200 reply ends the run without an error; Result.StatusCode tells
// the caller what happened.
func (s Sorter) Run(filename string) (Result, error) {
	var res Result

	s.logger.Infof("Reading CVE IDs from %s", filename)
	res.Query, res.InputErr = s.parser.Collect(filename)
	if res.InputErr != nil {
		s.logger.Warnf("Continuing with an empty CVE list: %s", res.InputErr)
	} else {
		s.logger.Debugf("Collected %d CVE IDs", countIDs(res.Query))
	}

	raw, err := s.client.Fetch(res.Query)
	if err != nil {
		return res, xerrors.Errorf("failed to fetch EPSS scores: %w", err)
	}
	res.StatusCode = raw.StatusCode
	if raw.StatusCode != http.StatusOK {
		return res, nil
	}

	resp, err := epss.Decode(raw.Body)
	if err != nil {
		return res, xerrors.Errorf("failed to read EPSS scores: %w", err)
	}
	s.logger.Debugf("EPSS API returned %d of %d records (model %s)", len(resp.Data), resp.Total, resp.Version)
	if date, ok := epss.ScoreDate(resp.Data); ok {
		s.logger.Infof("EPSS scores as of %s", date.Format("2006-01-02"))
	}
	if unscored := epss.Unscored(resp.Data); len(unscored) > 0 {
		s.logger.Warnf("Records without a numeric EPSS score are listed last: %s", strings.Join(unscored, ", "))
	}

	res.Records = epss.Sort(resp.Data)

	res.OutputFile, err = s.reporter.Save(res.Records)
	if err != nil {
		return res, xerrors.Errorf("failed to save sorted data: %w", err)
	}
	return res, nil
}

// Summarize prints the outcome of Run to w and returns the process exit code.
func (s Sorter) Summarize(w io.Writer, res Result, err error) int {
	if res.InputErr != nil {
		fmt.Fprintf(w, "Error: %s\n", res.InputErr)
	}

	if res.StatusCode == http.StatusOK && len(res.Records) > 0 {
		if perr := s.reporter.Print(res.Records); perr != nil {
			s.logger.Errorf("Unable to print records: %s", perr)
		}
	}

	switch {
	case err != nil:
		fmt.Fprintf(w, "Error: %s\n", err)
		return ExitFailure
	case res.StatusCode != http.StatusOK:
		fmt.Fprintf(w, "Failed to retrieve data. Status code: %d\n", res.StatusCode)
		return ExitOK
	}

	fmt.Fprintf(w, "Sorted data saved to '%s'\n", res.OutputFile)
	return ExitOK
}

func countIDs(query string) int {
	if query == "" {
		return 0
	}
	return strings.Count(query, ",") + 1
}
