package epss

import (
	"encoding/json"
	"math"
	"net/url"
	"time"

	"github.com/araddon/dateparse"
	"github.com/parnurzeal/gorequest"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/epss-sorter/logger"
)

const apiURL = "https://api.first.org/data/v1/epss"

type option func(*Client)

func WithURL(url string) option {
	return func(c *Client) { c.url = url }
}

func WithLogger(l logrus.FieldLogger) option {
	return func(c *Client) { c.logger = l }
}

type Client struct {
	url    string
	logger logrus.FieldLogger
}

func NewClient(opts ...option) Client {
	c := Client{
		url:    apiURL,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Fetch requests the scores of every CVE in query, a comma separated list, in
// a single call. Any HTTP status is returned to the caller as is; only
// transport failures are errors.
func (c Client) Fetch(query string) (RawResponse, error) {
	u, err := c.queryURL(query)
	if err != nil {
		return RawResponse{}, &NetworkError{URL: c.url, Err: err}
	}

	c.logger.Infof("Fetching EPSS scores from %s", c.url)
	resp, body, errs := gorequest.New().Get(u).EndBytes()
	if len(errs) > 0 {
		return RawResponse{}, &NetworkError{URL: u, Err: errs[0]}
	}
	c.logger.Debugf("EPSS API responded with status code %d (%d bytes)", resp.StatusCode, len(body))

	return RawResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// queryURL form-encodes query as the cve parameter. gorequest re-encodes the
// query string the same way before sending, so commas go out as %2C.
func (c Client) queryURL(query string) (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", xerrors.Errorf("invalid EPSS API URL: %w", err)
	}
	u.RawQuery = url.Values{"cve": []string{query}}.Encode()
	return u.String(), nil
}

// Decode parses an EPSS API response body.
func Decode(body []byte) (Response, error) {
	var res Response
	if err := json.Unmarshal(body, &res); err != nil {
		return Response{}, &DecodeError{Err: err}
	}
	return res, nil
}

// Sort returns a copy of records ordered by score, highest first. Equal scores
// keep their original order. Records without a numeric score go last.
func Sort(records []Record) []Record {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		sa, sb := a.Score(), b.Score()
		switch {
		case math.IsNaN(sa) && math.IsNaN(sb):
			return 0
		case math.IsNaN(sa):
			return 1
		case math.IsNaN(sb):
			return -1
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return 0
	})
	return sorted
}

// Unscored returns the CVE IDs whose EPSS value is not a number.
func Unscored(records []Record) []string {
	return lo.FilterMap(records, func(r Record, _ int) (string, bool) {
		return r.CVE, math.IsNaN(r.Score())
	})
}

// ScoreDate returns the date the scores were published, taken from the first
// record that carries one.
func ScoreDate(records []Record) (time.Time, bool) {
	r, ok := lo.Find(records, func(r Record) bool {
		return r.Date != ""
	})
	if !ok {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(r.Date, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
