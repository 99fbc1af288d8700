package epss

import (
	"fmt"
	"math"
	"strconv"
)

type Response struct {
	Status     string   `json:"status"`
	StatusCode int      `json:"status-code"`
	Version    string   `json:"version"`
	Access     string   `json:"access"`
	Total      int      `json:"total"`
	Offset     int      `json:"offset"`
	Limit      int      `json:"limit"`
	Data       []Record `json:"data"`
}

// Record is a single score as published by the EPSS API. Scores are kept as
// the decimal strings the API returns.
type Record struct {
	CVE        string `json:"cve"`
	EPSS       string `json:"epss"`
	Percentile string `json:"percentile"`
	Date       string `json:"date,omitempty"`
}

// Score returns the EPSS probability, or NaN when it is not a number.
func (r Record) Score() float64 {
	f, err := strconv.ParseFloat(r.EPSS, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

type RawResponse struct {
	StatusCode int
	Body       []byte
}

type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("HTTP error. url: %s, err: %s", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode EPSS response: %s", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
