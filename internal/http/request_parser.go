// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Transaction forms are accepted as JSON or form-encoded bodies; every other
// payload is strict JSON.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"smartbudget/internal/core"
	"smartbudget/internal/finance"
	"smartbudget/internal/ledger"
)

// RequestBodyParser reads a body once and exposes its fields whether it
// was sent as JSON or as form data.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Has reports whether the field was sent at all, even empty.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Get returns a sanitized string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// GetList returns a list field. JSON arrays are read element-wise; a plain
// string, or repeated form values, is split on commas.
func (p *RequestBodyParser) GetList(key string) []string {
	var raw []string
	switch {
	case p.jsonData != nil:
		switch val := p.jsonData[key].(type) {
		case []any:
			for _, v := range val {
				raw = append(raw, stringValue(v))
			}
		case string:
			raw = strings.Split(val, ",")
		}
	case p.formData != nil:
		for _, v := range p.formData[key] {
			raw = append(raw, strings.Split(v, ",")...)
		}
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, sanitizeInput(v))
	}
	return core.NormalizeTags(out)
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseDraft reads a new transaction from the body.
func parseDraft(p *RequestBodyParser) (ledger.Draft, error) {
	d := ledger.Draft{
		Title:       p.Get("title"),
		Amount:      p.Get("amount"),
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Tags:        p.GetList("tags"),
	}
	if v := p.Get("date"); v != "" {
		date, err := core.ParseDate(v)
		if err != nil {
			return ledger.Draft{}, dateError(err)
		}
		d.Date = date
	}
	return d, nil
}

// parsePatch reads the fields present in the body into a patch.
func parsePatch(p *RequestBodyParser) (ledger.Patch, error) {
	var patch ledger.Patch
	str := func(key string) *string {
		if !p.Has(key) {
			return nil
		}
		v := p.Get(key)
		return &v
	}
	patch.Title = str("title")
	patch.Amount = str("amount")
	patch.Category = str("category")
	patch.Description = str("description")
	if p.Has("tags") {
		tags := p.GetList("tags")
		patch.Tags = &tags
	}
	if p.Has("date") {
		date, err := core.ParseDate(p.Get("date"))
		if err != nil {
			return ledger.Patch{}, dateError(err)
		}
		patch.Date = &date
	}
	if p.Has("bookmarked") {
		b, err := strconv.ParseBool(p.Get("bookmarked"))
		if err != nil {
			var verr core.ValidationError
			verr.Add("bookmarked", "bookmarked must be true or false")
			return ledger.Patch{}, verr.Err()
		}
		patch.Bookmarked = &b
	}
	return patch, nil
}

func dateError(err error) error {
	var verr core.ValidationError
	verr.Add("date", err.Error())
	return verr.Err()
}

var errEmptyBody = errors.New("request body is empty")

// decodeJSON strictly decodes a JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// ParseFilter builds a transaction filter from query parameters.
func ParseFilter(q url.Values) (finance.Filter, error) {
	f := finance.Filter{
		Search:    strings.TrimSpace(q.Get("search")),
		Category:  strings.TrimSpace(q.Get("category")),
		Kind:      core.Kind(strings.ToLower(strings.TrimSpace(q.Get("type")))),
		SortBy:    strings.ToLower(strings.TrimSpace(q.Get("sortBy"))),
		Ascending: strings.EqualFold(strings.TrimSpace(q.Get("order")), "asc"),
	}
	var verr core.ValidationError
	for key, dst := range map[string]*time.Time{"from": &f.From, "to": &f.To} {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			t, err := core.ParseDate(v)
			if err != nil {
				verr.Add(key, err.Error())
				continue
			}
			*dst = t
		}
	}
	for key, dst := range map[string]**float64{"minAmount": &f.MinAmount, "maxAmount": &f.MaxAmount} {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			a, err := strconv.ParseFloat(v, 64)
			if err != nil || core.ValidateAmount(a) != nil {
				verr.Add(key, "must be a non-negative number")
				continue
			}
			*dst = &a
		}
	}
	if err := verr.Err(); err != nil {
		return finance.Filter{}, err
	}
	if err := f.Validate(); err != nil {
		var verr core.ValidationError
		verr.Add("filter", err.Error())
		return finance.Filter{}, verr.Err()
	}
	return f, nil
}

// ParseReportPeriod reads the period parameter ("YYYY-MM" or "YYYY"),
// defaulting to the month containing now.
func ParseReportPeriod(q url.Values, now time.Time) (finance.Period, error) {
	v := strings.TrimSpace(q.Get("period"))
	if v == "" {
		return finance.MonthPeriod(now.Year(), now.Month(), now.Location()), nil
	}
	p, err := finance.ParsePeriod(v, now.Location())
	if err != nil {
		var verr core.ValidationError
		verr.Add("period", err.Error())
		return finance.Period{}, verr.Err()
	}
	return p, nil
}

// ParseLimit reads a positive integer limit, returning def when absent.
func ParseLimit(q url.Values, def int) (int, error) {
	v := strings.TrimSpace(q.Get("limit"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		var verr core.ValidationError
		verr.Add("limit", "limit must be a positive integer")
		return 0, verr.Err()
	}
	return n, nil
}
