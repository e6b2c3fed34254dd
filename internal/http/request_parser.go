package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/transfer"
)

// maxBodyBytes caps request bodies read by RequestBodyParser.
const maxBodyBytes = 1 << 20

// SummaryParams holds the account and closed date range of a summary query.
type SummaryParams struct {
	AccountID string
	From      core.Date
	To        core.Date
}

// ParseSummaryParams reads accountId, from and to. Missing dates default to
// the epoch and today; malformed or inverted ranges return ErrInvalidDate.
func ParseSummaryParams(query url.Values, today core.Date) (SummaryParams, error) {
	params := SummaryParams{
		AccountID: sanitizeInput(query.Get("accountId")),
		From:      core.Epoch(),
		To:        today,
	}

	if v := strings.TrimSpace(query.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return SummaryParams{}, err
		}
		params.From = d
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return SummaryParams{}, err
		}
		params.To = d
	}
	if params.From.After(params.To.Time) {
		return SummaryParams{}, fmt.Errorf("%w: from is after to", core.ErrInvalidDate)
	}
	return params, nil
}

// ParseTransferRequest builds a transfer request from a parsed JSON or form
// body. An empty date means today.
func ParseTransferRequest(p *RequestBodyParser) (transfer.Request, error) {
	req := transfer.Request{
		SourceAccountID: p.Get("sourceAccountId"),
		TargetAccountID: p.Get("targetAccountId"),
		Amount:          p.Get("amount"),
		Notes:           p.Get("notes"),
	}
	if v := p.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return transfer.Request{}, err
		}
		req.Date = d
	}
	return req, nil
}

// RequestBodyParser reads a transfer submission posted either as JSON by API
// clients or form-encoded by htmx. The body is read once, capped at
// maxBodyBytes.
type RequestBodyParser struct {
	body     []byte
	json     bool
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		json: strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body. A JSON content type, or a body starting with '{',
// is decoded as a JSON object; anything else as form values. An empty body
// parses to no values.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	switch {
	case len(trimmed) == 0:
		p.formData = url.Values{}
	case p.json || trimmed[0] == '{':
		p.json = true
		p.err = json.Unmarshal(trimmed, &p.jsonData)
	default:
		p.formData, p.err = url.ParseQuery(string(trimmed))
	}
	return p.err
}

// Get returns the sanitized value of key, or "" when it is absent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return sanitizeInput(stringValue(p.jsonData[key]))
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON reports whether the body was decoded as JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue renders JSON scalars as strings. Numbers keep their shortest
// representation so {"amount": 40.5} reads as "40.5".
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

// RequireMethod returns a 405 response unless r uses one of methods.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses query and body values into r.Form.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
