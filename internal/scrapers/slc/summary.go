package slc

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"slc-balance/internal/components/telemetry"
	"slc-balance/pkg/htmlutil"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const report_client_summary_missing = "client.summary-missing"

// fieldRule locates a single summary field on the overview page, parse is
// only called with a non-empty selection.
type fieldRule struct {
	field    Field
	selector string
	parse    func(sel *goquery.Selection) (any, error)
}

// a change in the overview page's markup should only ever need a change here
var summaryRules = []fieldRule{
	{field: FieldBalance, selector: "p#balanceId_1", parse: parseBalance},
	{field: FieldInterestRate, selector: "p#interestAsOfDateId-1", parse: parseInterestRate},
	{field: FieldCurrentYear, selector: "h2#academicYearSummaryId-1", parse: parseAcademicYear},
	{field: FieldSalaryRepayments, selector: "td#salaryRepaymentAmountId-1", parse: parseCellAmount},
	{field: FieldDirectRepayments, selector: "td#directRepaymentAmountId-1", parse: parseCellAmount},
	{field: FieldInterestAdded, selector: "td#interestAddedAmountId-1", parse: parseCellAmount},
}

var amountReplacer = strings.NewReplacer("£", "", ",", "")

// parseAmount parses "£1,234.56" into 1234.56.
func parseAmount(text string) (float64, error) {
	cleaned := strings.TrimSpace(amountReplacer.Replace(text))
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", text, err)
	}
	return amount, nil
}

// parseRate parses "4.5%" into 0.045.
func parseRate(text string) (float64, error) {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "%"))
	rate, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse rate %q: %w", text, err)
	}
	return rate / 100, nil
}

func firstLine(sel *goquery.Selection, match func(line string) bool) (string, bool) {
	for _, line := range htmlutil.Lines(sel) {
		if match(line) {
			return line, true
		}
	}
	return "", false
}

func parseBalance(sel *goquery.Selection) (any, error) {
	line, ok := firstLine(sel, func(line string) bool {
		return strings.HasPrefix(line, "£")
	})
	if !ok {
		return nil, fmt.Errorf("%w: no line starting with £", ErrValueNotFound)
	}
	balance, err := parseAmount(line)
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func parseInterestRate(sel *goquery.Selection) (any, error) {
	line, ok := firstLine(sel, func(line string) bool {
		return strings.HasSuffix(line, "%")
	})
	if !ok {
		return nil, fmt.Errorf("%w: no line ending with %%", ErrValueNotFound)
	}
	rate, err := parseRate(line)
	if err != nil {
		return nil, err
	}
	return rate, nil
}

func parseAcademicYear(sel *goquery.Selection) (any, error) {
	text, ok := htmlutil.FirstChildText(sel)
	if !ok {
		return nil, fmt.Errorf("%w: empty header", ErrValueNotFound)
	}
	return strings.TrimSpace(strings.ReplaceAll(text, "summary", "")), nil
}

func parseCellAmount(sel *goquery.Selection) (any, error) {
	text, ok := htmlutil.FirstChildText(sel)
	if !ok {
		return nil, fmt.Errorf("%w: empty cell", ErrValueNotFound)
	}
	amount, err := parseAmount(text)
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// ExtractSummary runs every field rule against the overview page. Each
// field that cannot be extracted is reported to tel, left out of the
// summary and returned as a FieldError, the other fields are unaffected.
// A value that fails to parse as a number is treated like a missing element.
func ExtractSummary(doc *goquery.Document, tel telemetry.API) (Summary, []FieldError) {
	summary := Summary{}
	var failures []FieldError

	for _, rule := range summaryRules {
		sel := doc.Find(rule.selector).First()

		var value any
		err := ErrElementNotFound
		if sel.Length() > 0 {
			value, err = rule.parse(sel)
		}
		if err != nil {
			fieldErr := FieldError{Field: rule.field, Err: err}
			tel.ReportBroken(report_client_summary, fieldErr, rule.selector)
			failures = append(failures, fieldErr)
			continue
		}

		summary[rule.field] = value
	}

	return summary, failures
}

// Summary fetches the account overview page with the session's cookies and
// extracts the account summary from it.
//
// A non-200 overview page is reported and yields an empty summary without
// an error. Errors are only returned for failed requests and unparsable
// pages.
func (c *Client) Summary(ctx context.Context) (SummaryResult, error) {
	ctx, span := tracer.Start(ctx, "client:Summary")
	defer span.End()

	result := SummaryResult{Summary: Summary{}}

	res, err := c.http.R().
		SetContext(ctx).
		Post(c.overviewUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch overview page")
		c.tel.ReportBroken(
			report_client_summary,
			fmt.Errorf("overview page request: %w", err),
		)
		return result, fmt.Errorf("slc: summary: %w", err)
	}
	result.StatusCode = res.StatusCode()

	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, fmt.Sprintf("overview page: status code %d", res.StatusCode()))
		c.tel.ReportBroken(
			report_client_summary,
			fmt.Errorf("could not load overview page, status code %d", res.StatusCode()),
			c.overviewUrl,
		)
		return result, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse overview page")
		c.tel.ReportBroken(
			report_client_summary,
			fmt.Errorf("parse overview page: %w", err),
		)
		return result, fmt.Errorf("slc: summary: %w", err)
	}

	result.Summary, result.Failures = ExtractSummary(doc, c.tel)

	span.SetAttributes(
		attribute.Int("summary.fields", len(result.Summary)),
		attribute.Int("summary.missing", len(result.Failures)),
	)
	c.tel.ReportCount(report_client_summary_missing, int64(len(result.Failures)))

	return result, nil
}
