package slc

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tokenCsrf      = "_csrf"
	tokenLt        = "lt"
	tokenExecution = "execution"
	tokenEventId   = "_eventId"
)

// the hidden inputs of the login form, in the order they are looked up
var loginTokenNames = []string{tokenCsrf, tokenLt, tokenExecution, tokenEventId}

func findLoginTokens(doc *goquery.Document) (map[string]string, error) {
	tokens := make(map[string]string, len(loginTokenNames))
	for _, name := range loginTokenNames {
		value, ok := doc.Find(fmt.Sprintf(`input[name="%s"]`, name)).First().Attr("value")
		if !ok {
			return nil, &MissingTokenError{Token: name}
		}
		tokens[name] = value
	}
	return tokens, nil
}

func credentialsForm(tokens map[string]string, creds Credentials) map[string]string {
	return map[string]string{
		"_csrf":           tokens[tokenCsrf],
		"userId":          creds.Username,
		"password":        creds.Password,
		"lt":              tokens[tokenLt],
		"execution":       tokens[tokenExecution],
		"_eventId":        tokens[tokenEventId],
		"continue-button": "",
	}
}

func secretAnswerForm(tokens map[string]string, creds Credentials) map[string]string {
	return map[string]string{
		"_csrf":           tokens[tokenCsrf],
		"secretAnswer":    creds.SecretAnswer,
		"continue-button": "",
	}
}

// finalUrl is the url a response was served from after following redirects.
func finalUrl(res *resty.Response) string {
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		return res.RawResponse.Request.URL.String()
	}
	return res.Request.URL
}

func (c *Client) rejected(span trace.Span, step LoginStep, res *resty.Response) LoginResult {
	span.SetStatus(codes.Error, fmt.Sprintf("%s: status code %d", step, res.StatusCode()))
	c.tel.ReportCritical(
		report_client_login,
		fmt.Errorf("%s: status code %d", step, res.StatusCode()),
		res.Request.URL,
	)
	return LoginResult{Step: step, StatusCode: res.StatusCode()}
}

// Login authenticates the session with the username/password form followed
// by the secret answer form.
//
// A step the portal answers with a non-200 status stops the login without
// an error, the returned LoginResult tells which step it was. Errors are
// returned for failed requests, unparsable pages and a login page missing
// any of its hidden tokens (see MissingTokenError).
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	loginError := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("slc: login: %w", err)
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.loginUrl)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("login page request: %w", err),
		)
		return LoginResult{Step: StepLoadLoginPage}, loginError(err)
	}
	if res.StatusCode() != http.StatusOK {
		return c.rejected(span, StepLoadLoginPage, res), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("parse login page: %w", err),
		)
		return LoginResult{Step: StepLoadLoginPage, StatusCode: res.StatusCode()}, loginError(err)
	}
	tokens, err := findLoginTokens(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_login, err)
		return LoginResult{Step: StepLoadLoginPage, StatusCode: res.StatusCode()}, loginError(err)
	}

	res, err = c.http.R().
		SetContext(ctx).
		SetFormData(credentialsForm(tokens, creds)).
		Post(c.loginUrl)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("credentials request: %w", err),
		)
		return LoginResult{Step: StepSubmitCredentials}, loginError(err)
	}
	if res.StatusCode() != http.StatusOK {
		return c.rejected(span, StepSubmitCredentials, res), nil
	}

	secretAnswerUrl := finalUrl(res)
	c.tel.ReportDebug("secret answer url", secretAnswerUrl)

	res, err = c.secretHttp.R().
		SetContext(ctx).
		SetFormData(secretAnswerForm(tokens, creds)).
		Post(secretAnswerUrl)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("secret answer request: %w", err),
		)
		return LoginResult{Step: StepSubmitSecretAnswer}, loginError(err)
	}
	if res.StatusCode() != http.StatusOK {
		return c.rejected(span, StepSubmitSecretAnswer, res), nil
	}

	return LoginResult{Step: StepComplete, StatusCode: res.StatusCode()}, nil
}
