// client.go sets up the browser-like http session shared by login and
// summary scraping.

package slc

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"slc-balance/internal/components/assert"
	"slc-balance/internal/components/telemetry"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

const (
	DefaultLoginUrl    = "https://logon.slc.co.uk/welcome/secured/login"
	DefaultOverviewUrl = "https://www.manage-student-loan-balance.service.gov.uk/ors/account-overview/secured/summary"

	defaultTimeout = time.Second * 30
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

const (
	report_client_new     = "client.new"
	report_client_login   = "client.login"
	report_client_summary = "client.summary"
)

var tracer = otel.Tracer("slc-balance/internal/scrapers/slc")

type ClientOptions struct {
	// LoginUrl defaults to DefaultLoginUrl.
	LoginUrl string
	// OverviewUrl defaults to DefaultOverviewUrl.
	OverviewUrl string
	// Timeout applies to every request, it defaults to 30 seconds.
	Timeout time.Duration
	// InsecureSecretAnswer skips certificate verification when submitting
	// the secret answer, every other request is always verified.
	InsecureSecretAnswer bool
	// HttpOutput receives a redacted dump of every http exchange when set.
	HttpOutput telemetry.HttpOutput
}

// Client is a single user's session with the portal. It is not safe for
// concurrent use.
type Client struct {
	loginUrl    string
	overviewUrl string

	jar  *cookiejar.Jar
	http *resty.Client
	// secretHttp submits the secret answer, it is http unless
	// InsecureSecretAnswer is set.
	secretHttp *resty.Client

	tel telemetry.API
}

func parseUrl(link, fallback string) (string, error) {
	if link == "" {
		link = fallback
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q in %s", parsed.Scheme, link)
	}
	return parsed.String(), nil
}

func newHttpClient(jar http.CookieJar, timeout time.Duration, insecure bool) *resty.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	roundTripper := cloudflarebp.AddCloudFlareByPass(transport)
	if insecure {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true
	}

	client := resty.New()
	client.SetTransport(roundTripper)
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	client.SetTimeout(timeout)
	return client
}

// prefixedOutput keeps the dumps of the two http clients from overwriting
// each other.
type prefixedOutput struct {
	prefix string
	inner  telemetry.HttpOutput
}

func (o prefixedOutput) Write(id, contents string) {
	o.inner.Write(o.prefix+id, contents)
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil("tel", tel)

	tel = telemetry.NewScopedAPI("slc_client", tel)

	loginUrl, err := parseUrl(opts.LoginUrl, DefaultLoginUrl)
	if err != nil {
		return nil, fmt.Errorf("slc: login url: %w", err)
	}
	overviewUrl, err := parseUrl(opts.OverviewUrl, DefaultOverviewUrl)
	if err != nil {
		return nil, fmt.Errorf("slc: overview url: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	httpClient := newHttpClient(jar, timeout, false)
	telemetry.InstrumentResty(httpClient, tel, opts.HttpOutput)

	secretHttp := httpClient
	if opts.InsecureSecretAnswer {
		tel.ReportWarning(
			report_client_new,
			"certificate verification is disabled for the secret answer submission",
		)
		secretHttp = newHttpClient(jar, timeout, true)
		var output telemetry.HttpOutput
		if opts.HttpOutput != nil {
			output = prefixedOutput{prefix: "secret-", inner: opts.HttpOutput}
		}
		telemetry.InstrumentResty(secretHttp, tel, output)
	}

	return &Client{
		loginUrl:    loginUrl,
		overviewUrl: overviewUrl,
		jar:         jar,
		http:        httpClient,
		secretHttp:  secretHttp,
		tel:         tel,
	}, nil
}

// Cookies returns the session cookies that would be sent to link.
func (c *Client) Cookies(link *url.URL) []*http.Cookie {
	return c.jar.Cookies(link)
}

// Close releases the idle connections held by the session.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
	if c.secretHttp != c.http {
		c.secretHttp.GetClient().CloseIdleConnections()
	}
}
