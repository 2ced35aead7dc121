package slc

import (
	_ "embed"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slc-balance/internal/components/telemetry"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

//go:embed testdata/login.html
var loginHtml string

//go:embed testdata/secret.html
var secretHtml string

//go:embed testdata/overview.html
var overviewHtml string

const (
	loginPath    = "/welcome/secured/login"
	secretPath   = "/welcome/secured/secret"
	overviewPath = "/ors/account-overview/secured/summary"
	sessionValue = "authenticated-session"
)

// fakePortal serves the login and overview pages the way the real portal
// does: the credentials POST redirects to the secret answer page and the
// secret answer POST sets the authenticated session cookie.
type fakePortal struct {
	server *httptest.Server

	loginPage         string
	overviewPage      string
	loginStatus       int
	credentialsStatus int
	secretStatus      int
	overviewStatus    int

	mutex             sync.Mutex
	credentialsForm   url.Values
	secretForm        url.Values
	secretPostPath    string
	overviewCookies   []*http.Cookie
	overviewRequested bool
}

func newFakePortal(t testing.TB) *fakePortal {
	p := &fakePortal{
		loginPage:         loginHtml,
		overviewPage:      overviewHtml,
		loginStatus:       http.StatusOK,
		credentialsStatus: http.StatusOK,
		secretStatus:      http.StatusOK,
		overviewStatus:    http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, p.handleLogin)
	mux.HandleFunc(secretPath, p.handleSecret)
	mux.HandleFunc(overviewPath, p.handleOverview)
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)

	return p
}

func (p *fakePortal) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "anonymous", Path: "/"})
		w.WriteHeader(p.loginStatus)
		w.Write([]byte(p.loginPage))
	case http.MethodPost:
		r.ParseForm()
		p.mutex.Lock()
		p.credentialsForm = r.PostForm
		p.mutex.Unlock()

		if p.credentialsStatus != http.StatusOK {
			w.WriteHeader(p.credentialsStatus)
			return
		}
		http.Redirect(w, r, secretPath, http.StatusSeeOther)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (p *fakePortal) handleSecret(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Write([]byte(secretHtml))
	case http.MethodPost:
		r.ParseForm()
		p.mutex.Lock()
		p.secretForm = r.PostForm
		p.secretPostPath = r.URL.Path
		p.mutex.Unlock()

		if p.secretStatus != http.StatusOK {
			w.WriteHeader(p.secretStatus)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "SESSION", Value: sessionValue, Path: "/"})
		w.Write([]byte("<html><body>Signed in</body></html>"))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (p *fakePortal) handleOverview(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	p.overviewRequested = true
	p.overviewCookies = r.Cookies()
	p.mutex.Unlock()

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(p.overviewStatus)
	w.Write([]byte(p.overviewPage))
}

func (p *fakePortal) url(path string) string {
	return p.server.URL + path
}

func (p *fakePortal) newClient(t testing.TB, tel telemetry.API) *Client {
	client, err := NewClient(ClientOptions{
		LoginUrl:    p.url(loginPath),
		OverviewUrl: p.url(overviewPath),
	}, tel)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(client.Close)
	return client
}

// withoutElement returns page with every element matching selector removed.
func withoutElement(t testing.TB, page, selector string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	doc.Find(selector).Remove()
	out, err := doc.Html()
	if err != nil {
		t.Fatal(err)
	}
	return out
}

var testCredentials = Credentials{
	Username:     "student@example.com",
	Password:     "correct horse battery staple",
	SecretAnswer: "fluffy",
}
