package slc

import (
	"context"
	"net/http"
	"net/http/httptest"
	devenv "slc-balance/dev/env"
	"slc-balance/internal/components/telemetry"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(ClientOptions{}, &telemetry.Recorder{})
	require.NoError(t, err)
	defer client.Close()

	require.Equal(t, DefaultLoginUrl, client.loginUrl)
	require.Equal(t, DefaultOverviewUrl, client.overviewUrl)
	require.Equal(t, defaultTimeout, client.http.GetClient().Timeout)
	require.Same(t, client.http, client.secretHttp)
}

func TestNewClientInsecureSecretAnswer(t *testing.T) {
	rec := &telemetry.Recorder{}
	client, err := NewClient(ClientOptions{InsecureSecretAnswer: true}, rec)
	require.NoError(t, err)
	defer client.Close()

	require.NotSame(t, client.http, client.secretHttp)
	require.Same(t, client.http.GetClient().Jar, client.secretHttp.GetClient().Jar)
	require.True(t, rec.Contains(telemetry.REPORT_WARNING, report_client_new))
}

func TestSecretAnswerCertificateVerification(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	for _, insecure := range []bool{false, true} {
		client, err := NewClient(ClientOptions{InsecureSecretAnswer: insecure}, &telemetry.Recorder{})
		require.NoError(t, err)

		_, err = client.http.R().Post(server.URL)
		require.ErrorContains(t, err, "x509", "insecure=%v", insecure)

		res, err := client.secretHttp.R().Post(server.URL)
		if insecure {
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, res.StatusCode())
		} else {
			require.ErrorContains(t, err, "x509")
		}

		client.Close()
	}
}

func TestNewClientInvalidUrl(t *testing.T) {
	_, err := NewClient(ClientOptions{LoginUrl: "ftp://example.com/login"}, &telemetry.Recorder{})
	require.Error(t, err)

	_, err = NewClient(ClientOptions{OverviewUrl: "://"}, &telemetry.Recorder{})
	require.Error(t, err)
}

// TestLiveSummary runs against the real portal, it needs credentials in
// dev/.state/slc_config.json5.
func TestLiveSummary(t *testing.T) {
	config, err := devenv.GetStateConfig[devenv.SlcTestConfig]("slc_config.json5")
	if err != nil {
		t.Skip(err)
	}

	client, err := NewClient(ClientOptions{}, telemetry.SlogAPI{})
	require.NoError(t, err)
	defer client.Close()

	login, err := client.Login(context.Background(), Credentials{
		Username:     config.Username,
		Password:     config.Password,
		SecretAnswer: config.SecretAnswer,
	})
	require.NoError(t, err)
	require.True(t, login.Authenticated(), login.Step.String())

	result, err := client.Summary(context.Background())
	require.NoError(t, err)
	require.True(t, result.Ok())
	require.NotEmpty(t, result.Summary)
}
