package telemetry

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	tel := NewScopedAPI("slc", rec)

	tel.ReportBroken("client.summary", "balance")
	tel.ReportCritical("client.login", 500)
	tel.ReportWarning("client.new")
	tel.ReportDebug("request")
	tel.ReportCount("client.summary-missing", 2)

	broken := rec.Reports(REPORT_BROKEN)
	require.Len(t, broken, 1)
	require.Equal(t, "slc: client.summary", broken[0].Id)
	require.Equal(t, []any{"balance"}, broken[0].Params)

	require.True(t, rec.Contains(REPORT_CRITICAL, "client.login"))
	require.True(t, rec.Contains(REPORT_WARNING, "client.new"))
	require.True(t, rec.Contains(REPORT_DEBUG, "request"))
	require.False(t, rec.Contains(REPORT_BROKEN, "client.login"))

	require.Panics(t, func() { NewScopedAPI("", rec) })
	require.Panics(t, func() { NewScopedAPI("slc", nil) })

	counts := rec.Reports(REPORT_COUNT)
	require.Len(t, counts, 1)
	require.Equal(t, int64(2), counts[0].Count)
}

func TestSlogCriticalLevel(t *testing.T) {
	var buffer bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(NewSlogHandler(&buffer, false)))
	defer slog.SetDefault(previous)

	tel := SlogAPI{}
	tel.ReportCritical("client.login", 403)
	tel.ReportBroken("client.summary", "balance")
	tel.ReportDebug("hidden when not verbose")

	out := buffer.String()
	require.Contains(t, out, "level=CRITICAL")
	require.Contains(t, out, "id=client.login")
	require.Contains(t, out, "params.0=403")
	require.Contains(t, out, "level=ERROR")
	require.NotContains(t, out, "hidden when not verbose")
}

type memoryOutput struct {
	mutex    sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.messages[id] = contents
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	defer server.Close()

	rec := &Recorder{}
	out := &memoryOutput{messages: map[string]string{}}
	client := resty.New()
	InstrumentResty(client, rec, out)

	res, err := client.R().
		SetFormData(map[string]string{"password": "hunter2"}).
		Post(server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusTeapot, res.StatusCode())

	require.True(t, rec.Contains(REPORT_DEBUG, report_resty_request))
	require.True(t, rec.Contains(REPORT_DEBUG, report_resty_response))
	require.Contains(t, out.messages, "1")
	require.True(t, strings.Contains(out.messages["1"], "short and stout"))
	require.NotContains(t, out.messages["1"], "hunter2")
}

func TestInstrumentRestyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	rec := &Recorder{}
	client := resty.New()
	InstrumentResty(client, rec, nil)

	_, err := client.R().Get(url)
	require.Error(t, err)
	require.True(t, rec.Contains(REPORT_BROKEN, report_resty_response))
}
