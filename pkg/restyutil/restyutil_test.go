package restyutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestRedactForm(t *testing.T) {
	body := url.Values{
		"userId":       {"user@example.com"},
		"password":     {"hunter2"},
		"secretAnswer": {"fluffy"},
		"_csrf":        {"abc"},
	}.Encode()

	out, err := url.ParseQuery(RedactForm(body))
	require.NoError(t, err)
	require.Equal(t, "user@example.com", out.Get("userId"))
	require.Equal(t, "abc", out.Get("_csrf"))
	require.Equal(t, redacted, out.Get("password"))
	require.Equal(t, redacted, out.Get("secretAnswer"))

	require.Equal(t, "a=1&b=2", RedactForm("a=1&b=2"))
	require.Equal(t, "%zz", RedactForm("%zz"))
}

func TestFormatHttpMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "SESSION", Value: "secret-cookie"})
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	res, err := resty.New().R().
		SetFormData(map[string]string{
			"userId":   "user@example.com",
			"password": "hunter2",
		}).
		Post(server.URL + "/login")
	require.NoError(t, err)

	message := FormatHttpMessage(res)
	require.Contains(t, message, "POST "+server.URL+"/login")
	require.Contains(t, message, "<html>ok</html>")
	require.Contains(t, message, "user%40example.com")
	require.NotContains(t, message, "hunter2")
	require.NotContains(t, message, "secret-cookie")
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(out.Directory()))

	out.Write("1", "contents")
	contents, err := os.ReadFile(filepath.Join(out.Directory(), "1.txt"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(contents))
}

func TestFilesystemOutputKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "config.json5")
	require.NoError(t, os.WriteFile(config, []byte("{}"), 0600))

	first, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	first.Write("1", "first")

	second, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	require.NotEqual(t, first.Directory(), second.Directory())

	contents, err := os.ReadFile(config)
	require.NoError(t, err)
	require.Equal(t, "{}", string(contents))

	_, err = os.Stat(filepath.Join(first.Directory(), "1.txt"))
	require.NoError(t, err)
}
