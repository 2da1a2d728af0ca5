package imageproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sheetz/internal/imageload"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	data := pngBytes(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	})
	mux.HandleFunc("/untyped", func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write(data)
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte{0}, 2048))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func proxyURL(base, target string) string {
	return base + "/image-proxy?url=" + url.QueryEscape(target)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.EnableLogging = false
	cfg.MaxBytes = 1024
	return cfg
}

func TestProxy_ForwardsImage(t *testing.T) {
	up := upstream(t)
	proxy := httptest.NewServer(NewServer(testConfig()).Handler())
	defer proxy.Close()

	resp, err := http.Get(proxyURL(proxy.URL, up.URL+"/ok.png"))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, pngBytes(t), body)
}

func TestProxy_SniffsMissingContentType(t *testing.T) {
	up := upstream(t)
	proxy := httptest.NewServer(NewServer(testConfig()).Handler())
	defer proxy.Close()

	resp, err := http.Get(proxyURL(proxy.URL, up.URL+"/untyped"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestProxy_Errors(t *testing.T) {
	up := upstream(t)
	proxy := httptest.NewServer(NewServer(testConfig()).Handler())
	defer proxy.Close()

	tests := []struct {
		name   string
		url    string
		status int
		code   string
	}{
		{"missing url", proxy.URL + "/image-proxy", http.StatusBadRequest, "bad_request"},
		{"file scheme", proxyURL(proxy.URL, "file:///etc/passwd"), http.StatusBadRequest, "bad_request"},
		{"data scheme", proxyURL(proxy.URL, "data:image/png;base64,AAAA"), http.StatusBadRequest, "bad_request"},
		{"upstream 404", proxyURL(proxy.URL, up.URL+"/missing"), http.StatusBadGateway, "upstream_error"},
		{"too large", proxyURL(proxy.URL, up.URL+"/big"), http.StatusBadGateway, "upstream_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(tt.url)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			var body errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestProxy_Preflight(t *testing.T) {
	proxy := httptest.NewServer(NewServer(testConfig()).Handler())
	defer proxy.Close()

	req, err := http.NewRequest(http.MethodOptions, proxy.URL+"/image-proxy", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "GET, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
}

func TestProxy_MethodNotAllowed(t *testing.T) {
	proxy := httptest.NewServer(NewServer(testConfig()).Handler())
	defer proxy.Close()

	resp, err := http.Post(proxy.URL+"/image-proxy", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	h := CORS([]string{"http://app.local"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://app.local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://app.local", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_GracefulShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.Addr = "127.0.0.1:0"
	srv := NewServer(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	select {
	case <-srv.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestProxy_ServesImageLoader(t *testing.T) {
	up := upstream(t)
	proxy := httptest.NewServer(NewServer(testConfig()).Handler())
	defer proxy.Close()

	lcfg := imageload.DefaultConfig()
	lcfg.ProxyURL = proxy.URL + "/image-proxy"
	m := imageload.NewMeasurer(lcfg, imageload.WithErrorHandler(func(*imageload.LoadError) {}))

	imgs := m.MeasureAll(context.Background(), []string{up.URL + "/ok.png", up.URL + "/missing"})
	require.Len(t, imgs, 2)
	assert.False(t, imgs[0].Placeholder)
	assert.Equal(t, 4, imgs[0].Width)
	assert.Equal(t, 3, imgs[0].Height)
	assert.True(t, imgs[1].Placeholder)
}
