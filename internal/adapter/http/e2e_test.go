package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/cwa-proxy-service/internal/adapter/http"
	"github.com/couchcryptid/cwa-proxy-service/internal/adapter/cwa"
	"github.com/couchcryptid/cwa-proxy-service/internal/config"
	"github.com/couchcryptid/cwa-proxy-service/internal/domain"
	"github.com/couchcryptid/cwa-proxy-service/internal/observability"
	"github.com/couchcryptid/cwa-proxy-service/internal/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	e2eAPIKey  = "CWA-E2E-KEY"
	e2eDataset = "W-C0034-005"
)

// newStack wires the real CWA client and proxy service against a fake upstream.
func newStack(t *testing.T, upstream http.HandlerFunc) *httpadapter.Server {
	t.Helper()
	fake := httptest.NewServer(upstream)
	t.Cleanup(fake.Close)

	cfg := &config.Config{
		CWAAPIKey:          e2eAPIKey,
		CWABaseURL:         fake.URL + "/api/v1/rest/datastore",
		CWATyphoonDataset:  e2eDataset,
		CWAWarningsFeedURL: fake.URL + "/rss/Data/cwa_warning.xml",
	}
	metrics := observability.NewMetricsForTesting()
	client := cwa.NewClient(cfg, metrics, discardLogger())
	svc := proxy.New(client, domain.DefaultKeywordFilter(), nil, discardLogger(), metrics)
	return httpadapter.NewServer(":0", svc, metrics, discardLogger())
}

func TestE2E_TyphoonData(t *testing.T) {
	doc := `{"success":"true","result":{"resource_id":"W-C0034-005"},"records":{"tropicalCyclones":{"tropicalCyclone":[{"typhoonName":"KONG-REY"}]}}}`
	srv := newStack(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rest/datastore/"+e2eDataset, r.URL.Path)
		assert.Equal(t, e2eAPIKey, r.URL.Query().Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	})

	rec := serve(srv, httpadapter.RouteTyphoonData)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, doc, rec.Body.String())
}

func TestE2E_TyphoonData_UpstreamHTTPError(t *testing.T) {
	srv := newStack(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":"false","message":"Resource not found"}`))
	})

	rec := serve(srv, httpadapter.RouteTyphoonData)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "無法從中央氣象署獲取資料", body["error"])
	assert.Contains(t, body["details"], "404")
	assert.Equal(t, float64(404), body["cwa_response_status"])
	assert.Equal(t, `{"success":"false","message":"Resource not found"}`, body["cwa_response_text"])
	assert.NotContains(t, rec.Body.String(), e2eAPIKey)
}

func TestE2E_Warnings_FiltersFeed(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>警特報</title>
<item><title>豪大雨特報</title><link>https://www.cwa.gov.tw/a</link><description>豪雨</description></item>
<item><title>晴時多雲</title><link>https://www.cwa.gov.tw/b</link><description>穩定</description><pubDate>Mon, 19 Oct 2026 09:00:00 +0800</pubDate></item>
</channel></rss>`
	srv := newStack(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rss/Data/cwa_warning.xml", r.URL.Path)
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feed))
	})

	rec := serve(srv, httpadapter.RouteCWAWarnings)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"warnings":[{"title":"豪大雨特報","link":"https://www.cwa.gov.tw/a","description":"豪雨","pubDate":""}]}`, rec.Body.String())
}

func TestE2E_Warnings_MalformedXML(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"truncated", `<rss version="2.0"><channel><item><title>豪大雨特報</title><link`},
		{"mismatched end tag", `<rss version="2.0"><channel><item><title>豪大雨特報</title></itemx></channel></rss>`},
		{"undefined entity", `<rss version="2.0"><channel><item><title>豪大雨特報&bogus;</title></item></channel></rss>`},
		{"bare ampersand", `<rss version="2.0"><channel><item><title>A & B 特報</title></item></channel></rss>`},
		{"junk after root", `<rss version="2.0"><channel><item><title>豪大雨特報</title></item></channel></rss><oops`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newStack(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.doc))
			})

			rec := serve(srv, httpadapter.RouteCWAWarnings)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "解析警特報 XML 失敗", body["error"])
			assert.NotEmpty(t, body["details"])
		})
	}
}

func TestE2E_Warnings_NonRSSRoot(t *testing.T) {
	srv := newStack(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<root><item><title>特報</title></item></root>`))
	})

	rec := serve(srv, httpadapter.RouteCWAWarnings)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"warnings":[{"title":"特報","link":"","description":"","pubDate":""}]}`, rec.Body.String())
}
