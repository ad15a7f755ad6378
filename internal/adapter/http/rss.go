package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/couchcryptid/cwa-proxy-service/internal/domain"
	"github.com/gorilla/feeds"
)

// pubDateLayouts are the RSS date forms seen in the CWA feed.
var pubDateLayouts = []string{time.RFC1123Z, time.RFC1123, time.RFC3339}

func (s *Server) handleWarningsRSS(w http.ResponseWriter, r *http.Request) {
	items, err := s.proxy.Warnings(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "fetch warnings failed", "error", err, "kind", domain.KindOf(err))
		s.writeJSON(w, RouteCWAWarningsRSS, http.StatusInternalServerError, newErrorResponse(err, warningsErrorMessages, false))
		return
	}

	selfURL := fmt.Sprintf("%s://%s%s", getScheme(r), r.Host, r.URL.Path)
	rss, err := buildWarningsFeed(items, selfURL, domain.Now()).ToRss()
	if err != nil {
		s.logger.ErrorContext(r.Context(), "render warnings rss failed", "error", err)
		s.writeJSON(w, RouteCWAWarningsRSS, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   msgInternal,
			Details: err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rss))
	s.countResponse(RouteCWAWarningsRSS, http.StatusOK)
}

// buildWarningsFeed renders matched warnings as an RSS channel.
func buildWarningsFeed(items []domain.WarningItem, selfURL string, now time.Time) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       "中央氣象署警特報",
		Link:        &feeds.Link{Href: selfURL},
		Description: "Weather warnings filtered from the CWA bulletin feed",
		Created:     now,
	}

	feed.Items = make([]*feeds.Item, 0, len(items))
	for _, it := range items {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       it.Title,
			Link:        &feeds.Link{Href: it.Link},
			Description: it.Description,
			Id:          it.Link,
			Created:     parsePubDate(it.PubDate),
		})
	}
	return feed
}

// parsePubDate returns the zero time when the date is missing or unparseable.
func parsePubDate(s string) time.Time {
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
