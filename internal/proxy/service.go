package proxy

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/cwa-proxy-service/internal/domain"
	"github.com/couchcryptid/cwa-proxy-service/internal/observability"
)

// Upstream fetches raw payloads from the CWA.
type Upstream interface {
	FetchCyclone(ctx context.Context) (domain.CycloneData, error)
	FetchWarnings(ctx context.Context) ([]domain.WarningItem, error)
}

// WarningPublisher fans matched warnings out to downstream consumers.
type WarningPublisher interface {
	PublishWarnings(ctx context.Context, items []domain.WarningItem) error
}

// Service answers the proxy routes: it calls the upstream once per request and
// reshapes the result.
type Service struct {
	upstream  Upstream
	filter    domain.KeywordFilter
	publisher WarningPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	draining  atomic.Bool
}

// New creates a Service. Pass a nil publisher to disable warning fan-out.
func New(upstream Upstream, filter domain.KeywordFilter, publisher WarningPublisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if publisher != nil {
		metrics.PublisherEnabled.Set(1)
	} else {
		metrics.PublisherEnabled.Set(0)
	}
	return &Service{
		upstream:  upstream,
		filter:    filter,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Cyclone returns the upstream cyclone document unchanged.
func (s *Service) Cyclone(ctx context.Context) (domain.CycloneData, error) {
	return s.upstream.FetchCyclone(ctx)
}

// Warnings returns the feed items that match the keyword filter, in feed order.
// Publishing is best-effort: a publisher failure is logged and does not fail the call.
func (s *Service) Warnings(ctx context.Context) ([]domain.WarningItem, error) {
	items, err := s.upstream.FetchWarnings(ctx)
	if err != nil {
		return nil, err
	}

	matched := s.filter.Apply(items)
	s.metrics.WarningsMatched.Add(float64(len(matched)))
	s.logger.DebugContext(ctx, "warnings filtered", "fetched", len(items), "matched", len(matched))

	s.publish(ctx, matched)
	return matched, nil
}

func (s *Service) publish(ctx context.Context, matched []domain.WarningItem) {
	if s.publisher == nil || len(matched) == 0 {
		return
	}
	if err := s.publisher.PublishWarnings(ctx, matched); err != nil {
		s.logger.WarnContext(ctx, "publish warnings failed", "error", err, "count", len(matched))
		s.metrics.WarningsPublished.WithLabelValues("error").Add(float64(len(matched)))
		return
	}
	s.metrics.WarningsPublished.WithLabelValues("success").Add(float64(len(matched)))
}

// Drain marks the service as shutting down so readiness checks fail while
// in-flight requests finish.
func (s *Service) Drain() {
	s.draining.Store(true)
}

// CheckReadiness returns nil while the service accepts traffic.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.draining.Load() {
		return errors.New("service is shutting down")
	}
	return nil
}
