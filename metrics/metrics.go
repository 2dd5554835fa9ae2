package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RateLimitExceededTotal *prometheus.CounterVec

	CommentsCreatedTotal prometheus.Counter
	CommentMentionsTotal prometheus.Counter
	PhotosUploadedTotal  prometheus.Counter
	FavoritesAddedTotal  prometheus.Counter
	AccountsDeletedTotal prometheus.Counter
	LoginsTotal          *prometheus.CounterVec

	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide collectors, registering them on first use.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "photoshare_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "photoshare_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "photoshare_rate_limit_exceeded_total",
					Help: "Requests rejected by a rate limiter",
				},
				[]string{"limiter"},
			),
			CommentsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "photoshare_comments_created_total",
				Help: "Comments appended to photos",
			}),
			CommentMentionsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "photoshare_comment_mentions_total",
				Help: "Mentions stored with new comments",
			}),
			PhotosUploadedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "photoshare_photos_uploaded_total",
				Help: "Photos stored",
			}),
			FavoritesAddedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "photoshare_favorites_added_total",
				Help: "Favorites created",
			}),
			AccountsDeletedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "photoshare_accounts_deleted_total",
				Help: "Accounts removed together with their content",
			}),
			LoginsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "photoshare_logins_total",
					Help: "Login attempts by outcome",
				},
				[]string{"outcome"},
			),
			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "photoshare_errors_total",
					Help: "Errors returned to clients by code",
				},
				[]string{"code"},
			),
		}
	})
	return instance
}
