package handlers

import (
	"bytes"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var (
	eventsIngested   *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
)

func InitPrometheusMetrics() {
	eventsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paintadvisor",
			Name:      "events_ingested_total",
			Help:      "Total number of analytics events accepted, by type and storage tier.",
		},
		[]string{"event_type", "storage"},
	)
	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paintadvisor",
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream provider calls, by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
	prometheus.MustRegister(eventsIngested, upstreamRequests)
}

func observeUpstream(provider string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamRequests.WithLabelValues(provider, outcome).Inc()
}

// MetricsHandler serves the default registry in Prometheus text
// exposition format.
func MetricsHandler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		metricFamilies, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to gather metrics")
			return
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
		for _, mf := range metricFamilies {
			if err := encoder.Encode(mf); err != nil {
				errResponse(ctx, fasthttp.StatusInternalServerError, "failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.FmtText))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}

// RequestLogger logs every request with its status and duration.
func RequestLogger(log *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			log.Info("request",
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("duration", time.Since(start)),
				zap.String("ip", ctx.RemoteAddr().String()))
		}
	}
}
