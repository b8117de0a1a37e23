package metrics

import (
	"context"
	"reflect"
	"time"

	"github.com/andrescamacho/jobshop-sim/internal/application/mediator"
)

// PrometheusMiddleware times every mediator request. A nil collector passes
// requests through untouched.
func PrometheusMiddleware(collector *RequestMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		done := collector.Begin(requestName(request))
		start := time.Now()
		response, err := next(ctx, request)
		done(time.Since(start).Seconds(), err)
		return response, err
	}
}

// requestName is the bare type name: *commands.RunEpisodeCommand -> RunEpisodeCommand
func requestName(request mediator.Request) string {
	if request == nil {
		return "UnknownRequest"
	}
	t := reflect.TypeOf(request)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
