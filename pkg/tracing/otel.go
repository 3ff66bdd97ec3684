// Copyright 2026 fanjia1024
// OpenTelemetry integration for distributed tracing

package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// OTelConfig OpenTelemetry 配置
type OTelConfig struct {
	ServiceName    string
	ExportEndpoint string
	Insecure       bool
}

// InitTracer 初始化 OpenTelemetry tracer
func InitTracer(config OTelConfig) (*sdktrace.TracerProvider, error) {
	ctx := context.Background()

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(config.ExportEndpoint),
	}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

// StartStreamSpan 开始一次下行流转发 span
func StartStreamSpan(ctx context.Context, streamID string, chatID string) (context.Context, trace.Span) {
	tracer := otel.Tracer("fastgpt-gateway")
	ctx, span := tracer.Start(ctx, "stream.forward",
		trace.WithAttributes(
			attribute.String("stream.id", streamID),
			attribute.String("chat.id", chatID),
		),
	)
	return ctx, span
}

// StartUpstreamSpan 开始上游 SSE 拉取 span
func StartUpstreamSpan(ctx context.Context, baseURL string) (context.Context, trace.Span) {
	tracer := otel.Tracer("fastgpt-gateway")
	ctx, span := tracer.Start(ctx, "upstream.stream",
		trace.WithAttributes(
			attribute.String("upstream.base_url", baseURL),
		),
	)
	return ctx, span
}
