// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracing 非 Hertz 进程的 OpenTelemetry 接入与事件处理 span 辅助。
// API 进程经 hertz-contrib obs-opentelemetry 挂载；Worker 用 InitTracer。
// 未安装 provider 时各 StartXxxSpan 为 no-op。
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "quest-platform"

// Config OpenTelemetry 配置
type Config struct {
	ServiceName    string
	ExportEndpoint string
	Insecure       bool
}

// InitTracer 初始化 OTLP HTTP exporter 与 tracer provider 并设为全局
func InitTracer(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.ExportEndpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

// StartEventSpan 开始一次事件折叠 span（单事件对玩家全部活跃实例的处理）
func StartEventSpan(ctx context.Context, eventID, userAddress string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "event.process",
		trace.WithAttributes(
			attribute.String("event.id", eventID),
			attribute.String("user.address", userAddress),
		),
	)
}

// StartRewardSpan 开始一次奖励投递 span
func StartRewardSpan(ctx context.Context, questID, userAddress string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "reward.dispatch",
		trace.WithAttributes(
			attribute.String("quest.id", questID),
			attribute.String("user.address", userAddress),
		),
	)
}
