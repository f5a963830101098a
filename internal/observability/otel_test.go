package observability

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestParseOtelHeaders(t *testing.T) {
	got := ParseOtelHeaders(" api-key=abc , bad, x= ,tenant=armory")
	want := map[string]string{"api-key": "abc", "tenant": "armory"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseOtelHeaders: want=%v got=%v", want, got)
	}
	if ParseOtelHeaders("") != nil {
		t.Fatalf("ParseOtelHeaders(empty): want nil")
	}
}

func TestClampRatio(t *testing.T) {
	if clampRatio(-1) != 0 || clampRatio(2) != 1 || clampRatio(0.25) != 0.25 {
		t.Fatalf("clampRatio out of range")
	}
}

func TestStartSpanRecordsErrors(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartSpan(context.Background(), "compute.material_power", attribute.Int64("armory.id", 3))
	EndSpan(span, errors.New("boom"))
	_, span = StartSpan(context.Background(), "compute.weapon_power")
	EndSpan(span, nil)

	ended := rec.Ended()
	if len(ended) != 2 {
		t.Fatalf("ended spans: want=2 got=%d", len(ended))
	}
	if ended[0].Status().Code != codes.Error || ended[0].Status().Description != "boom" {
		t.Fatalf("error span status: got %+v", ended[0].Status())
	}
	if ended[1].Status().Code != codes.Unset {
		t.Fatalf("ok span status: got %+v", ended[1].Status())
	}
}
