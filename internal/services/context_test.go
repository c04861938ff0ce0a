package services_test

import (
	"context"
	"testing"

	"mediaprobe/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithPath(ctx, "/media/a.mkv")
	ctx = services.WithOperation(ctx, "duration")
	ctx = services.WithRequestID(ctx, "req-123")

	if path, ok := services.PathFromContext(ctx); !ok || path != "/media/a.mkv" {
		t.Fatalf("unexpected path: %v %v", path, ok)
	}
	if op, ok := services.OperationFromContext(ctx); !ok || op != "duration" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithOperation(ctx, "")
	ctx = services.WithPath(ctx, "")
	if _, ok := services.OperationFromContext(ctx); ok {
		t.Fatal("expected no operation value")
	}
	if _, ok := services.PathFromContext(ctx); ok {
		t.Fatal("expected no path value")
	}
}
