package services_test

import (
	"context"
	"testing"

	"exifatlas/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithPath(ctx, "/photos/a.jpg")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if path, ok := services.PathFromContext(ctx); !ok || path != "/photos/a.jpg" {
		t.Fatalf("unexpected path: %v %v", path, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := services.WithPath(services.WithRunID(context.Background(), ""), "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id")
	}
	if _, ok := services.PathFromContext(ctx); ok {
		t.Fatal("expected no path")
	}
}
