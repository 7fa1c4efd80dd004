package trace

import (
	"context"
	"testing"
)

func TestEnsure(t *testing.T) {
	ctx, id := Ensure(context.Background())
	if len(id) != 32 {
		t.Fatalf("generated id %q has length %d, want 32", id, len(id))
	}
	if FromContext(ctx) != id {
		t.Error("Ensure() did not store the id")
	}

	ctx2, id2 := Ensure(ctx)
	if id2 != id || FromContext(ctx2) != id {
		t.Error("Ensure() replaced an existing id")
	}
}

func TestFromContext_Empty(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("FromContext() = %q, want empty", got)
	}
}
