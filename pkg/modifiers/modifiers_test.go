package modifiers

import (
	"context"
	"errors"
	"testing"

	"github.com/composiohq/composio-go/pkg/tool"
)

func TestEmptyPipelineIsIdentity(t *testing.T) {
	p := NewPipeline()
	ctx := context.Background()

	def := tool.Tool{
		Slug:        "X",
		ToolkitSlug: "github",
		InputSchema: map[string]any{"type": "object"},
	}
	got, err := p.ApplySchema(ctx, def)
	if err != nil {
		t.Fatalf("ApplySchema() error = %v", err)
	}
	if got.InputSchema["type"] != "object" {
		t.Error("ApplySchema() altered the schema")
	}

	params := map[string]any{"a": 1}
	outParams, err := p.ApplyBefore(ctx, ToolContext{Slug: "X"}, params)
	if err != nil {
		t.Fatalf("ApplyBefore() error = %v", err)
	}
	if outParams["a"] != 1 {
		t.Error("ApplyBefore() altered the params")
	}

	res := tool.ExecuteResponse{Successful: true, Data: map[string]any{"ok": true}}
	outRes, err := p.ApplyAfter(ctx, ToolContext{Slug: "X"}, res)
	if err != nil {
		t.Fatalf("ApplyAfter() error = %v", err)
	}
	if !outRes.Successful {
		t.Error("ApplyAfter() flipped the successful flag")
	}
}

func TestStageOrdering(t *testing.T) {
	var log []string
	p := NewPipeline()
	p.UseSchema(func(_ context.Context, _ ToolContext, doc map[string]any) (map[string]any, error) {
		log = append(log, "modifySchema")
		return doc, nil
	})
	p.UseBefore(func(_ context.Context, _ ToolContext, params map[string]any) (map[string]any, error) {
		log = append(log, "beforeExecute")
		return params, nil
	})
	p.UseAfter(func(_ context.Context, _ ToolContext, res tool.ExecuteResponse) (tool.ExecuteResponse, error) {
		log = append(log, "afterExecute")
		return res, nil
	})

	ctx := context.Background()
	def := tool.Tool{Slug: "X", ToolkitSlug: "github"}
	tc := ToolContext{Slug: "X", ToolkitSlug: "github"}

	if _, err := p.ApplySchema(ctx, def); err != nil {
		t.Fatalf("ApplySchema() error = %v", err)
	}
	if _, err := p.ApplyBefore(ctx, tc, nil); err != nil {
		t.Fatalf("ApplyBefore() error = %v", err)
	}
	if _, err := p.ApplyAfter(ctx, tc, tool.ExecuteResponse{}); err != nil {
		t.Fatalf("ApplyAfter() error = %v", err)
	}

	want := []string{"modifySchema", "beforeExecute", "afterExecute"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
}

func TestHooksRunSequentiallyInOrder(t *testing.T) {
	p := NewPipeline()
	p.UseBefore(func(_ context.Context, _ ToolContext, params map[string]any) (map[string]any, error) {
		params["trail"] = params["trail"].(string) + "a"
		return params, nil
	})
	p.UseBefore(func(_ context.Context, _ ToolContext, params map[string]any) (map[string]any, error) {
		params["trail"] = params["trail"].(string) + "b"
		return params, nil
	})

	out, err := p.ApplyBefore(context.Background(), ToolContext{Slug: "X"}, map[string]any{"trail": ""})
	if err != nil {
		t.Fatalf("ApplyBefore() error = %v", err)
	}
	if out["trail"] != "ab" {
		t.Errorf("trail = %q, want %q", out["trail"], "ab")
	}
}

func TestSchemaHookCannotMutateResolvedTool(t *testing.T) {
	p := NewPipeline()
	p.UseSchema(func(_ context.Context, _ ToolContext, doc map[string]any) (map[string]any, error) {
		doc["type"] = "string"
		return doc, nil
	})

	def := tool.Tool{
		Slug:        "X",
		ToolkitSlug: "github",
		InputSchema: map[string]any{"type": "object"},
	}
	got, err := p.ApplySchema(context.Background(), def)
	if err != nil {
		t.Fatalf("ApplySchema() error = %v", err)
	}
	if got.InputSchema["type"] != "string" {
		t.Error("hook's rewrite was dropped")
	}
	if def.InputSchema["type"] != "object" {
		t.Error("hook mutated the resolved definition")
	}
}

func TestBeforeHookErrorAborts(t *testing.T) {
	boom := errors.New("nope")
	p := NewPipeline()
	p.UseBefore(func(context.Context, ToolContext, map[string]any) (map[string]any, error) {
		return nil, boom
	})
	p.UseBefore(func(context.Context, ToolContext, map[string]any) (map[string]any, error) {
		t.Fatal("second hook ran after first errored")
		return nil, nil
	})

	_, err := p.ApplyBefore(context.Background(), ToolContext{Slug: "X"}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("ApplyBefore() error = %v, want wrapped hook error", err)
	}
}
