// Package anthropic adapts resolved tools to the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/composiohq/composio-go/pkg/provider"
	"github.com/composiohq/composio-go/pkg/tool"
)

// Provider converts tool definitions to Anthropic tool params and executes
// tool_use blocks from assistant turns.
type Provider struct {
	execute provider.ExecuteFunc
}

// New creates the adapter around an execution dispatch function.
func New(execute provider.ExecuteFunc) *Provider {
	return &Provider{execute: execute}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "anthropic" }

// WrapTools renders definitions as Anthropic tool union params. Tool slugs
// become the wire tool names unchanged.
func (p *Provider) WrapTools(defs []tool.Tool) ([]sdk.ToolUnionParam, error) {
	out := make([]sdk.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		if def.Slug == "" {
			return nil, fmt.Errorf("tool definition missing slug")
		}
		u := sdk.ToolUnionParamOfTool(sdk.ToolInputSchemaParam{
			ExtraFields: def.InputSchema,
		}, def.Slug)
		if u.OfTool != nil && def.Description != "" {
			u.OfTool.Description = sdk.String(def.Description)
		}
		out = append(out, u)
	}
	return out, nil
}

// HandleToolUse executes one tool_use block for userID and returns the
// tool_result block to append to the conversation. Execution failures are
// reported to the model as an error result, not raised.
func (p *Provider) HandleToolUse(ctx context.Context, userID string, block sdk.ToolUseBlock) (sdk.ContentBlockParamUnion, error) {
	args, err := provider.DecodeArguments(block.Input)
	if err != nil {
		return sdk.ContentBlockParamUnion{}, err
	}

	res, err := p.execute(ctx, block.Name, tool.ExecuteRequest{
		UserID:    userID,
		Arguments: args,
	})
	if err != nil {
		return sdk.NewToolResultBlock(block.ID, err.Error(), true), nil
	}

	content, err := provider.RenderResult(res)
	if err != nil {
		return sdk.ContentBlockParamUnion{}, err
	}
	return sdk.NewToolResultBlock(block.ID, content, !res.Successful), nil
}

// HandleMessage executes every tool_use block in an assistant message and
// returns the user-turn content blocks answering them, in order.
func (p *Provider) HandleMessage(ctx context.Context, userID string, msg *sdk.Message) ([]sdk.ContentBlockParamUnion, error) {
	var out []sdk.ContentBlockParamUnion
	for _, block := range msg.Content {
		toolUse, ok := block.AsAny().(sdk.ToolUseBlock)
		if !ok {
			continue
		}
		result, err := p.HandleToolUse(ctx, userID, toolUse)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}
