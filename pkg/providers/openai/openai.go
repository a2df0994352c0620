// Package openai adapts resolved tools to the OpenAI Chat Completions API.
package openai

import (
	"context"
	"fmt"

	sdk "github.com/openai/openai-go"

	"github.com/composiohq/composio-go/pkg/provider"
	"github.com/composiohq/composio-go/pkg/tool"
)

// Provider converts tool definitions to chat-completion tool params and
// executes tool calls from assistant turns.
type Provider struct {
	execute provider.ExecuteFunc
}

// New creates the adapter around an execution dispatch function.
func New(execute provider.ExecuteFunc) *Provider {
	return &Provider{execute: execute}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "openai" }

// WrapTools renders definitions as chat-completion function tools. Tool
// slugs become the wire function names unchanged.
func (p *Provider) WrapTools(defs []tool.Tool) ([]sdk.ChatCompletionToolParam, error) {
	out := make([]sdk.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		if def.Slug == "" {
			return nil, fmt.Errorf("tool definition missing slug")
		}
		fn := sdk.FunctionDefinitionParam{
			Name:       def.Slug,
			Parameters: sdk.FunctionParameters(def.InputSchema),
		}
		if def.Description != "" {
			fn.Description = sdk.String(def.Description)
		}
		out = append(out, sdk.ChatCompletionToolParam{Function: fn})
	}
	return out, nil
}

// HandleToolCall executes one tool call for userID and returns the tool
// message answering it. Execution failures are reported to the model as an
// error payload, not raised.
func (p *Provider) HandleToolCall(ctx context.Context, userID string, call sdk.ChatCompletionMessageToolCall) (sdk.ChatCompletionMessageParamUnion, error) {
	args, err := provider.DecodeArguments([]byte(call.Function.Arguments))
	if err != nil {
		return sdk.ChatCompletionMessageParamUnion{}, err
	}

	res, err := p.execute(ctx, call.Function.Name, tool.ExecuteRequest{
		UserID:    userID,
		Arguments: args,
	})
	if err != nil {
		return sdk.ToolMessage(err.Error(), call.ID), nil
	}

	content, err := provider.RenderResult(res)
	if err != nil {
		return sdk.ChatCompletionMessageParamUnion{}, err
	}
	return sdk.ToolMessage(content, call.ID), nil
}

// HandleCompletion executes every tool call in the first choice of a chat
// completion and returns the tool messages answering them, in order.
func (p *Provider) HandleCompletion(ctx context.Context, userID string, completion *sdk.ChatCompletion) ([]sdk.ChatCompletionMessageParamUnion, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return nil, nil
	}
	var out []sdk.ChatCompletionMessageParamUnion
	for _, call := range completion.Choices[0].Message.ToolCalls {
		msg, err := p.HandleToolCall(ctx, userID, call)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}
