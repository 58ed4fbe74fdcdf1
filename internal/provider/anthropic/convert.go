package anthropic

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/Cyclone1070/kestrel/internal/provider"
	"github.com/Cyclone1070/kestrel/internal/tool"
)

// toMessageParams converts the conversation to API messages. Tool results
// travel in user messages as tool_result blocks.
func toMessageParams(messages []provider.Message) []anthropic.MessageParam {
	params := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		var blocks []anthropic.ContentBlockParamUnion
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case provider.TextPart:
				if p.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(p.Text))
				}
			case provider.ToolCallPart:
				blocks = append(blocks, anthropic.NewToolUseBlock(p.ID, sendableArguments(p.Arguments), p.ToolName))
			case provider.ToolResultPart:
				blocks = append(blocks, anthropic.NewToolResultBlock(p.CallID, p.Result.LLMContent(), !p.Result.Success))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		if msg.Role == provider.RoleAssistant {
			params = append(params, anthropic.NewAssistantMessage(blocks...))
		} else {
			params = append(params, anthropic.NewUserMessage(blocks...))
		}
	}
	return params
}

func rawArguments(args json.RawMessage) json.RawMessage {
	if len(args) == 0 {
		return json.RawMessage("{}")
	}
	return args
}

// sendableArguments replaces input the model cut off mid-stream with an empty
// object. The call keeps its raw input, so the dispatcher still reports the
// malformed arguments in the tool result.
func sendableArguments(args json.RawMessage) json.RawMessage {
	if !json.Valid(args) {
		return json.RawMessage("{}")
	}
	return args
}

// toToolParams converts tool declarations to API tool definitions.
func toToolParams(decls []tool.Declaration) []anthropic.ToolUnionParam {
	if len(decls) == 0 {
		return nil
	}
	tools := make([]anthropic.ToolUnionParam, 0, len(decls))
	for _, decl := range decls {
		schema := anthropic.ToolInputSchemaParam{}
		if decl.Parameters != nil {
			properties := decl.Parameters.Properties
			if properties == nil {
				properties = map[string]*tool.Schema{}
			}
			schema.Properties = properties
			if len(decl.Parameters.Required) > 0 {
				schema.ExtraFields = map[string]any{
					"required": decl.Parameters.Required,
				}
			}
		}
		param := anthropic.ToolUnionParamOfTool(schema, decl.Name)
		param.OfTool.Description = anthropic.String(decl.Description)
		tools = append(tools, param)
	}
	return tools
}
