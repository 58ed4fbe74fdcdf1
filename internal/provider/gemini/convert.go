package gemini

import (
	"encoding/json"
	"errors"
	"net/http"

	"google.golang.org/genai"

	"github.com/Cyclone1070/kestrel/internal/provider"
	"github.com/Cyclone1070/kestrel/internal/tool"
)

// toGeminiContents converts the conversation to Gemini Content format.
// Tool results are sent back as function responses in user turns.
func toGeminiContents(messages []provider.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		if content := messageToGeminiContent(msg); content != nil {
			contents = append(contents, content)
		}
	}
	return contents
}

func messageToGeminiContent(msg provider.Message) *genai.Content {
	role := "user"
	if msg.Role == provider.RoleAssistant {
		role = "model"
	}

	parts := make([]*genai.Part, 0, len(msg.Parts))
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case provider.TextPart:
			if p.Text != "" {
				parts = append(parts, genai.NewPartFromText(p.Text))
			}
		case provider.ToolCallPart:
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   p.ID,
					Name: p.ToolName,
					Args: decodeArgs(p.Arguments),
				},
			})
		case provider.ToolResultPart:
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       p.CallID,
					Name:     p.ToolName,
					Response: toFunctionResponse(p.Result),
				},
			})
		}
	}

	// Skip empty messages
	if len(parts) == 0 {
		return nil
	}
	return &genai.Content{Role: role, Parts: parts}
}

func decodeArgs(raw json.RawMessage) map[string]any {
	args := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &args)
	}
	return args
}

// toFunctionResponse uses the "output" and "error" keys Gemini expects.
func toFunctionResponse(result tool.Result) map[string]any {
	if !result.Success {
		return map[string]any{"error": result.Error}
	}
	return map[string]any{"output": result.Payload}
}

// toGeminiConfig builds the request config.
func toGeminiConfig(system string, maxTokens int, decls []tool.Declaration) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SafetySettings:  defaultSafetySettings(),
		MaxOutputTokens: int32(maxTokens),
		Tools:           toGeminiTools(decls),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return config
}

// defaultSafetySettings returns safety settings with BLOCK_NONE for all categories.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdOff,
		},
	}
}

// toGeminiTools converts tool declarations to Gemini tools.
func toGeminiTools(decls []tool.Declaration) []*genai.Tool {
	if len(decls) == 0 {
		return nil
	}

	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, decl := range decls {
		fd := &genai.FunctionDeclaration{
			Name:        decl.Name,
			Description: decl.Description,
		}
		if decl.Parameters != nil {
			fd.Parameters = toGeminiSchema(decl.Parameters)
		}
		functionDeclarations = append(functionDeclarations, fd)
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGeminiSchema converts a tool schema to a Gemini schema, recursing into
// array items and object properties.
func toGeminiSchema(s *tool.Schema) *genai.Schema {
	schema := &genai.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
	}
	if len(s.Enum) > 0 {
		schema.Enum = s.Enum
	}
	if s.Items != nil {
		schema.Items = toGeminiSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			schema.Properties[name] = toGeminiSchema(prop)
		}
	}
	if len(s.Required) > 0 {
		schema.Required = s.Required
	}
	return schema
}

func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return fromAPIError(*apiErr, err)
	}
	var apiErrValue genai.APIError
	if errors.As(err, &apiErrValue) {
		return fromAPIError(apiErrValue, err)
	}

	// Generic network error
	return &provider.ProviderError{
		Code:       provider.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}

func fromAPIError(apiErr genai.APIError, err error) *provider.ProviderError {
	message := apiErr.Message
	if message == "" {
		message = http.StatusText(apiErr.Code)
	}
	return provider.FromStatus(apiErr.Code, message, err)
}
