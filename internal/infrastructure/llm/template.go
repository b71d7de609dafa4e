package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/productcat/backend/internal/domain"
	"github.com/productcat/backend/internal/infrastructure/prompt"
)

const jsonResponseTemplateName = "json_response"

// jsonResponseTemplate instructs the model to reply with JSON only
const jsonResponseTemplate = `You are a helpful AI assistant that always responds in valid JSON format.

Your task is to respond to the following prompt and structure your response according to the exact JSON schema provided.

Prompt: {prompt}

You must format your entire response as a valid JSON object following this exact schema:
{json_structure}

Important:
1. Ensure your response is valid JSON
2. Start with a {{ (opening curly brace)
3. End with a }} (closing curly brace)
4. Use double quotes for strings
5. Follow the schema exactly

Response:`

// WrapPrompt embeds prompt and the pretty-printed structure in the JSON-only instruction.
func WrapPrompt(userPrompt string, structure domain.JSONStructure) (string, error) {
	encoded, err := json.MarshalIndent(structure, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode response structure: %w", err)
	}

	return prompt.Format(jsonResponseTemplateName, jsonResponseTemplate, map[string]string{
		"prompt":         userPrompt,
		"json_structure": string(encoded),
	})
}

// StripCodeFence removes a leading ```json or ``` marker and a trailing ```
// marker, then trims surrounding whitespace.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text)
}
