package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/utils"
)

// OpenAIAnalyzer is an implementation of the ScamAnalyzer interface using OpenAI
type OpenAIAnalyzer struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	promptFormat  string
}

// scamAnalysisResponse represents the structured response from the LLM
type scamAnalysisResponse struct {
	Verdict    string   `json:"verdict"`
	Confidence float64  `json:"confidence"`
	Summary    string   `json:"summary"`
	Tactics    []string `json:"tactics"`
	SafeSteps  []string `json:"safe_steps"`
}

// NewOpenAIAnalyzer creates a new OpenAI analyzer
func NewOpenAIAnalyzer(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `You are a scam detection system. Analyze the following message someone received and determine if it is a scam.
Respond with a JSON object containing:
- verdict: one of "high_scam", "suspicious", "no_obvious_scam"
- confidence: number between 0 and 1 (how confident you are in your assessment)
- summary: string (brief plain-language explanation of the assessment)
- tactics: array of strings (manipulation tactics used, if any)
- safe_steps: array of strings (safe next steps for the recipient)

The message is being checked for: %s
The sender is a known contact: %t

Message:
%s

Respond only with the JSON object and nothing else.`,
	}
}

// AnalyzeText analyzes a message text for scam signals
func (c *OpenAIAnalyzer) AnalyzeText(ctx context.Context, req *core.AnalysisRequest) (*core.AnalysisResult, error) {
	processedText := c.textProcessor.ProcessText(req.Text, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, req.ContextWhoFor, req.FromKnownContact, processedText)

	chatReq := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a scam detection system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	responseFormat := openai.ChatCompletionResponseFormat{
		Type: "json",
	}
	chatReq.ResponseFormat = &responseFormat

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	analysisResponse, err := parseAnalysisResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &core.AnalysisResult{
		Verdict:    analysisResponse.Verdict,
		Confidence: analysisResponse.Confidence,
		Summary:    analysisResponse.Summary,
		Tactics:    analysisResponse.Tactics,
		SafeSteps:  analysisResponse.SafeSteps,
		AnalyzedAt: time.Now(),
		ModelUsed:  c.modelName,
	}, nil
}

// parseAnalysisResponse parses the LLM's JSON response, tolerating
// surrounding prose by extracting the outermost JSON object.
func parseAnalysisResponse(responseText string) (*scamAnalysisResponse, error) {
	var analysisResponse scamAnalysisResponse
	if err := json.Unmarshal([]byte(responseText), &analysisResponse); err != nil {
		jsonStart := 0
		jsonEnd := len(responseText)

		for i := 0; i < len(responseText); i++ {
			if responseText[i] == '{' {
				jsonStart = i
				break
			}
		}

		for i := len(responseText) - 1; i >= 0; i-- {
			if responseText[i] == '}' {
				jsonEnd = i + 1
				break
			}
		}

		if jsonStart >= jsonEnd {
			return nil, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
		jsonStr := responseText[jsonStart:jsonEnd]
		if err := json.Unmarshal([]byte(jsonStr), &analysisResponse); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}
	return &analysisResponse, nil
}
