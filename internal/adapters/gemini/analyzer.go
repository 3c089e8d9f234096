package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/utils"
)

// GeminiAnalyzer is an implementation of the ScamAnalyzer interface using Google Gemini
type GeminiAnalyzer struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
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

// NewGeminiAnalyzer creates a new Gemini analyzer
func NewGeminiAnalyzer(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiAnalyzer{
		client:        client,
		model:         model,
		modelName:     modelName,
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
	}, nil
}

// Close closes the Gemini client
func (c *GeminiAnalyzer) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// AnalyzeText analyzes a message text for scam signals
func (c *GeminiAnalyzer) AnalyzeText(ctx context.Context, req *core.AnalysisRequest) (*core.AnalysisResult, error) {
	processedText := c.textProcessor.ProcessText(req.Text, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, req.ContextWhoFor, req.FromKnownContact, processedText)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	var analysisResponse scamAnalysisResponse
	if err := json.Unmarshal([]byte(responseText), &analysisResponse); err != nil {
		// Try to extract JSON from the text response
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

		if jsonStart < jsonEnd {
			jsonStr := responseText[jsonStart:jsonEnd]
			if err := json.Unmarshal([]byte(jsonStr), &analysisResponse); err != nil {
				return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
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
