package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/utils"
)

// Analyzer calls the native scam-analysis API. The model behind the
// endpoint is an external collaborator; this client only carries text
// to it and maps the response.
type Analyzer struct {
	httpClient    *http.Client
	endpoint      string
	maxBodySize   int
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

type analyzeRequest struct {
	Text             string `json:"text"`
	ContextWhoFor    string `json:"contextWhoFor"`
	FromKnownContact bool   `json:"fromKnownContact"`
}

type analyzeResponse struct {
	Verdict    string   `json:"verdict"`
	Confidence float64  `json:"confidence"`
	Summary    string   `json:"summary"`
	Tactics    []string `json:"tactics"`
	SafeSteps  []string `json:"safeSteps"`
}

// NewAnalyzer creates a new native API analyzer
func NewAnalyzer(
	endpoint string,
	timeout time.Duration,
	maxBodySize int,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
) *Analyzer {
	return &Analyzer{
		httpClient:    &http.Client{Timeout: timeout},
		endpoint:      endpoint,
		maxBodySize:   maxBodySize,
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// AnalyzeText sends the text for analysis and returns the assessment.
func (a *Analyzer) AnalyzeText(ctx context.Context, req *core.AnalysisRequest) (*core.AnalysisResult, error) {
	body, err := json.Marshal(analyzeRequest{
		Text:             a.textProcessor.ProcessText(req.Text, a.maxBodySize),
		ContextWhoFor:    req.ContextWhoFor,
		FromKnownContact: req.FromKnownContact,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call analysis API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("analysis API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var analysisResp analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&analysisResp); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}

	switch analysisResp.Verdict {
	case core.RemoteVerdictHighScam, core.RemoteVerdictSuspicious, core.RemoteVerdictNoObviousScam:
	default:
		return nil, fmt.Errorf("analysis API returned unknown verdict: %q", analysisResp.Verdict)
	}

	a.logger.Debug("Received analysis verdict",
		zap.String("verdict", analysisResp.Verdict),
		zap.Float64("confidence", analysisResp.Confidence))

	return &core.AnalysisResult{
		Verdict:    analysisResp.Verdict,
		Confidence: analysisResp.Confidence,
		Summary:    analysisResp.Summary,
		Tactics:    analysisResp.Tactics,
		SafeSteps:  analysisResp.SafeSteps,
		AnalyzedAt: time.Now(),
		ModelUsed:  "remote",
	}, nil
}
