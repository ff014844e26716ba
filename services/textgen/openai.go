package textgensvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/techproject/core"
)

type OpenAIService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

var _ core.TextGenerator = (*OpenAIService)(nil)

func NewOpenAIService(conf *core.Config) *OpenAIService {
	return &OpenAIService{
		baseURL: conf.AI.BaseURL,
		apiKey:  conf.AI.ApiKey,
		model:   conf.AI.Model,
		client:  &http.Client{Timeout: conf.AI.Timeout},
	}
}

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model    string        `json:"model"`
		Messages []chatMessage `json:"messages"`
		// opaque caller identifiers forwarded for provider-side audit trails
		User string `json:"user,omitempty"`
	}

	chatResponse struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}

	chatError struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}
)

// GenerateText calls the chat completions endpoint with a single user message.
// Transport failures surface as errors; provider-side rejections come back as
// an unsuccessful TextResult carrying the provider's message.
func (svc *OpenAIService) GenerateText(ctx context.Context, prompt string, contextID, userID int) (core.TextResult, error) {
	if svc.apiKey == "" {
		return core.TextResult{}, errors.New("AI API key not set")
	}

	body, err := json.Marshal(chatRequest{
		Model:    svc.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		User:     fmt.Sprintf("ctx-%d-user-%d", contextID, userID),
	})
	if err != nil {
		return core.TextResult{}, errors.Wrap(err, "marshalling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return core.TextResult{}, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Authorization", "Bearer "+svc.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := svc.client.Do(req)
	if err != nil {
		return core.TextResult{}, errors.Wrap(err, "calling AI provider")
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return core.TextResult{}, errors.Wrap(err, "reading response body")
	}

	if res.StatusCode != http.StatusOK {
		msg := string(resBody)
		var cerr chatError
		if json.Unmarshal(resBody, &cerr) == nil && cerr.Error.Message != "" {
			msg = cerr.Error.Message
		}
		return core.TextResult{
			Success:      false,
			ErrorMessage: fmt.Sprintf("provider error (%d): %s", res.StatusCode, msg),
		}, nil
	}

	var cres chatResponse
	if err := json.Unmarshal(resBody, &cres); err != nil {
		return core.TextResult{}, errors.Wrap(err, "decoding response")
	}
	if len(cres.Choices) == 0 {
		return core.TextResult{Success: false, ErrorMessage: "provider returned no choices"}, nil
	}
	return core.TextResult{Success: true, Text: cres.Choices[0].Message.Content}, nil
}
