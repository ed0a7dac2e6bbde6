package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/iwtcode/seraAdapter/models"
)

// DefaultTimeout ограничивает длительность одного обращения к модели.
const DefaultTimeout = 90 * time.Second

// Agent запрашивает у LLM-советника рекомендации по управлению теплицей.
type Agent struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *logrus.Logger
}

// New создает советника для указанной модели. Пустой baseURL оставляет
// стандартную конечную точку OpenAI, иначе используется совместимый сервис.
func New(model, apiKey, baseURL string, timeout time.Duration, logger *logrus.Logger) *Agent {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger.Infof("AI agent initialized with model %s", model)

	return &Agent{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Analyze отправляет снимок датчиков советнику и разбирает структурированный
// ответ. Любая ошибка транспорта или разбора возвращается вызывающей стороне;
// деградацию рекомендации выполняет цикл управления.
func (a *Agent) Analyze(snapshot models.SensorSnapshot, timeContext string) (models.Recommendation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(snapshot, timeContext)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Recommendation{}, errors.New("empty response from model")
	}

	content := resp.Choices[0].Message.Content

	var rec models.Recommendation
	if err := json.Unmarshal([]byte(content), &rec); err != nil {
		return models.Recommendation{}, fmt.Errorf("failed to parse model response: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"alerts":   len(rec.Alerts),
		"commands": len(rec.Commands),
	}).Debug("Recommendation received")

	return rec, nil
}
