package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/interrogation"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/sashabaranov/go-openai"
	"log/slog"
	"strings"
)

var (
	ErrEmptyResponse       = errors.NewSentinel("completion has no choices")
	ErrUnparseableResponse = errors.NewSentinel("completion could not be parsed")
)

// MaxTokens caps every completion.
const MaxTokens = 1024

// Client voices the suspects with the OpenAI chat completion API. It implements [interrogation.Dialogue].
type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a client for the official API.
func NewClient(apiKey, model string, logger *slog.Logger) *Client {
	return NewClientWithConfig(openai.DefaultConfig(apiKey), model, logger)
}

// NewClientWithConfig creates a client for any OpenAI compatible endpoint.
func NewClientWithConfig(config openai.ClientConfig, model string, logger *slog.Logger) *Client {
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.With("source", "ai.Client"),
	}
}

// SyncCompletion returns the content of the first choice. jsonMode asks the model for a JSON object.
func (c *Client) SyncCompletion(
	ctx context.Context,
	messages []openai.ChatCompletionMessage,
	jsonMode bool,
) (string, error) {
	req := openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
		Model:     c.model,
		MaxTokens: MaxTokens,
		Messages:  messages,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	completion, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion", slog.String("model", c.model))
	}
	if len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrEmptyResponse, "read completion", slog.String("id", completion.ID))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "completion finished",
		slog.Int("prompt_tokens", completion.Usage.PromptTokens),
		slog.Int("completion_tokens", completion.Usage.CompletionTokens))
	return completion.Choices[0].Message.Content, nil
}

// Respond continues a suspect's conversation.
func (c *Client) Respond(ctx context.Context, messages []models.Message) (string, error) {
	chat := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chat = append(chat, openai.ChatCompletionMessage{Role: toOpenAIRole(m.Role), Content: m.Content})
	}
	answer, err := c.SyncCompletion(ctx, chat, false)
	if err != nil {
		return "", errors.Wrap(err, "respond")
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errors.Wrap(ErrUnparseableResponse, "empty answer")
	}
	return answer, nil
}

const classifyPrompt = `You compare a suspect's reply with the facts the suspect knows.
Answer with a JSON object {"alibi": boolean, "observations": [integer]}.
"alibi" is true if the reply states where the suspect was. "observations" lists the indices of the known
sightings the reply mentions.`

type classifyInput struct {
	Alibi        string   `json:"alibi"`
	Observations []string `json:"observations"`
	Reply        string   `json:"reply"`
}

// Classify asks the model which ground-truth facts a reply discloses.
func (c *Client) Classify(
	ctx context.Context,
	req interrogation.ClassifyRequest,
) (interrogation.Classification, error) {
	input := classifyInput{
		Alibi: fmt.Sprintf("in the %s from %s", req.Suspect.Alibi.Room.Name, req.Suspect.Alibi.Window),
		Reply: req.Reply,
	}
	for _, o := range req.Suspect.Observations {
		input.Observations = append(input.Observations,
			fmt.Sprintf("saw %s in the %s around %s", o.Person, o.Room.Name, o.Window.Start))
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return interrogation.Classification{}, errors.Wrap(err, "marshal classify input")
	}
	content, err := c.SyncCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: classifyPrompt},
		{Role: openai.ChatMessageRoleUser, Content: string(payload)},
	}, true)
	if err != nil {
		return interrogation.Classification{}, errors.Wrap(err, "classify")
	}
	var classification interrogation.Classification
	if err = json.Unmarshal([]byte(content), &classification); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "unparseable classification", slog.String("content", content))
		return interrogation.Classification{}, errors.Join(ErrUnparseableResponse, errors.Wrap(err, "decode"))
	}
	return classification, nil
}

// Narrate writes the case introduction or the closing summary.
func (c *Client) Narrate(ctx context.Context, req interrogation.NarrativeRequest) (string, error) {
	sc := req.Scenario
	v := sc.Victim
	var names []string
	for _, id := range sc.Order {
		names = append(names, fmt.Sprintf("%s the %s", sc.Suspects[id].Name, sc.Suspects[id].Profession))
	}
	var prompt string
	switch req.Kind {
	case interrogation.NarrativeIntro:
		prompt = fmt.Sprintf("Write a short, atmospheric introduction to a murder mystery. The %s was found dead "+
			"in the %s, killed by %s around %s. The suspects are %s. Do not reveal the killer.",
			v.Profession, v.Room.Name, v.DeathMethod, v.TimeOfDeath, strings.Join(names, ", "))
	case interrogation.NarrativeSummary:
		culprit := sc.Suspects[sc.Culprit]
		verdict := "wrongly accused"
		if req.Solved {
			verdict = "correctly accused"
		}
		prompt = fmt.Sprintf("Write a short epilogue to a murder mystery. The detective %s %s. The real killer was "+
			"%s the %s, who killed the %s with %s in the %s out of %s, and claimed to be in the %s.",
			verdict, sc.Suspects[req.Accused].Name, culprit.Name, culprit.Profession, v.Profession, v.DeathMethod,
			v.Room.Name, v.Motive, culprit.Alibi.Room.Name)
	default:
		return "", errors.New("unknown narrative kind", slog.String("kind", string(req.Kind)))
	}
	text, err := c.SyncCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}, false)
	if err != nil {
		return "", errors.Wrap(err, "narrate", slog.String("kind", string(req.Kind)))
	}
	return strings.TrimSpace(text), nil
}

func toOpenAIRole(role models.Role) string {
	switch role {
	case models.RoleSystem:
		return openai.ChatMessageRoleSystem
	case models.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case models.RoleUser:
		return openai.ChatMessageRoleUser
	default:
		return openai.ChatMessageRoleUser
	}
}
