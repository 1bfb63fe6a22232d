// Package ai drafts marketing copy, workout plans and lead replies with an OpenAI chat model.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"fitstudio/internal/domain/workout"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

// Errors
var (
	ErrNotConfigured = errors.New("AI drafting is not configured")
	ErrEmptyResponse = errors.New("model returned no content")
)

const systemPrompt = "You are the marketing and programming assistant for a small personal-training studio. " +
	"Write in a warm, direct voice. Never invent prices, medical claims or guarantees."

// Client wraps the OpenAI chat API.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a Client. An empty apiKey yields a disabled client.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	if apiKey == "" {
		return &Client{model: model}
	}
	return &Client{client: openai.NewClient(apiKey), model: model}
}

// NewClientWithConfig creates a Client from an explicit go-openai config.
func NewClientWithConfig(cfg openai.ClientConfig, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: openai.NewClientWithConfig(cfg), model: model}
}

// Enabled reports whether an API key was supplied.
func (c *Client) Enabled() bool {
	return c.client != nil
}

// CaptionRequest describes a social media post.
type CaptionRequest struct {
	Topic    string
	Platform string // instagram, facebook, ...
	Tone     string
}

// DraftCaption writes a short social caption with hashtags.
// PRE: req.Topic is non-empty
func (c *Client) DraftCaption(ctx context.Context, req CaptionRequest) (string, error) {
	platform := req.Platform
	if platform == "" {
		platform = "instagram"
	}
	tone := req.Tone
	if tone == "" {
		tone = "motivating"
	}
	prompt := fmt.Sprintf(
		"Write one %s caption for the studio about: %s\nTone: %s\n"+
			"Keep it under 80 words, end with 3 to 5 relevant hashtags, no emojis at the start.",
		platform, req.Topic, tone)
	return c.complete(ctx, prompt, 0.8, 400, false)
}

// LeadReplyRequest carries what the studio knows about an enquiry.
type LeadReplyRequest struct {
	Name    string
	Goal    string
	Message string
	Source  string
}

// DraftLeadReply writes a first-contact reply to a new lead.
func (c *Client) DraftLeadReply(ctx context.Context, req LeadReplyRequest) (string, error) {
	prompt := fmt.Sprintf(
		"Draft a short reply email (plain text, under 150 words) to a new enquiry.\n"+
			"Name: %s\nGoal: %s\nTheir message: %s\nThey found us via: %s\n"+
			"Invite them to book a free consultation. Sign off as \"The Studio Team\".",
		req.Name, orDash(req.Goal), orDash(req.Message), orDash(req.Source))
	return c.complete(ctx, prompt, 0.6, 500, false)
}

// WorkoutRequest describes the plan a trainer wants drafted.
type WorkoutRequest struct {
	Goal        string
	Level       string
	DaysPerWeek int
	Equipment   string
	Notes       string
}

// DraftWorkoutPlan asks the model for a structured plan.
// POST: Returned plan has no IDs; callers validate it before saving
func (c *Client) DraftWorkoutPlan(ctx context.Context, req WorkoutRequest) (workout.Plan, error) {
	days := req.DaysPerWeek
	if days <= 0 || days > 7 {
		days = 3
	}
	level := req.Level
	if level == "" {
		level = workout.LevelBeginner
	}
	prompt := fmt.Sprintf(
		"Create a %d-day weekly workout plan.\nGoal: %s\nLevel: %s\nEquipment: %s\nNotes: %s\n"+
			"Respond with JSON only, shaped as "+
			`{"name":"","description":"","level":"beginner|intermediate|advanced","days":[{"day_number":1,"title":"",`+
			`"exercises":[{"name":"","sets":3,"reps":"8-12","rest_seconds":60,"notes":""}]}]}`,
		days, orDash(req.Goal), level, orDash(req.Equipment), orDash(req.Notes))

	content, err := c.complete(ctx, prompt, 0.4, 1800, true)
	if err != nil {
		return workout.Plan{}, err
	}
	return ParseWorkoutPlan(content)
}

func (c *Client) complete(ctx context.Context, prompt string, temperature float32, maxTokens int, jsonMode bool) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("ai_completion_failed", "model", c.model, "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	slog.Info("ai_completion", "model", c.model, "total_tokens", resp.Usage.TotalTokens)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type planJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Days        []struct {
		DayNumber int    `json:"day_number"`
		Title     string `json:"title"`
		Exercises []struct {
			Name        string          `json:"name"`
			Sets        int             `json:"sets"`
			Reps        json.RawMessage `json:"reps"`
			RestSeconds int             `json:"rest_seconds"`
			Notes       string          `json:"notes"`
		} `json:"exercises"`
	} `json:"days"`
}

// ParseWorkoutPlan decodes a model response into a plan. Markdown code fences are tolerated
// and numeric reps are accepted alongside strings.
func ParseWorkoutPlan(content string) (workout.Plan, error) {
	var raw planJSON
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &raw); err != nil {
		return workout.Plan{}, fmt.Errorf("parse workout plan: %w", err)
	}

	p := workout.Plan{Name: raw.Name, Description: raw.Description, Level: strings.ToLower(raw.Level)}
	for i, d := range raw.Days {
		day := workout.Day{DayNumber: d.DayNumber, Title: d.Title}
		if day.DayNumber <= 0 {
			day.DayNumber = i + 1
		}
		for j, e := range d.Exercises {
			day.Exercises = append(day.Exercises, workout.Exercise{
				Name:        e.Name,
				Sets:        e.Sets,
				Reps:        repsString(e.Reps),
				RestSeconds: e.RestSeconds,
				Notes:       e.Notes,
				Position:    j + 1,
			})
		}
		p.Days = append(p.Days, day)
	}
	return p, nil
}

// StripCodeFence removes a surrounding ``` or ```json fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func repsString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
