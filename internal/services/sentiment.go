package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/esaha/esaha-backend/internal/clients/openai"
	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/types"
)

const sentimentSystemPrompt = `You are a sentiment analysis tool for a mental health app.
Analyze the emotional content of the user's message and respond with ONLY a JSON object:
{"score": <number from -5 to 5>, "mood": <one of "very_happy","happy","neutral","sad","very_sad","anxious","angry">, "factors": [<up to 3 short lowercase strings naming what drives the mood>]}
Do not include any other text.`

// SentimentAnalyzer rates a user message for mood tracking. Analysis is
// best-effort: any model or parse failure yields the neutral default rather
// than an error, so chat never blocks on it.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, message string) types.Sentiment
}

type sentimentAnalyzer struct {
	log *logger.Logger
	ai  openai.Client
}

func NewSentimentAnalyzer(log *logger.Logger, ai openai.Client) SentimentAnalyzer {
	return &sentimentAnalyzer{
		log: log.With("service", "SentimentAnalyzer"),
		ai:  ai,
	}
}

func neutralSentiment() types.Sentiment {
	return types.Sentiment{Score: 0, Mood: "neutral", Factors: []string{}}
}

func (sa *sentimentAnalyzer) Analyze(ctx context.Context, message string) types.Sentiment {
	if sa.ai == nil || strings.TrimSpace(message) == "" {
		return neutralSentiment()
	}

	raw, err := sa.ai.Complete(ctx, []openai.Message{
		{Role: "system", Content: sentimentSystemPrompt},
		{Role: "user", Content: message},
	}, 150, 0.0)
	if err != nil {
		sa.log.Warn("Sentiment analysis failed, defaulting to neutral", "error", err)
		return neutralSentiment()
	}

	return parseSentiment(sa.log, raw)
}

func parseSentiment(log *logger.Logger, raw string) types.Sentiment {
	raw = strings.TrimSpace(raw)
	// Models sometimes fence the JSON despite instructions.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var parsed struct {
		Score   float64  `json:"score"`
		Mood    string   `json:"mood"`
		Factors []string `json:"factors"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		if log != nil {
			log.Warn("Sentiment response was not valid JSON, defaulting to neutral", "error", err)
		}
		return neutralSentiment()
	}

	out := types.Sentiment{
		Score:   types.ClampMoodScore(parsed.Score),
		Mood:    strings.ToLower(strings.TrimSpace(parsed.Mood)),
		Factors: []string{},
	}
	if !types.IsValidMood(out.Mood) {
		out.Mood = "neutral"
	}
	for _, f := range parsed.Factors {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		out.Factors = append(out.Factors, f)
		if len(out.Factors) == 3 {
			break
		}
	}
	return out
}
