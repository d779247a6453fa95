package services

import (
	"context"
	"errors"
	"testing"
)

func TestParseSentiment_FencedJSON(t *testing.T) {
	raw := "```json\n{\"score\": 2.5, \"mood\": \"happy\", \"factors\": [\"exercise\", \"sleep\"]}\n```"
	s := parseSentiment(nil, raw)
	if s.Score != 2.5 || s.Mood != "happy" {
		t.Fatalf("unexpected sentiment: %+v", s)
	}
	if len(s.Factors) != 2 || s.Factors[0] != "exercise" {
		t.Fatalf("unexpected factors: %v", s.Factors)
	}
}

func TestParseSentiment_ClampsScore(t *testing.T) {
	s := parseSentiment(nil, `{"score": 12, "mood": "happy", "factors": []}`)
	if s.Score != 5 {
		t.Fatalf("expected score clamped to 5, got %v", s.Score)
	}
	s = parseSentiment(nil, `{"score": -9, "mood": "sad", "factors": []}`)
	if s.Score != -5 {
		t.Fatalf("expected score clamped to -5, got %v", s.Score)
	}
}

func TestParseSentiment_InvalidMoodCoercedToNeutral(t *testing.T) {
	s := parseSentiment(nil, `{"score": 1, "mood": "euphoric", "factors": []}`)
	if s.Mood != "neutral" {
		t.Fatalf("expected neutral, got %q", s.Mood)
	}
}

func TestParseSentiment_CapsFactorsAtThree(t *testing.T) {
	s := parseSentiment(nil, `{"score": 1, "mood": "happy", "factors": ["a", "b", "c", "d"]}`)
	if len(s.Factors) != 3 {
		t.Fatalf("expected 3 factors, got %d", len(s.Factors))
	}
}

func TestParseSentiment_GarbageDefaultsToNeutral(t *testing.T) {
	s := parseSentiment(testLogger(), "I feel like the user is doing okay today.")
	if s.Score != 0 || s.Mood != "neutral" || len(s.Factors) != 0 {
		t.Fatalf("expected neutral default, got %+v", s)
	}
}

func TestAnalyze_ModelFailureDefaultsToNeutral(t *testing.T) {
	ai := &fakeAIClient{err: errors.New("upstream down")}
	sa := NewSentimentAnalyzer(testLogger(), ai)
	s := sa.Analyze(context.Background(), "rough day at work")
	if s.Score != 0 || s.Mood != "neutral" {
		t.Fatalf("expected neutral default, got %+v", s)
	}
}

func TestAnalyze_EmptyMessageSkipsModel(t *testing.T) {
	ai := &fakeAIClient{response: `{"score": 3, "mood": "happy", "factors": []}`}
	sa := NewSentimentAnalyzer(testLogger(), ai)
	s := sa.Analyze(context.Background(), "   ")
	if ai.calls != 0 {
		t.Fatalf("expected no model call for empty message")
	}
	if s.Mood != "neutral" {
		t.Fatalf("expected neutral, got %+v", s)
	}
}
