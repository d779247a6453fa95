package services

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/esaha/esaha-backend/internal/types"
)

func entry(mood string, score float64, factors ...string) *types.MoodEntry {
	return &types.MoodEntry{
		Mood:      mood,
		MoodScore: score,
		Factors:   datatypes.JSONSlice[string](factors),
	}
}

func TestComputeMoodInsights_EmptyEntries(t *testing.T) {
	insights := ComputeMoodInsights(nil)
	if insights.AverageMoodScore != 0 {
		t.Fatalf("expected zero average, got %v", insights.AverageMoodScore)
	}
	if len(insights.Recommendations) != 1 || insights.Recommendations[0] != "Start tracking your mood to see insights." {
		t.Fatalf("unexpected recommendations: %v", insights.Recommendations)
	}
	if len(insights.MoodDistribution) != 0 || len(insights.TopFactors) != 0 {
		t.Fatalf("expected empty aggregates")
	}
}

func TestComputeMoodInsights_AveragesAndDistribution(t *testing.T) {
	entries := []*types.MoodEntry{
		entry("happy", 3, "exercise"),
		entry("happy", 4, "exercise"),
		entry("sad", -2, "work"),
	}
	insights := ComputeMoodInsights(entries)
	if insights.AverageMoodScore != 1.67 {
		t.Fatalf("expected average 1.67, got %v", insights.AverageMoodScore)
	}
	if insights.MoodDistribution["happy"] != 2 || insights.MoodDistribution["sad"] != 1 {
		t.Fatalf("unexpected distribution: %v", insights.MoodDistribution)
	}
	if insights.TopFactors[0].Factor != "exercise" || insights.TopFactors[0].Count != 2 {
		t.Fatalf("unexpected top factors: %v", insights.TopFactors)
	}
}

func TestComputeMoodInsights_FactorAnalysisNeedsThreeOccurrences(t *testing.T) {
	entries := []*types.MoodEntry{
		entry("happy", 3, "exercise"),
		entry("happy", 4, "exercise"),
		entry("happy", 2, "exercise"),
		entry("sad", -2, "work"),
		entry("sad", -3, "work"),
	}
	insights := ComputeMoodInsights(entries)
	if len(insights.FactorAnalysis.Positive) != 1 || insights.FactorAnalysis.Positive[0].Factor != "exercise" {
		t.Fatalf("expected exercise as positive factor, got %v", insights.FactorAnalysis.Positive)
	}
	// work only appears twice, below the association threshold
	if len(insights.FactorAnalysis.Negative) != 0 {
		t.Fatalf("expected no negative factors, got %v", insights.FactorAnalysis.Negative)
	}
	if insights.FactorAnalysis.Positive[0].Score != 3 {
		t.Fatalf("expected averaged score 3, got %v", insights.FactorAnalysis.Positive[0].Score)
	}
	if insights.Recommendations[0] != "Try to increase exercise in your routine, as it's associated with your improved mood." {
		t.Fatalf("unexpected recommendation: %q", insights.Recommendations[0])
	}
}

func TestComputeMoodInsights_TrendDetection(t *testing.T) {
	improving := []*types.MoodEntry{
		entry("sad", -2), entry("sad", -2), entry("sad", -2),
		entry("happy", 2), entry("happy", 2), entry("happy", 2), entry("happy", 2),
	}
	insights := ComputeMoodInsights(improving)
	found := false
	for _, rec := range insights.Recommendations {
		if rec == "Your mood has been improving recently. Keep up the positive momentum!" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected improving-trend recommendation, got %v", insights.Recommendations)
	}

	declining := []*types.MoodEntry{
		entry("happy", 2), entry("happy", 2), entry("happy", 2),
		entry("sad", -2), entry("sad", -2), entry("sad", -2), entry("sad", -2),
	}
	insights = ComputeMoodInsights(declining)
	found = false
	for _, rec := range insights.Recommendations {
		if rec == "Your mood has declined slightly. Consider what factors might be contributing." {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected declining-trend recommendation, got %v", insights.Recommendations)
	}
}

func TestExtractEmotionalTriggers_SkipsNeutralAndShortWords(t *testing.T) {
	messages := []string{
		"work deadline stress again",
		"work deadline looming",
		"a calm day",
	}
	scores := []float64{-3, -4, 0.5}

	triggers := ExtractEmotionalTriggers(messages, scores)

	byWord := map[string]EmotionalTrigger{}
	for _, tr := range triggers {
		byWord[tr.Trigger] = tr
	}
	deadline, ok := byWord["deadline"]
	if !ok {
		t.Fatalf("expected deadline trigger, got %v", triggers)
	}
	if deadline.Frequency != 2 {
		t.Fatalf("expected frequency 2, got %d", deadline.Frequency)
	}
	if deadline.Impact != -3.5 {
		t.Fatalf("expected impact -3.5, got %v", deadline.Impact)
	}
	// "calm" only appears in a neutral-scored message
	if _, ok := byWord["calm"]; ok {
		t.Fatalf("neutral messages must not contribute triggers")
	}
	// "stress" appears once, below the mention threshold
	if _, ok := byWord["stress"]; ok {
		t.Fatalf("single mentions must not become triggers")
	}
}

func TestExtractEmotionalTriggers_StopWordsExcluded(t *testing.T) {
	messages := []string{"about this with that", "about this with that"}
	scores := []float64{-4, -4}
	triggers := ExtractEmotionalTriggers(messages, scores)
	if len(triggers) != 0 {
		t.Fatalf("expected stop words filtered out, got %v", triggers)
	}
}
