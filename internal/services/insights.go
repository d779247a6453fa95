package services

import (
	"math"
	"sort"
	"strings"

	"github.com/esaha/esaha-backend/internal/types"
)

type FactorCount struct {
	Factor string `json:"factor"`
	Count  int    `json:"count"`
}

type FactorScore struct {
	Factor string  `json:"factor"`
	Score  float64 `json:"score"`
}

type FactorAnalysis struct {
	Positive []FactorScore `json:"positive"`
	Negative []FactorScore `json:"negative"`
}

type MoodInsights struct {
	AverageMoodScore float64        `json:"averageMoodScore"`
	MoodDistribution map[string]int `json:"moodDistribution"`
	TopFactors       []FactorCount  `json:"topFactors"`
	FactorAnalysis   FactorAnalysis `json:"factorAnalysis"`
	Recommendations  []string       `json:"recommendations"`
}

type EmotionalTrigger struct {
	Trigger   string  `json:"trigger"`
	Impact    float64 `json:"impact"`
	Frequency int     `json:"frequency"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeMoodInsights aggregates a date-ordered (oldest first) entry list
// into averages, distribution, factor analysis, and recommendations.
func ComputeMoodInsights(entries []*types.MoodEntry) MoodInsights {
	if len(entries) == 0 {
		return MoodInsights{
			AverageMoodScore: 0,
			MoodDistribution: map[string]int{},
			TopFactors:       []FactorCount{},
			FactorAnalysis:   FactorAnalysis{Positive: []FactorScore{}, Negative: []FactorScore{}},
			Recommendations:  []string{"Start tracking your mood to see insights."},
		}
	}

	var totalScore float64
	distribution := map[string]int{}
	factorCounts := map[string]int{}
	factorTotals := map[string]float64{}

	for _, entry := range entries {
		totalScore += entry.MoodScore
		distribution[entry.Mood]++
		for _, factor := range entry.Factors {
			factorCounts[factor]++
			factorTotals[factor] += entry.MoodScore
		}
	}
	avgScore := totalScore / float64(len(entries))

	topFactors := make([]FactorCount, 0, len(factorCounts))
	for factor, count := range factorCounts {
		topFactors = append(topFactors, FactorCount{Factor: factor, Count: count})
	}
	sort.SliceStable(topFactors, func(i, j int) bool {
		if topFactors[i].Count != topFactors[j].Count {
			return topFactors[i].Count > topFactors[j].Count
		}
		return topFactors[i].Factor < topFactors[j].Factor
	})
	if len(topFactors) > 10 {
		topFactors = topFactors[:10]
	}

	// Factors need at least 3 occurrences before they count as a mood
	// association.
	positive := []FactorScore{}
	negative := []FactorScore{}
	for factor, total := range factorTotals {
		if factorCounts[factor] < 3 {
			continue
		}
		avg := total / float64(factorCounts[factor])
		if avg > 0 {
			positive = append(positive, FactorScore{Factor: factor, Score: round2(avg)})
		} else if avg < 0 {
			negative = append(negative, FactorScore{Factor: factor, Score: round2(avg)})
		}
	}
	sort.SliceStable(positive, func(i, j int) bool {
		if positive[i].Score != positive[j].Score {
			return positive[i].Score > positive[j].Score
		}
		return positive[i].Factor < positive[j].Factor
	})
	sort.SliceStable(negative, func(i, j int) bool {
		if negative[i].Score != negative[j].Score {
			return negative[i].Score < negative[j].Score
		}
		return negative[i].Factor < negative[j].Factor
	})
	if len(positive) > 5 {
		positive = positive[:5]
	}
	if len(negative) > 5 {
		negative = negative[:5]
	}

	recommendations := []string{}
	if len(positive) > 0 {
		recommendations = append(recommendations,
			"Try to increase "+positive[0].Factor+" in your routine, as it's associated with your improved mood.")
	}
	if len(negative) > 0 {
		recommendations = append(recommendations,
			"Consider strategies to manage "+negative[0].Factor+", which appears to negatively affect your mood.")
	}
	recommendations = append(recommendations, "Continue tracking your mood regularly to get more accurate insights.")

	if len(entries) >= 7 {
		midpoint := len(entries) / 2
		earlier := entries[:midpoint]
		recent := entries[midpoint:]

		var earlierTotal, recentTotal float64
		for _, e := range earlier {
			earlierTotal += e.MoodScore
		}
		for _, e := range recent {
			recentTotal += e.MoodScore
		}
		earlierAvg := earlierTotal / float64(len(earlier))
		recentAvg := recentTotal / float64(len(recent))

		if recentAvg > earlierAvg+0.5 {
			recommendations = append(recommendations, "Your mood has been improving recently. Keep up the positive momentum!")
		} else if recentAvg < earlierAvg-0.5 {
			recommendations = append(recommendations, "Your mood has declined slightly. Consider what factors might be contributing.")
		}
	}

	return MoodInsights{
		AverageMoodScore: round2(avgScore),
		MoodDistribution: distribution,
		TopFactors:       topFactors,
		FactorAnalysis:   FactorAnalysis{Positive: positive, Negative: negative},
		Recommendations:  recommendations,
	}
}

var triggerStopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "about": {},
}

// ExtractEmotionalTriggers mines message texts for words that repeatedly
// co-occur with non-neutral mood scores. Keyword extraction is deliberately
// naive word splitting.
func ExtractEmotionalTriggers(messages []string, scores []float64) []EmotionalTrigger {
	type acc struct {
		impactSum float64
		count     int
	}
	triggers := map[string]*acc{}

	for i, text := range messages {
		if i >= len(scores) {
			break
		}
		score := scores[i]
		// Neutral messages carry no trigger signal.
		if score >= -1 && score <= 1 {
			continue
		}

		for _, word := range strings.Fields(strings.ToLower(text)) {
			if len(word) < 4 {
				continue
			}
			if _, stop := triggerStopWords[word]; stop {
				continue
			}
			a := triggers[word]
			if a == nil {
				a = &acc{}
				triggers[word] = a
			}
			a.impactSum += score
			a.count++
		}
	}

	result := []EmotionalTrigger{}
	for word, a := range triggers {
		if a.count < 2 {
			continue
		}
		result = append(result, EmotionalTrigger{
			Trigger:   word,
			Impact:    round2(a.impactSum / float64(a.count)),
			Frequency: a.count,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		ai, aj := math.Abs(result[i].Impact), math.Abs(result[j].Impact)
		if ai != aj {
			return ai > aj
		}
		if result[i].Frequency != result[j].Frequency {
			return result[i].Frequency > result[j].Frequency
		}
		return result[i].Trigger < result[j].Trigger
	})

	if len(result) > 20 {
		result = result[:20]
	}
	return result
}
