// Package sentiment scores consultation utterances with keyword
// heuristics. It backs the standalone sentiment endpoint and fills in
// sentiment for transcription engines that do not report one.
package sentiment

import "strings"

// Label is one of the sentiment categories tracked per utterance.
type Label string

const (
	Neutral    Label = "neutral"
	Positive   Label = "positive"
	Negative   Label = "negative"
	Confused   Label = "confused"
	Distressed Label = "distressed"
	Anxious    Label = "anxious"
)

// Decision carries the detected label and a confidence in [0,1].
type Decision struct {
	Label Label
	Score float64
}

// Consultations mix English and Hindi, so the buckets carry common
// transliterated Hindi terms alongside English ones.
var keywordBuckets = map[Label][]string{
	Positive: {
		"better", "improving", "improved", "relief", "relieved", "good", "great",
		"thank you", "thanks", "fine now", "much better", "theek", "accha", "aaram",
	},
	Negative: {
		"worse", "worsening", "bad", "terrible", "awful", "not working", "no relief",
		"still hurts", "unbearable", "bura", "kharab", "dard",
	},
	Confused: {
		"confused", "don't understand", "dont understand", "not sure", "what do you mean",
		"unclear", "samajh nahi", "kya matlab", "which medicine", "how do i",
	},
	Distressed: {
		"severe", "can't bear", "cant bear", "crying", "scared", "terrified", "emergency",
		"help me", "unable to breathe", "chest pain", "bahut dard", "bardasht nahi",
	},
	Anxious: {
		"worried", "anxious", "nervous", "afraid", "what if", "is it serious",
		"cancer", "tension", "ghabrahat", "chinta", "dar lag raha",
	},
}

// labelPriority fixes the selection order so ties resolve toward the
// more urgent label.
var labelPriority = []Label{Distressed, Anxious, Confused, Negative, Positive}

var recommendations = map[Label]string{
	Positive:   "Reinforce the progress and confirm the current treatment plan.",
	Negative:   "Probe what changed and reassess the treatment plan.",
	Confused:   "Slow down and re-explain in simpler terms.",
	Distressed: "Consider reassuring the patient before continuing.",
	Anxious:    "Acknowledge the concern and explain the likely causes calmly.",
	Neutral:    "Continue the consultation normally.",
}

// Analyze picks the dominant sentiment of a single utterance.
func Analyze(text string) Decision {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Decision{Label: Neutral, Score: 0.5}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label]++
			}
		}
	}

	// Repeated question marks read as confusion, exclamations as distress.
	if strings.Count(normalized, "?") > 1 {
		scores[Confused]++
	}
	if strings.Count(normalized, "!") > 1 {
		scores[Distressed]++
	}

	best := Neutral
	bestHits := 0
	for _, label := range labelPriority {
		if hits := scores[label]; hits > bestHits {
			bestHits = hits
			best = label
		}
	}

	if bestHits == 0 {
		return Decision{Label: Neutral, Score: 0.5}
	}

	score := 0.5 + 0.15*float64(bestHits)
	if score > 0.95 {
		score = 0.95
	}
	return Decision{Label: best, Score: score}
}

// Recommendation suggests how the doctor should adjust given a label.
func Recommendation(label Label) string {
	if rec, ok := recommendations[label]; ok {
		return rec
	}
	return recommendations[Neutral]
}
