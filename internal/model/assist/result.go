// Package assist defines the normalized results exchanged with the
// external transcription and question-generation models.
package assist

// Sentiment is the model's read on the patient's tone for one utterance.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// TranscriptionResult is a normalized speech-to-text response.
type TranscriptionResult struct {
	Transcript string    `json:"transcript"`
	Language   string    `json:"language"`
	Confidence float64   `json:"confidence"`
	Sentiment  Sentiment `json:"sentiment"`
}

// PromptContext bundles everything the question generator needs: the
// latest utterance, free-text clinical context, a question-type hint and
// the accumulated session transcript.
type PromptContext struct {
	Utterance    string
	Context      string
	QuestionType string
	History      string
}

// EmotionDetails describes a detected patient emotional state.
type EmotionDetails struct {
	Detected       string  `json:"detected"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`
}

// QuestionResult is a normalized follow-up question generation response.
type QuestionResult struct {
	Questions         []string       `json:"questions"`
	SuggestedQuestion string         `json:"suggestedQuestion"`
	EmotionAlert      bool           `json:"emotionAlert"`
	EmotionDetails    EmotionDetails `json:"emotionDetails"`
	MedicalInsights   []string       `json:"medicalInsights"`
}
