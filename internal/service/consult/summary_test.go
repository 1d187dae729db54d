package consult

import (
	"testing"
	"time"

	consultmodel "github.com/arogya-ai/consult-backend/internal/model/consult"
)

func TestBuildSummaryRoundsDuration(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90*time.Second + 600*time.Millisecond)

	session := consultmodel.Session{
		ID:          "s1",
		DoctorID:    "doc1",
		PatientName: "Alice",
		Status:      consultmodel.StatusEnded,
		StartTime:   start,
		EndTime:     &end,
		Transcript:  "hello there",
		QuestionLog: []consultmodel.QuestionRecord{
			{EmotionAlert: true},
			{EmotionAlert: false},
			{EmotionAlert: true},
		},
	}

	summary := BuildSummary(session)
	if summary.TotalDuration != 91 {
		t.Fatalf("expected 91 seconds, got %d", summary.TotalDuration)
	}
	if summary.TotalQuestions != 3 {
		t.Fatalf("expected 3 questions, got %d", summary.TotalQuestions)
	}
	if summary.EmotionAlerts != 2 {
		t.Fatalf("expected 2 alerts, got %d", summary.EmotionAlerts)
	}
	if summary.TranscriptLength != len("hello there") {
		t.Fatalf("unexpected transcript length: %d", summary.TranscriptLength)
	}
}

func TestBuildSummaryWithoutEndTime(t *testing.T) {
	session := consultmodel.Session{
		ID:        "s1",
		StartTime: time.Now().UTC(),
	}

	summary := BuildSummary(session)
	if summary.TotalDuration != 0 {
		t.Fatalf("expected zero duration, got %d", summary.TotalDuration)
	}
	if !summary.EndTime.IsZero() {
		t.Fatalf("expected zero end time, got %v", summary.EndTime)
	}
}
