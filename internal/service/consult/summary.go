package consult

import (
	"math"

	consultmodel "github.com/arogya-ai/consult-backend/internal/model/consult"
)

// BuildSummary computes the final report for an ended session.
func BuildSummary(session consultmodel.Session) consultmodel.Summary {
	summary := consultmodel.Summary{
		SessionID:        session.ID,
		DoctorID:         session.DoctorID,
		PatientName:      session.PatientName,
		StartTime:        session.StartTime,
		TotalQuestions:   len(session.QuestionLog),
		TranscriptLength: len(session.Transcript),
	}

	if session.EndTime != nil {
		summary.EndTime = *session.EndTime
		summary.TotalDuration = int(math.Round(session.EndTime.Sub(session.StartTime).Seconds()))
	}

	for _, record := range session.QuestionLog {
		if record.EmotionAlert {
			summary.EmotionAlerts++
		}
	}
	return summary
}
