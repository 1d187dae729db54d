package consult

import "time"

// Status tracks the lifecycle of a consultation session.
type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Session holds the accumulated state of one doctor-patient consultation.
// Transcript and QuestionLog are append-only while the session is active;
// Context and MedicalHistory are replaced wholesale by context updates.
type Session struct {
	ID             string           `json:"sessionId"`
	DoctorID       string           `json:"doctorId"`
	PatientName    string           `json:"patientName"`
	SessionType    string           `json:"sessionType"`
	Status         Status           `json:"status"`
	StartTime      time.Time        `json:"startTime"`
	EndTime        *time.Time       `json:"endTime,omitempty"`
	Transcript     string           `json:"transcript"`
	Context        string           `json:"context"`
	MedicalHistory []string         `json:"medicalHistory"`
	QuestionLog    []QuestionRecord `json:"questions"`
}

// QuestionRecord captures one round of follow-up question generation.
type QuestionRecord struct {
	Timestamp          time.Time `json:"timestamp"`
	Transcript         string    `json:"transcript"`
	GeneratedQuestions []string  `json:"generatedQuestions"`
	SuggestedQuestion  string    `json:"suggestedQuestion"`
	EmotionAlert       bool      `json:"emotionAlert"`
}

// Summary is the final report computed when a session ends.
type Summary struct {
	SessionID        string    `json:"sessionId"`
	DoctorID         string    `json:"doctorId"`
	PatientName      string    `json:"patientName"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	TotalDuration    int       `json:"totalDuration"`
	TotalQuestions   int       `json:"totalQuestions"`
	TranscriptLength int       `json:"transcriptLength"`
	EmotionAlerts    int       `json:"emotionAlerts"`
}

// AppendChunk joins an utterance onto an accumulated transcript with a
// single-space separator when the transcript already has content.
func AppendChunk(transcript, chunk string) string {
	if transcript == "" {
		return chunk
	}
	return transcript + " " + chunk
}
