package model

// WhisperResult represents the JSON output of the whisper CLI
type WhisperResult struct {
	Text     string           `json:"text"`
	Segments []WhisperSegment `json:"segments"`
	Language string           `json:"language"`
}

// WhisperSegment represents a single segment from Whisper output
type WhisperSegment struct {
	ID         int     `json:"id"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"avg_logprob"`
}
