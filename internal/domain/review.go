package domain

import "time"

// Sentiment labels as they appear in the input data.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

type Review struct {
	AppName string
	Version *string // reviewCreatedVersion; nil when the store has none
	Label   string
	Score   float64
	At      time.Time
}

// VersionOrEmpty avoids nil checks at call sites that only need the string.
func (r Review) VersionOrEmpty() string {
	if r.Version == nil {
		return ""
	}
	return *r.Version
}
