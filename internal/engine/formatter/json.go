package formatter

import (
	"encoding/json"
)

// JSONFormatter outputs the complete RunSummary as pretty-printed JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format returns the RunSummary as indented JSON.
func (f *JSONFormatter) Format(summary RunSummary) string {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		// RunSummary has no unmarshalable fields.
		return `{"error": "failed to marshal summary"}`
	}
	return string(data)
}
