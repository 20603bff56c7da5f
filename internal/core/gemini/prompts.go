package gemini

import (
	"fmt"
	"math"
	"strconv"
)

const assistantTemplate = `You are Jarvis, specializing in helping neurodivergent individuals.
Current user message: %s

Response Guidelines:
1. Use clear, concrete language with minimal metaphors
2. Maintain positive, non-judgmental tone
3. Keep responses under 100 words and in brief`

const feedbackTemplate = `Analyze this speech interaction:
Eye Contact: %s%%
Transcript: %s

Provide feedback on:
1. Communication effectiveness
2. Eye contact patterns
3. Speech clarity
4. Areas for improvement`

// AssistantPrompt wraps a user message in the Jarvis persona.
func AssistantPrompt(message string) string {
	return fmt.Sprintf(assistantTemplate, message)
}

// FeedbackPrompt asks for speaking feedback given the eye contact share and
// what was said.
func FeedbackPrompt(eyeContact float64, transcript string) string {
	return fmt.Sprintf(feedbackTemplate, formatPercent(eyeContact), transcript)
}

// formatPercent prints whole values with one decimal (100.0) and others in
// their shortest form (66.67).
func formatPercent(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
