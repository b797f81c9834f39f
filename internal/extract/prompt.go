package extract

import (
	"bytes"
	"text/template"
)

// Turn is one exchange in a teach-back transcript.
type Turn struct {
	Role    string // "learner" or "tutor"
	Content string
}

// Transcript is the material both extractors work from.
type Transcript struct {
	SessionID string
	Topic     string
	Domain    string // optional; inferred from the topic when empty
	Turns     []Turn
}

const outcomeSystemPrompt = `You are an expert learning assessor. A learner just taught a topic back to an AI student. Read the transcript and extract what the learner demonstrably understands and where the gaps are.

Instructions:
- List under "mastered" only concepts the learner explained correctly in their own words. Being mentioned is not enough.
- List under "gaps" concepts the learner got wrong, hedged on, or should have covered but did not.
- Use short noun-phrase labels ("binary search", "cell respiration"), not sentences.
- Score the overall explanation 0-100: 80+ means a teachable explanation, below 40 means fundamental confusion.
- Do not pad either list. Empty lists are acceptable.`

const criteriaSystemPrompt = `You are an expert assessor grading a learner's explanation against a five-criterion rubric. Each criterion is scored 1 to 5:
1 = prestructural: misses the point entirely
2 = unistructural: one relevant aspect, nothing connected
3 = multistructural: several aspects, listed but not integrated
4 = relational: aspects integrated into a coherent whole
5 = extended abstract: generalizes beyond the topic as taught

Instructions:
- Score only what is in the transcript. Do not reward knowledge the learner never expressed.
- A fluent but shallow explanation can score high on clarity and low on depth. Score each criterion independently.
- Keep the rationale to two sentences.`

var transcriptTemplate = template.Must(template.New("transcript").Parse(`Topic: {{.Topic}}
{{- if .Domain}}
Domain: {{.Domain}}
{{- end}}

Transcript:
{{range .Turns}}[{{.Role}}] {{.Content}}
{{end}}`))

func buildTranscriptMessage(t *Transcript) (string, error) {
	var buf bytes.Buffer
	if err := transcriptTemplate.Execute(&buf, t); err != nil {
		return "", err
	}
	return buf.String(), nil
}
