package designer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/shipaleks/eidetic/pkg/models"
)

// interviewerPromptTemplate is the fixed template build_interviewer_prompt
// substitutes into; the external voice runtime consumes the rendered text
// verbatim, so the template itself is part of the script contract
// (spec.md §4.3).
var interviewerPromptTemplate = template.Must(template.New("interviewer").Parse(`You are conducting a voice interview for a qualitative research study.

Research question: {{.ResearchQuestion}}

Target length: around {{.MaxDurationMinutes}} minutes. This is advisory — follow the respondent's pace rather than cutting them off, but use it to judge how much ground the probes below can realistically cover.

Opening question (ask first, verbatim or close to it):
{{.OpeningQuestion}}

{{range .Sections}}---
Topic: {{.MainQuestion}}
Priority: {{.Priority}}
Approach: {{.Instruction}}
{{if .Context}}Context: {{.Context}}
{{end}}Probes (use as needed to go deeper):
{{range .Probes}}- {{.}}
{{end}}
{{end}}---
Closing question:
{{.ClosingQuestion}}

Wildcard (ask if the conversation allows room for it):
{{.Wildcard}}

Keep the tone conversational. Let the respondent talk; use probes only when they stall or skim a topic.
`))

// interviewerPromptData adds the advisory duration threshold alongside the
// script fields the template otherwise renders directly.
type interviewerPromptData struct {
	models.InterviewScript
	MaxDurationMinutes int
}

// BuildInterviewerPrompt substitutes script fields into the fixed template.
// Template and substitution rules are part of the script contract since the
// external voice runtime consumes the rendered text verbatim. The
// max_interview_duration_minutes threshold is advisory and surfaced only
// here, in the rendered prompt text (spec.md §6) — it never gates or cuts
// off the interview itself.
func (d *Designer) BuildInterviewerPrompt(script models.InterviewScript) (string, error) {
	data := interviewerPromptData{InterviewScript: script, MaxDurationMinutes: d.thresholds.MaxInterviewMinutes}
	var buf bytes.Buffer
	if err := interviewerPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("designer: render interviewer prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}
