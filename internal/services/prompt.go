package services

import "fmt"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildRetrievalQuery creates the fixed retrieval query used to ground
// the opening question in the candidate's CV.
func (pb *PromptBuilder) BuildRetrievalQuery(roleName string) string {
	return fmt.Sprintf("Which experience or competency stands out most for the role of %s?", roleName)
}

// BuildOpeningSystemInstruction pins the model persona for the first
// question of a session.
func (pb *PromptBuilder) BuildOpeningSystemInstruction(roleName string) string {
	return fmt.Sprintf(
		"You are a professional HR interviewer for the role of '%s' at a technology company. "+
			"Ask a PERSONALIZED opening question grounded in the supplied CV context. "+
			"Ask exactly ONE question.",
		roleName)
}

// BuildOpeningPrompt creates the user prompt for the RAG-grounded
// opening question.
func (pb *PromptBuilder) BuildOpeningPrompt(candidateName, roleName, cvContext string) string {
	return fmt.Sprintf(`Your task: ask the opening question.

Candidate: Name=%s, Target Role='%s'.
Most Relevant CV Context:
`+"```"+`
%s
`+"```"+`

Your question must reference the information in the CV context above.
Example: 'Based on your project at [Project A] involving [topic from the CV], how did you handle...?'`,
		candidateName, roleName, cvContext)
}

// BuildFollowupSystemInstruction pins the model persona for chained
// questions after the first.
func (pb *PromptBuilder) BuildFollowupSystemInstruction(roleName string) string {
	return fmt.Sprintf(
		"You are a professional interviewer for the role of '%s'. "+
			"Your task is to ask a follow-up question or a new technical question. "+
			"Ask exactly ONE question.",
		roleName)
}

// BuildFollowupPrompt creates the chaining prompt. Only the
// immediately preceding question/answer pair is included, keeping the
// prompt size bounded regardless of session length.
func (pb *PromptBuilder) BuildFollowupPrompt(roleName, previousQuestion, previousAnswer string, previousSequence int) string {
	return fmt.Sprintf(`Most Recent Exchange (question #%d):
Q: %s
A: %s

Instruction: based on the answer above, ask ONE more specific FOLLOW-UP question
(for example: 'Could you explain method X in more detail?') or
ask a new TECHNICAL question relevant to the role of '%s'.`,
		previousSequence, previousQuestion, previousAnswer, roleName)
}

// BuildEvaluationSystemInstruction fixes the evaluator output contract
// to a pure JSON object with exactly the nine named fields.
func (pb *PromptBuilder) BuildEvaluationSystemInstruction(roleName string) string {
	return fmt.Sprintf(`You are a highly objective and strict AI evaluation system for an interview
for the role of '%s'. Your task is to score the candidate's answer
against the STAR and Communication Quality rubric.
After scoring, give concrete improvement advice.
THE OUTPUT MUST BE PURE JSON (no explanatory text) with this format:
{
  "score_situation": 0.00,
  "score_task": 0.00,
  "score_action": 0.00,
  "score_result": 0.00,
  "score_relevance": 0.00,
  "score_clarity": 0.00,
  "score_confidence": 0.00,
  "score_conciseness": 0.00,
  "feedback_narrative": "Improvement advice for this answer.",
  "key_improvement": "The single most important point to improve."
}`, roleName)
}

// BuildEvaluationPrompt creates the user prompt for scoring one answer.
func (pb *PromptBuilder) BuildEvaluationPrompt(question, cleanAnswer string) string {
	return fmt.Sprintf(`Interviewer Question:
---
%s
---
Candidate Answer (after preprocessing):
---
%s
---
Scoring Instructions:
1. Score every aspect (Situation, Task, Action, Result, Relevance, Clarity, Confidence, Conciseness) on a 0 to 100 scale.
2. Apply the STAR method when the question is behavioral.
3. If the answer is too short or off-topic, the relevance score must be low.
4. Provide the narrative feedback and the key improvement point.`,
		question, cleanAnswer)
}

// BuildSummarySystemInstruction pins the persona for the CV competency
// summary produced during indexing.
func (pb *PromptBuilder) BuildSummarySystemInstruction() string {
	return "You are an expert HR analyst. Summarize the candidate's core competencies " +
		"from the supplied CV text in 3-5 sentences. Return ONLY the summary text."
}

// BuildSummaryPrompt creates the user prompt for the competency summary.
func (pb *PromptBuilder) BuildSummaryPrompt(cvText string) string {
	return fmt.Sprintf("CV Text:\n---\n%s\n---\nSummarize the candidate's strongest competencies, tools and achievements.", cvText)
}
