package coach

import (
	"fmt"
	"strings"

	"life-coach-chat/internal/models"
	"life-coach-chat/internal/safety"
)

// BaseSystemPrompt describes the coach's role and its professional-help
// disclaimer. Every system instruction starts from this text.
const BaseSystemPrompt = `You are a supportive AI life coach. Your role is to help users achieve their goals, overcome challenges, and develop positive habits.

Guidelines:
- Be empathetic, encouraging, and non-judgmental
- Ask thoughtful questions to understand the user's situation
- Provide actionable advice and strategies
- Celebrate progress, no matter how small
- Help users identify and work towards their goals
- When a user mentions a specific goal or challenge, acknowledge it clearly

Important:
- If a user expresses distress or mentions self-harm, respond with compassion and encourage them to seek professional help
- You are not a replacement for professional therapy or medical advice
- Keep responses concise but meaningful (2-3 paragraphs max)`

// styleDirectives maps a communication-style preference to its prompt
// directive. Unknown styles get no directive.
var styleDirectives = map[string]string{
	"supportive":   "Be warm, encouraging, and focus on emotional support.",
	"direct":       "Be straightforward and action-oriented in your advice.",
	"motivational": "Use motivational language and help them stay pumped up.",
}

// BuildSystemInstruction assembles the system instruction for one turn.
// Personalization blocks are appended in a fixed order; the crisis
// escalation paragraph always comes last so profile content cannot
// displace it. Deterministic for identical inputs.
func BuildSystemInstruction(ctx *models.SystemPromptContext, crisisDetected bool) string {
	prompt := BaseSystemPrompt

	if ctx != nil {
		var personalizations []string

		if len(ctx.Goals) > 0 {
			personalizations = append(personalizations,
				fmt.Sprintf("User's current goals: %s", strings.Join(ctx.Goals, ", ")))
		}

		if len(ctx.Challenges) > 0 {
			personalizations = append(personalizations,
				fmt.Sprintf("Challenges they're working on: %s", strings.Join(ctx.Challenges, ", ")))
		}

		if directive, ok := styleDirectives[ctx.Preferences.CommunicationStyle]; ok {
			personalizations = append(personalizations, directive)
		}

		if len(ctx.Preferences.FocusAreas) > 0 {
			personalizations = append(personalizations,
				fmt.Sprintf("Focus areas to emphasize: %s", strings.Join(ctx.Preferences.FocusAreas, ", ")))
		}

		if len(personalizations) > 0 {
			prompt += "\n\nPersonalization for this user:\n" + strings.Join(personalizations, "\n")
		}
	}

	if crisisDetected {
		prompt += fmt.Sprintf(`

IMPORTANT: The user's message has been flagged as potentially indicating distress.
Respond with compassion and care. Acknowledge their feelings, express concern for their wellbeing,
and gently encourage them to reach out to professional support services.
Include this information naturally in your response:
%s`, safety.Resources().Message)
	}

	return prompt
}
