package coach

import (
	"strings"
	"testing"

	"life-coach-chat/internal/models"
)

func TestBuildSystemInstruction_NilContext(t *testing.T) {
	got := BuildSystemInstruction(nil, false)
	if got != BaseSystemPrompt {
		t.Error("expected bare base prompt for nil context")
	}
}

func TestBuildSystemInstruction_PersonalizationOrder(t *testing.T) {
	ctx := &models.SystemPromptContext{
		Goals:      []string{"run a marathon", "read more"},
		Challenges: []string{"early mornings"},
		Preferences: models.Preferences{
			CommunicationStyle: "direct",
			FocusAreas:         []string{"fitness", "career"},
		},
	}

	got := BuildSystemInstruction(ctx, false)

	goals := strings.Index(got, "User's current goals: run a marathon, read more")
	challenges := strings.Index(got, "Challenges they're working on: early mornings")
	style := strings.Index(got, styleDirectives["direct"])
	focus := strings.Index(got, "Focus areas to emphasize: fitness, career")

	for name, idx := range map[string]int{"goals": goals, "challenges": challenges, "style": style, "focus": focus} {
		if idx < 0 {
			t.Fatalf("expected %s block in instruction", name)
		}
	}
	if !(goals < challenges && challenges < style && style < focus) {
		t.Errorf("personalization blocks out of order: goals=%d challenges=%d style=%d focus=%d",
			goals, challenges, style, focus)
	}
}

func TestBuildSystemInstruction_UnknownStyleIgnored(t *testing.T) {
	ctx := &models.SystemPromptContext{
		Preferences: models.Preferences{CommunicationStyle: "sarcastic"},
	}

	got := BuildSystemInstruction(ctx, false)
	if got != BaseSystemPrompt {
		t.Error("expected unknown style to add no personalization block")
	}
}

func TestBuildSystemInstruction_EmptyContextAddsNothing(t *testing.T) {
	got := BuildSystemInstruction(&models.SystemPromptContext{}, false)
	if strings.Contains(got, "Personalization for this user") {
		t.Error("expected no personalization header for empty context")
	}
}

func TestBuildSystemInstruction_CrisisParagraphLast(t *testing.T) {
	ctx := &models.SystemPromptContext{
		Goals: []string{"stay healthy"},
	}

	got := BuildSystemInstruction(ctx, true)

	crisis := strings.Index(got, "flagged as potentially indicating distress")
	goals := strings.Index(got, "User's current goals")
	if crisis < 0 {
		t.Fatal("expected crisis escalation paragraph")
	}
	if crisis < goals {
		t.Error("expected crisis paragraph after personalization")
	}
	if !strings.Contains(got[crisis:], "crisis helpline") {
		t.Error("expected crisis paragraph to embed the support message")
	}
}

func TestBuildSystemInstruction_Deterministic(t *testing.T) {
	ctx := &models.SystemPromptContext{
		Goals:      []string{"a", "b"},
		Challenges: []string{"c"},
	}

	first := BuildSystemInstruction(ctx, true)
	second := BuildSystemInstruction(ctx, true)
	if first != second {
		t.Error("expected identical output for identical inputs")
	}
}
