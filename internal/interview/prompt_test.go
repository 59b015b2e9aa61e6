package interview

import (
	"strings"
	"testing"
)

func TestBiographySystemPromptIncludesContext(t *testing.T) {
	prompt := BiographySystemPrompt(PromptContext{
		SubjectName:    "张老先生",
		CurrentChapter: "大学时光",
		KnownFacts:     []string{"1975年入学"},
	})
	for _, want := range []string{"张老先生", "大学时光", "1975年入学"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if !strings.Contains(prompt, "当前访谈主题：大学时光") {
		t.Errorf("chapter line missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- 1975年入学") {
		t.Errorf("fact bullet missing:\n%s", prompt)
	}
}

func TestBiographySystemPromptIsDeterministic(t *testing.T) {
	pc := PromptContext{SubjectName: "张老先生", CurrentChapter: "大学时光", KnownFacts: []string{"1975年入学", "学的是机械"}}
	if BiographySystemPrompt(pc) != BiographySystemPrompt(pc) {
		t.Fatal("same context must render the same prompt")
	}
}

func TestBiographySystemPromptDefaults(t *testing.T) {
	prompt := BiographySystemPrompt(PromptContext{})
	if !strings.Contains(prompt, "传主") {
		t.Errorf("empty subject should fall back to 传主:\n%s", prompt)
	}
	if strings.Contains(prompt, "当前访谈主题") {
		t.Errorf("no chapter line expected without a chapter:\n%s", prompt)
	}
	if strings.Contains(prompt, "已掌握的信息") {
		t.Errorf("no known-facts section expected without facts:\n%s", prompt)
	}
}

func TestWelcomeMessageMentionsSubjectAndChapter(t *testing.T) {
	msg := WelcomeMessage("张老先生", "大学时光")
	if !strings.Contains(msg, "张老先生") || !strings.Contains(msg, "大学时光") {
		t.Fatalf("welcome message missing context: %s", msg)
	}
}
