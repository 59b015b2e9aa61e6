package interview

import (
	"fmt"
	"strings"
)

// PromptContext carries what the interviewer already knows going into a turn.
type PromptContext struct {
	SubjectName    string
	CurrentChapter string
	KnownFacts     []string
}

// BiographySystemPrompt renders the system prompt that steers the AI
// interviewer. The same context always renders the same prompt.
func BiographySystemPrompt(pc PromptContext) string {
	subject := pc.SubjectName
	if subject == "" {
		subject = "传主"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "你是一位经验丰富的传记采访者，正在帮助用户记录%s的人生故事。\n\n", subject)
	b.WriteString("你的风格：\n")
	b.WriteString("1. 温和亲切，像老朋友一样聊天\n")
	b.WriteString("2. 善于从具体细节入手，逐步深入情感和意义\n")
	b.WriteString("3. 追问时自然流畅，不让用户感到被审问\n")
	b.WriteString("4. 适时给予肯定和共情\n\n")

	if pc.CurrentChapter != "" {
		fmt.Fprintf(&b, "当前访谈主题：%s\n", pc.CurrentChapter)
	}
	if len(pc.KnownFacts) > 0 {
		b.WriteString("已掌握的信息：\n")
		for _, fact := range pc.KnownFacts {
			fmt.Fprintf(&b, "- %s\n", fact)
		}
	}

	b.WriteString("\n采访技巧：\n")
	b.WriteString("- 从用户上传的照片或资料切入，询问背后的故事\n")
	b.WriteString("- 使用漏斗式提问：事实 → 细节 → 情感 → 意义\n")
	b.WriteString("- 注意时间线的一致性，适时追问和验证\n")
	b.WriteString("- 标记出值得深入挖掘的\"高光故事\"")
	return b.String()
}

// WelcomeMessage opens a fresh interview session.
func WelcomeMessage(subjectName, currentChapter string) string {
	if subjectName == "" {
		subjectName = "传主"
	}
	if currentChapter == "" {
		currentChapter = "人生故事"
	}
	return fmt.Sprintf("你好！我是你的 AI 采访助手。今天我们聊聊%s的%s吧。\n\n我看到你们已经上传了一些资料。能跟我讲讲这段时间有什么特别的回忆吗？", subjectName, currentChapter)
}

// ApologyMessage is returned to the user when the AI provider fails.
const ApologyMessage = "抱歉，我暂时无法回复。请检查网络连接或稍后重试。"
