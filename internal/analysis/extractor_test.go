package analysis

import (
	"strings"
	"testing"
)

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText("notes.txt", []byte("  1975年，我考上了大学。\n\n那是个特别的年代。  "))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "1975年，我考上了大学。") {
		t.Fatalf("unexpected text %q", text)
	}
	if strings.Contains(text, "\n") {
		t.Fatalf("text should be normalized to a single line: %q", text)
	}
}

func TestExtractTextHTMLStripsMarkup(t *testing.T) {
	page := `<html><head><style>p{color:red}</style><script>alert(1)</script></head>
<body><p>老照片里的故事</p><div>1975年入学</div></body></html>`
	text, err := ExtractText("memoir.html", []byte(page))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "老照片里的故事") || !strings.Contains(text, "1975年入学") {
		t.Fatalf("content missing: %q", text)
	}
	if strings.Contains(text, "alert") || strings.Contains(text, "color:red") {
		t.Fatalf("script/style leaked into text: %q", text)
	}
}

func TestExtractTextUnknownExtension(t *testing.T) {
	text, err := ExtractText("voice.mp3", []byte{0xff, 0xfb})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "" {
		t.Fatalf("unknown extensions should yield empty text, got %q", text)
	}
}

func TestExtractTextBrokenPDF(t *testing.T) {
	if _, err := ExtractText("broken.pdf", []byte("not a pdf")); err == nil {
		t.Fatal("expected an error for an invalid pdf")
	}
}
