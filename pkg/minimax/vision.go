package minimax

import (
	"context"
	"encoding/json"
	"fmt"
)

// DefaultAnalyzePrompt asks for a biographical reading of an old photo.
// It is fixed so repeated analyses of the same image send identical requests.
const DefaultAnalyzePrompt = "详细描述这张图片。如果图片中有文字，请提取出来。如果有可辨认的人物或场景，请描述。这张图片可能来自用户的老照片或人生记录。"

// ImageAnalysis is the extracted description plus the raw provider response.
type ImageAnalysis struct {
	Description string
	Raw         json.RawMessage
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AnalyzeImage sends one multimodal user turn: a text instruction plus an
// inlined base64 JPEG. An empty prompt falls back to DefaultAnalyzePrompt.
func (c *Client) AnalyzeImage(ctx context.Context, imageBase64, prompt string) (ImageAnalysis, error) {
	if imageBase64 == "" {
		return ImageAnalysis{}, fmt.Errorf("minimax vision: image data required")
	}
	if prompt == "" {
		prompt = DefaultAnalyzePrompt
	}
	payload := chatPayload{
		Model: DefaultChatModel,
		Messages: []Message{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &imageURL{URL: "data:image/jpeg;base64," + imageBase64}},
				},
			},
		},
		Temperature: defaultTemperature,
	}

	var raw json.RawMessage
	if err := c.post(ctx, "/text/chatcompletion_v2", payload, &raw); err != nil {
		return ImageAnalysis{}, err
	}
	var resp visionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ImageAnalysis{}, fmt.Errorf("minimax vision decode: %w", err)
	}
	analysis := ImageAnalysis{Raw: raw}
	if len(resp.Choices) > 0 {
		analysis.Description = resp.Choices[0].Message.Content
	}
	return analysis, nil
}
