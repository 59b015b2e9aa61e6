package minimax

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	ttsModel = "speech-01-turbo"

	// DefaultVoiceID is used when the caller does not pick a voice.
	DefaultVoiceID = "male-qn-qingse"
)

// Speech holds synthesized audio ready for browser playback.
type Speech struct {
	// AudioDataURI is a base64 data URI ("data:audio/mp3;base64,...").
	AudioDataURI string
	// Duration is the audio length reported by the provider, in seconds.
	Duration float64
}

type ttsPayload struct {
	Model        string       `json:"model"`
	Text         string       `json:"text"`
	Stream       bool         `json:"stream"`
	VoiceSetting voiceSetting `json:"voice_setting"`
	AudioSetting audioSetting `json:"audio_setting"`
}

type voiceSetting struct {
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed"`
	Vol     float64 `json:"vol"`
	Pitch   int     `json:"pitch"`
}

type audioSetting struct {
	SampleRate int    `json:"sample_rate"`
	Bitrate    int    `json:"bitrate"`
	Format     string `json:"format"`
}

type ttsResponse struct {
	Data struct {
		Audio string `json:"audio"`
	} `json:"data"`
	ExtraInfo struct {
		AudioLength float64 `json:"audio_length"`
	} `json:"extra_info"`
}

// TextToSpeech synthesizes speech for text. The provider returns hex-encoded
// MP3 bytes, which are re-encoded as a base64 data URI for playback.
func (c *Client) TextToSpeech(ctx context.Context, text, voiceID string) (Speech, error) {
	if text == "" {
		return Speech{}, fmt.Errorf("minimax tts: text required")
	}
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	payload := ttsPayload{
		Model:  ttsModel,
		Text:   text,
		Stream: false,
		VoiceSetting: voiceSetting{
			VoiceID: voiceID,
			Speed:   1.0,
			Vol:     1.0,
			Pitch:   0,
		},
		AudioSetting: audioSetting{
			SampleRate: 32000,
			Bitrate:    128000,
			Format:     "mp3",
		},
	}

	var resp ttsResponse
	if err := c.post(ctx, "/t2a_v2", payload, &resp); err != nil {
		return Speech{}, err
	}
	if resp.Data.Audio == "" {
		return Speech{}, fmt.Errorf("minimax tts: response missing audio data")
	}
	audio, err := hex.DecodeString(resp.Data.Audio)
	if err != nil {
		return Speech{}, fmt.Errorf("minimax tts: decode audio hex: %w", err)
	}
	return Speech{
		AudioDataURI: "data:audio/mp3;base64," + base64.StdEncoding.EncodeToString(audio),
		Duration:     resp.ExtraInfo.AudioLength,
	}, nil
}
