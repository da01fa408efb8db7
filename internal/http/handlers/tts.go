package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"paintadvisor/internal/config"
)

const (
	googleTTSURL  = "https://texttospeech.googleapis.com/v1/text:synthesize"
	elevenLabsURL = "https://api.elevenlabs.io/v1/text-to-speech/"

	// elevenLabsVoiceID is the cloned Granny B voice.
	elevenLabsVoiceID = "SAhdygBsjizE9aIj39dz"

	ttsTimeout = 30 * time.Second

	// maxTTSChars bounds synthesis cost per request.
	maxTTSChars = 1000
)

type ttsRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Synthesize converts text to speech and returns base64 MP3 audio.
// Afrikaans routes to Google TTS, which has a native af-ZA voice;
// everything else uses the ElevenLabs multilingual voice.
func Synthesize(cfg *config.Config, log *zap.Logger) fasthttp.RequestHandler {
	client := &fasthttp.Client{}

	return func(ctx *fasthttp.RequestCtx) {
		var payload ttsRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if payload.Text == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "No text provided")
			return
		}

		text := truncateText(payload.Text, maxTTSChars)

		var audioB64 string
		var err error
		if payload.Language == "af" {
			audioB64, err = googleTTS(client, cfg.GoogleTTSAPIKey, text)
			observeUpstream("google-tts", err)
		} else {
			audioB64, err = elevenLabsTTS(client, cfg.ElevenLabsAPIKey, text)
			observeUpstream("elevenlabs", err)
		}

		if err != nil {
			log.Error("tts failed", zap.String("language", payload.Language), zap.Error(err))
			errResponse(ctx, fasthttp.StatusInternalServerError, "TTS generation failed")
			return
		}

		jsonResponse(ctx, map[string]any{"audio": audioB64, "format": "mp3"})
	}
}

// truncateText caps text at max characters, preserving rune
// boundaries.
func truncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

// googleTTS synthesizes text with the af-ZA standard voice and returns
// base64 MP3 (the API already encodes its response).
func googleTTS(client *fasthttp.Client, apiKey, text string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("GOOGLE_TTS_API_KEY not set")
	}

	payload := map[string]any{
		"input": map[string]any{"text": text},
		"voice": map[string]any{
			"languageCode": "af-ZA",
			"name":         "af-ZA-Standard-A",
			"ssmlGender":   "FEMALE",
		},
		"audioConfig": map[string]any{
			"audioEncoding": "MP3",
			"speakingRate":  1.0,
			"pitch":         0,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(googleTTSURL + "?key=" + apiKey)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := client.DoTimeout(req, resp, ttsTimeout); err != nil {
		return "", fmt.Errorf("google tts request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("google tts status %d: %s", resp.StatusCode(), resp.Body())
	}

	var result struct {
		AudioContent string `json:"audioContent"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("google tts response: %w", err)
	}
	if result.AudioContent == "" {
		return "", fmt.Errorf("google tts returned no audio")
	}
	return result.AudioContent, nil
}

// elevenLabsTTS synthesizes text with the fixed multilingual voice and
// returns the raw MP3 bytes base64-encoded.
func elevenLabsTTS(client *fasthttp.Client, apiKey, text string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("ELEVENLABS_API_KEY not set")
	}

	payload := map[string]any{
		"text":     text,
		"model_id": "eleven_multilingual_v2",
		"voice_settings": map[string]any{
			"stability":         0.5,
			"similarity_boost":  0.75,
			"style":             0.0,
			"use_speaker_boost": true,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(elevenLabsURL + elevenLabsVoiceID)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("xi-api-key", apiKey)
	req.Header.Set("Accept", "audio/mpeg")
	req.SetBody(body)

	if err := client.DoTimeout(req, resp, ttsTimeout); err != nil {
		return "", fmt.Errorf("elevenlabs request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("elevenlabs status %d: %s", resp.StatusCode(), resp.Body())
	}

	return base64.StdEncoding.EncodeToString(resp.Body()), nil
}
