package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"paintadvisor/internal/config"
)

const (
	openAITranscriptionURL = "https://api.openai.com/v1/audio/transcriptions"
	whisperModel           = "whisper-1"
	sttTimeout             = 30 * time.Second

	// Shorter clips are invariably silence or a mis-tap.
	minAudioBytes = 1000
)

// audioFieldNames are accepted multipart field names, in preference
// order. iOS clients send audio_file, older clients audio.
var audioFieldNames = []string{"audio_file", "audio", "file"}

// Transcribe forwards uploaded audio to the transcription API and
// relays the recognized text. Accepts multipart uploads or a JSON body
// with base64 audio.
func Transcribe(cfg *config.Config, log *zap.Logger) fasthttp.RequestHandler {
	client := &fasthttp.Client{}

	return func(ctx *fasthttp.RequestCtx) {
		if cfg.OpenAIAPIKey == "" {
			errResponse(ctx, fasthttp.StatusInternalServerError, "STT not configured")
			return
		}

		audio, filename, mimeType, err := readAudio(ctx)
		if err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, err.Error())
			return
		}
		if len(audio) < minAudioBytes {
			errResponse(ctx, fasthttp.StatusBadRequest, "audio too short")
			return
		}

		body, contentType, err := transcriptionForm(audio, filename, mimeType)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to build upload")
			return
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(openAITranscriptionURL)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType(contentType)
		req.Header.Set("Authorization", "Bearer "+cfg.OpenAIAPIKey)
		req.SetBody(body)

		err = client.DoTimeout(req, resp, sttTimeout)
		if err == nil && resp.StatusCode() != fasthttp.StatusOK {
			err = fmt.Errorf("transcription status %d: %s", resp.StatusCode(), resp.Body())
		}
		observeUpstream("openai", err)
		if err != nil {
			log.Error("transcription failed", zap.Error(err))
			errResponse(ctx, fasthttp.StatusInternalServerError, "transcription failed")
			return
		}

		var result struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(resp.Body(), &result); err != nil {
			log.Error("transcription response parse failed", zap.Error(err))
			errResponse(ctx, fasthttp.StatusInternalServerError, "transcription failed")
			return
		}

		jsonResponse(ctx, map[string]any{"text": result.Text})
	}
}

// readAudio extracts the audio bytes from either a multipart upload or
// a JSON base64 fallback body.
func readAudio(ctx *fasthttp.RequestCtx) (audio []byte, filename, mimeType string, err error) {
	contentType := string(ctx.Request.Header.ContentType())

	if strings.Contains(contentType, "multipart/form-data") {
		form, err := ctx.MultipartForm()
		if err != nil {
			return nil, "", "", fmt.Errorf("invalid multipart body: %w", err)
		}

		var header *multipart.FileHeader
		for _, field := range audioFieldNames {
			if files := form.File[field]; len(files) > 0 {
				header = files[0]
				break
			}
		}
		if header == nil {
			return nil, "", "", errors.New("no audio file in form data")
		}

		f, err := header.Open()
		if err != nil {
			return nil, "", "", fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()

		audio, err = io.ReadAll(f)
		if err != nil {
			return nil, "", "", fmt.Errorf("read upload: %w", err)
		}

		filename = header.Filename
		if filename == "" {
			filename = "audio.m4a"
		}
		return audio, filename, audioMIMEType(filename), nil
	}

	var payload struct {
		Audio string `json:"audio"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
		return nil, "", "", errors.New("invalid JSON body")
	}
	audio, err = base64.StdEncoding.DecodeString(payload.Audio)
	if err != nil {
		return nil, "", "", errors.New("invalid base64 audio")
	}
	return audio, "audio.m4a", "audio/mp4", nil
}

// audioMIMEType infers the upload content type from the filename.
func audioMIMEType(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".webm"):
		return "audio/webm"
	case strings.HasSuffix(filename, ".m4a"), strings.HasSuffix(filename, ".mp4"):
		return "audio/mp4"
	default:
		return "audio/mpeg"
	}
}

// transcriptionForm builds the multipart body for the transcription
// API: the audio file plus the model name.
func transcriptionForm(audio []byte, filename, mimeType string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", err
	}

	if err := w.WriteField("model", whisperModel); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
