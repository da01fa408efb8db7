package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"paintadvisor/internal/config"
	"paintadvisor/internal/email"
	"paintadvisor/internal/prompts"
)

const recapMaxTokens = 512

type recapRequest struct {
	History     []chatMessage `json:"history"`
	ChatHistory []chatMessage `json:"chatHistory"`
	Language    string        `json:"language"`
	Email       string        `json:"email"`
	Name        string        `json:"name"`
}

// Recap asks the chat-completion API to extract a structured project
// summary from the conversation transcript. When the caller supplies
// an email address, the recap is also rendered and sent; the send
// outcome is reported without failing the recap itself.
func Recap(cfg *config.Config, mailer *email.Client, log *zap.Logger) fasthttp.RequestHandler {
	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))

	return func(ctx *fasthttp.RequestCtx) {
		if cfg.AnthropicAPIKey == "" {
			errResponse(ctx, fasthttp.StatusInternalServerError, "recap not configured")
			return
		}

		var payload recapRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}

		history := recapHistory(payload)
		if len(history) == 0 {
			jsonResponse(ctx, map[string]any{"success": false, "error": "No conversation history"})
			return
		}

		var transcript strings.Builder
		for _, msg := range history {
			role := defaultString(msg.Role, "user")
			fmt.Fprintf(&transcript, "%s: %s\n", role, msg.Content)
		}

		result, err := client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(chatModel),
			MaxTokens: recapMaxTokens,
			System:    []anthropic.TextBlockParam{{Text: prompts.Extraction}},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(transcript.String())),
			},
		})
		observeUpstream("anthropic", err)
		if err != nil {
			log.Error("recap upstream failed", zap.Error(err))
			jsonResponse(ctx, map[string]any{"success": false, "error": "Could not extract recap"})
			return
		}

		raw := ""
		for _, block := range result.Content {
			if block.Type == "text" {
				raw = block.Text
				break
			}
		}

		var recap email.Recap
		if err := json.Unmarshal([]byte(extractJSONBlock(raw)), &recap); err != nil {
			log.Error("recap parse failed", zap.Error(err))
			jsonResponse(ctx, map[string]any{"success": false, "error": "Could not extract recap"})
			return
		}

		resp := map[string]any{"success": true, "recap": recap}

		if payload.Email != "" {
			resp["emailSent"] = sendRecapEmail(cfg, mailer, log, recap, payload.Email, payload.Name)
		}

		jsonResponse(ctx, resp)
	}
}

// recapHistory prefers the history field but falls back to
// chatHistory, the older client field name.
func recapHistory(p recapRequest) []chatMessage {
	if len(p.History) > 0 {
		return p.History
	}
	return p.ChatHistory
}

// extractJSONBlock returns the first {...} block in s, or s itself
// when no braces are found. Models often wrap the JSON in prose.
func extractJSONBlock(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func sendRecapEmail(cfg *config.Config, mailer *email.Client, log *zap.Logger, recap email.Recap, to, name string) bool {
	if !mailer.Configured() {
		return false
	}

	html, err := email.RecapHTML(recap)
	if err == nil {
		err = mailer.Send(email.Message{
			Sender:      email.Contact{Name: cfg.SenderName, Email: cfg.SenderEmail},
			To:          []email.Contact{{Email: to, Name: name}},
			Subject:     "Your Granny B's Paint Project Recap",
			HTMLContent: html,
		})
	}
	observeUpstream("brevo", err)
	if err != nil {
		log.Error("recap email failed", zap.Error(err))
		return false
	}
	return true
}
