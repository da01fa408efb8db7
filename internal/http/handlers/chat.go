package handlers

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"paintadvisor/internal/config"
	"paintadvisor/internal/prompts"
)

const (
	chatModel     = "claude-sonnet-4-20250514"
	chatMaxTokens = 1024

	// defaultSKU is the pilot product: Chalk Paint Daisy 1L.
	defaultSKU = "81415711"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message  string        `json:"message"`
	History  []chatMessage `json:"history"`
	Language string        `json:"language"`
	Store    string        `json:"store"`
	SKU      string        `json:"sku"`
	Flow     string        `json:"flow"`
}

// Chat proxies a conversation turn to the chat-completion API. The
// system prompt is selected by flow and language; upstream failures
// produce a canned reply, never an error status.
func Chat(cfg *config.Config, log *zap.Logger) fasthttp.RequestHandler {
	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))

	return func(ctx *fasthttp.RequestCtx) {
		if cfg.AnthropicAPIKey == "" {
			errResponse(ctx, fasthttp.StatusInternalServerError, "chat not configured")
			return
		}

		var payload chatRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}

		if payload.SKU == "" {
			payload.SKU = defaultSKU
		}
		if payload.Store == "" {
			payload.Store = cfg.DefaultStore
		}

		system := prompts.System(payload.Flow, payload.Language, payload.SKU, payload.Store)

		messages := make([]anthropic.MessageParam, 0, len(payload.History)+1)
		for _, msg := range payload.History {
			if msg.Content == "" {
				continue
			}
			switch msg.Role {
			case "user":
				messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			case "assistant":
				messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
			}
		}
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(payload.Message)))

		result, err := client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(chatModel),
			MaxTokens: chatMaxTokens,
			System:    []anthropic.TextBlockParam{{Text: system}},
			Messages:  messages,
		})
		observeUpstream("anthropic", err)

		reply := ""
		if err != nil {
			log.Error("chat upstream failed", zap.Error(err))
			reply = prompts.FallbackReply
		} else {
			for _, block := range result.Content {
				if block.Type == "text" {
					reply = block.Text
					break
				}
			}
			if reply == "" {
				reply = prompts.FallbackReplyOutage
			}
		}

		jsonResponse(ctx, map[string]any{"response": reply})
	}
}
