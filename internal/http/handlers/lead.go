package handlers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"paintadvisor/internal/config"
	"paintadvisor/internal/email"
)

const (
	leadSentMessage   = "You're all set! Enjoy your paint advice."
	leadFailedMessage = "There was an issue saving your details. No worries, you can still chat!"
)

type leadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Consent bool   `json:"consent"`
	SKU     string `json:"sku"`
	Store   string `json:"store"`
}

// Lead captures a contact from the advisor and notifies the configured
// recipients by transactional email. The email address is the only
// required field.
func Lead(cfg *config.Config, mailer *email.Client, log *zap.Logger) fasthttp.RequestHandler {
	recipients := leadRecipients(cfg.LeadRecipients)

	return func(ctx *fasthttp.RequestCtx) {
		if !mailer.Configured() {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			jsonResponse(ctx, map[string]any{"success": false, "message": "Email service not configured"})
			return
		}

		var payload leadRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}

		if payload.Email == "" {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			jsonResponse(ctx, map[string]any{"success": false, "message": "Email is required"})
			return
		}

		lead := email.Lead{
			Name:      defaultString(payload.Name, "Not provided"),
			Email:     payload.Email,
			Phone:     defaultString(payload.Phone, "Not provided"),
			Consent:   payload.Consent,
			SKU:       defaultString(payload.SKU, "Not specified"),
			Store:     defaultString(payload.Store, "Not specified"),
			Timestamp: time.Now().Format("2006-01-02 15:04:05"),
		}

		html, err := email.LeadHTML(lead)
		if err == nil {
			err = mailer.Send(email.Message{
				Sender:      email.Contact{Name: cfg.SenderName, Email: cfg.SenderEmail},
				To:          recipients,
				ReplyTo:     &email.Contact{Email: payload.Email, Name: lead.Name},
				Subject:     "New Lead from Granny B's QR Advisor at Leroy Merlin - " + lead.Name,
				HTMLContent: html,
			})
		}
		observeUpstream("brevo", err)

		if err != nil {
			log.Error("lead email failed", zap.Error(err))
			jsonResponse(ctx, map[string]any{"success": false, "message": leadFailedMessage})
			return
		}

		jsonResponse(ctx, map[string]any{"success": true, "message": leadSentMessage})
	}
}

func leadRecipients(list string) []email.Contact {
	var out []email.Contact
	for _, addr := range strings.Split(list, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			out = append(out, email.Contact{Email: addr, Name: "Granny B's Paint Advisor"})
		}
	}
	return out
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
