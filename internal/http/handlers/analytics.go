package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"paintadvisor/internal/config"
	"paintadvisor/internal/storage"
)

type ingestRequest struct {
	SessionID string          `json:"sessionId"`
	Store     string          `json:"store"`
	EventType string          `json:"event_type"`
	EventData json.RawMessage `json:"event_data"`
	Client    string          `json:"client"`
	Timestamp string          `json:"timestamp"`
}

// IngestEvent accepts one analytics event, normalizes it and appends
// it to the selected storage tier. The server time is always stamped
// here; a caller-supplied value is ignored.
func IngestEvent(backends *storage.Backends, cfg *config.Config, log *zap.Logger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var payload ingestRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}

		ev := storage.Event{
			SessionID:  payload.SessionID,
			Store:      payload.Store,
			EventType:  payload.EventType,
			EventData:  payload.EventData,
			Client:     payload.Client,
			Timestamp:  payload.Timestamp,
			ServerTime: float64(time.Now().UnixNano()) / float64(time.Second),
		}
		if ev.Store == "" {
			ev.Store = cfg.DefaultStore
		}
		if ev.Client == "" {
			ev.Client = "direct"
		}
		if len(ev.EventData) == 0 {
			ev.EventData = json.RawMessage("{}")
		}

		st, tier := backends.Select()
		if err := st.Append(ctx, ev); err != nil {
			log.Error("append event failed",
				zap.String("storage", string(tier)),
				zap.Error(err))
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to store event")
			return
		}

		eventsIngested.WithLabelValues(ev.EventType, string(tier)).Inc()
		jsonResponse(ctx, map[string]any{"ok": true, "storage": tier})
	}
}

// QueryEvents returns the stored event list, its count, the active
// tier and (where supported) the counter totals. Read failures degrade
// to an empty result so the endpoint stays responsive.
func QueryEvents(backends *storage.Backends, log *zap.Logger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		st, tier := backends.Select()

		events, err := st.ReadAll(ctx)
		if err != nil {
			log.Warn("read events failed",
				zap.String("storage", string(tier)),
				zap.Error(err))
			events = nil
		}
		if events == nil {
			events = []storage.Event{}
		}

		resp := map[string]any{
			"events":  events,
			"count":   len(events),
			"storage": tier,
		}

		counters, err := st.ReadCounters(ctx)
		switch {
		case err == nil:
			resp["counters"] = counters
		case errors.Is(err, storage.ErrCountersUnsupported):
			// file tier, nothing to report
		default:
			log.Warn("read counters failed",
				zap.String("storage", string(tier)),
				zap.Error(err))
		}

		if tier == storage.TierFile {
			resp["debug"] = backends.Debug()
		}

		jsonResponse(ctx, resp)
	}
}
