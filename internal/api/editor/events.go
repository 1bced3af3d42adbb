package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-draw/internal/service"
	"github.com/joeblew999/plat-draw/internal/shape"
)

// EventHandler streams plan and shape change events to the Datastar UI via SSE.
type EventHandler struct {
	bus *service.EventBus
}

// NewEventHandler creates a new event handler.
func NewEventHandler(bus *service.EventBus) *EventHandler {
	return &EventHandler{bus: bus}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/events", h.Events,
		huma.OperationTags("editor"),
	)
}

type EventsInput struct {
	Plan string `query:"plan" doc:"Only stream events of this plan"`
}

// Events forwards bus events until the client disconnects. Panning toggles and
// derived properties become signals; every event is also dispatched as a
// resource-changed DOM event.
func (h *EventHandler) Events(ctx context.Context, input *EventsInput) (*huma.StreamResponse, error) {
	return Stream(func(sse SSE) {
		ch := h.bus.Subscribe()
		defer h.bus.Unsubscribe(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				if input.Plan != "" && ev.Plan != "" && ev.Plan != input.Plan {
					continue
				}
				switch {
				case ev.Resource == "map" && ev.Action == "panning":
					sse.Signals(map[string]any{"panning": ev.Payload})
				case ev.Resource == "shapes" && ev.Action == string(shape.PropertiesUpdated):
					if e, ok := ev.Payload.(shape.Event); ok && e.Properties != nil {
						sse.Signals(map[string]any{"properties": map[string]any{ev.ID: e.Properties}})
					}
				}
				sse.DispatchCustomEvent("resource-changed", map[string]any{
					"resource": ev.Resource,
					"action":   ev.Action,
					"plan":     ev.Plan,
					"id":       ev.ID,
				})
			}
		}
	}), nil
}
