package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-draw/internal/service"
)

// DragHandler drives live control point drags from pointer events in the UI.
// Each request answers with the handles to draw; the drag state lives in the
// plan service between requests.
type DragHandler struct {
	plans *service.PlanService
}

func NewDragHandler(plans *service.PlanService) *DragHandler {
	return &DragHandler{plans: plans}
}

func (h *DragHandler) RegisterRoutes(api huma.API) {
	const base = "/api/v1/editor/plans/{id}/shapes/{sid}"
	huma.Get(api, base+"/handles", h.Handles, huma.OperationTags("editor"))
	huma.Post(api, base+"/drag/start", h.Start, huma.OperationTags("editor"))
	huma.Post(api, base+"/drag/move", h.Move, huma.OperationTags("editor"))
	huma.Post(api, base+"/drag/end", h.End, huma.OperationTags("editor"))
	huma.Post(api, base+"/drag/cancel", h.Cancel, huma.OperationTags("editor"))
}

type ShapeInput struct {
	PlanID  string `path:"id" doc:"Plan ID"`
	ShapeID string `path:"sid" doc:"Shape ID"`
}

type DragInput struct {
	ShapeInput
	SignalsInput
}

func (h *DragHandler) Handles(ctx context.Context, input *ShapeInput) (*huma.StreamResponse, error) {
	return Stream(func(sse SSE) {
		set, err := h.plans.Handles(input.PlanID, input.ShapeID)
		if err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Signals(map[string]any{"handles": set})
	}), nil
}

// Start presses the pointer on the handle named by the pointid signal.
func (h *DragHandler) Start(ctx context.Context, input *DragInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	pointID := signals.String("pointid")
	if pointID == "" {
		return nil, huma.Error400BadRequest("Control point is required")
	}
	return Stream(func(sse SSE) {
		set, err := h.plans.BeginDrag(input.PlanID, input.ShapeID, pointID)
		if err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Signals(map[string]any{"dragging": true, "handles": set})
	}), nil
}

// Move feeds the lng and lat signals to the drag. Throttled moves answer with
// no signals.
func (h *DragHandler) Move(ctx context.Context, input *DragInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	at, ok := signals.Point()
	if !ok {
		return nil, huma.Error400BadRequest("Pointer position is required")
	}
	return Stream(func(sse SSE) {
		applied, set, err := h.plans.MoveDrag(input.PlanID, input.ShapeID, at)
		if err != nil {
			sse.Error(err.Error())
			return
		}
		if applied {
			sse.Signals(map[string]any{"handles": set})
		}
	}), nil
}

// End releases the pointer and sends the committed properties.
func (h *DragHandler) End(ctx context.Context, input *DragInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	at, ok := signals.Point()
	if !ok {
		return nil, huma.Error400BadRequest("Pointer position is required")
	}
	return Stream(func(sse SSE) {
		v, err := h.plans.EndDrag(input.PlanID, input.ShapeID, at)
		h.finish(sse, input.ShapeInput, v, err)
	}), nil
}

func (h *DragHandler) Cancel(ctx context.Context, input *ShapeInput) (*huma.StreamResponse, error) {
	return Stream(func(sse SSE) {
		v, err := h.plans.CancelDrag(input.PlanID, input.ShapeID)
		h.finish(sse, *input, v, err)
	}), nil
}

func (h *DragHandler) finish(sse SSE, in ShapeInput, v service.ShapeView, err error) {
	if err != nil {
		sse.Error(err.Error())
		if v.ID == "" {
			return
		}
	}
	set, herr := h.plans.Handles(in.PlanID, in.ShapeID)
	if herr != nil {
		sse.Error(herr.Error())
		return
	}
	sse.Signals(map[string]any{
		"dragging":   false,
		"handles":    set,
		"properties": map[string]any{v.ID: v.Properties},
	})
}
