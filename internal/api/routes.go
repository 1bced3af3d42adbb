// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/joeblew999/plat-draw/internal/controlpoint"
	"github.com/joeblew999/plat-draw/internal/coverage"
	"github.com/joeblew999/plat-draw/internal/elevation"
	"github.com/joeblew999/plat-draw/internal/service"
	"github.com/joeblew999/plat-draw/internal/shape"
	"github.com/joeblew999/plat-draw/internal/tiles"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Plan   *service.PlanService
	Source *service.SourceService
}

// Types

type PlanIDInput struct {
	ID string `path:"id" doc:"Plan ID" example:"north_field"`
}

type ShapeIDInput struct {
	PlanIDInput
	ShapeID string `path:"sid" doc:"Shape ID" example:"7f6c2e0a-3b1d-4c59-9d8e-0f4a1b2c3d4e"`
}

type PlanOutput struct {
	Body service.PlanInfo
}

type ShapeOutput struct {
	Body service.ShapeView
}

type HandlesOutput struct {
	Body service.Handles
}

type CoverageOutput struct {
	Body coverage.Result
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type CreatePlanBody struct {
	Name string `json:"name" required:"true" minLength:"1" maxLength:"100" doc:"Display name" example:"North field"`
}

type ImportBody struct {
	Plan    service.PlanInfo `json:"plan" doc:"Created plan"`
	Skipped string           `json:"skipped,omitempty" doc:"Shapes that could not be decoded"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterPlans registers plan CRUD routes.
func (h *APIHandler) RegisterPlans(api huma.API) {
	huma.Get(api, "/api/v1/plans", h.GetPlans, huma.OperationTags("plans"))
	huma.Post(api, "/api/v1/plans", h.CreatePlan, huma.OperationTags("plans"))
	huma.Get(api, "/api/v1/plans/{id}", h.GetPlan, huma.OperationTags("plans"))
	huma.Delete(api, "/api/v1/plans/{id}", h.DeletePlan, huma.OperationTags("plans"))
	huma.Get(api, "/api/v1/plans/{id}/export", h.ExportPlan, huma.OperationTags("plans"))
}

// RegisterTiles registers the vector tile route.
func (h *APIHandler) RegisterTiles(api huma.API) {
	huma.Get(api, "/api/v1/plans/{id}/tiles/{z}/{x}/{y}", h.GetTile, huma.OperationTags("plans"))
}

// RegisterShapes registers shape routes.
func (h *APIHandler) RegisterShapes(api huma.API) {
	huma.Get(api, "/api/v1/plans/{id}/shapes", h.GetShapes, huma.OperationTags("shapes"))
	huma.Post(api, "/api/v1/plans/{id}/shapes", h.CreateShape, huma.OperationTags("shapes"))
	huma.Get(api, "/api/v1/plans/{id}/shapes/{sid}", h.GetShape, huma.OperationTags("shapes"))
	huma.Delete(api, "/api/v1/plans/{id}/shapes/{sid}", h.DeleteShape, huma.OperationTags("shapes"))
	huma.Put(api, "/api/v1/plans/{id}/shapes/{sid}/style", h.PutStyle, huma.OperationTags("shapes"))
	huma.Put(api, "/api/v1/plans/{id}/shapes/{sid}/details", h.PutDetails, huma.OperationTags("shapes"))
	huma.Post(api, "/api/v1/plans/{id}/shapes/{sid}/elevation", h.RefreshElevation, huma.OperationTags("shapes"))
}

// RegisterHandles registers control point routes.
func (h *APIHandler) RegisterHandles(api huma.API) {
	huma.Get(api, "/api/v1/plans/{id}/shapes/{sid}/handles", h.GetHandles, huma.OperationTags("handles"))
	huma.Post(api, "/api/v1/plans/{id}/shapes/{sid}/drag", h.Drag, huma.OperationTags("handles"))
}

// RegisterCoverage registers coverage routes.
func (h *APIHandler) RegisterCoverage(api huma.API) {
	huma.Get(api, "/api/v1/plans/{id}/coverage", h.GetCoverage, huma.OperationTags("coverage"))
	huma.Get(api, "/api/v1/plans/{id}/components", h.GetComponents, huma.OperationTags("coverage"))
}

// RegisterSources registers source listing and import routes.
func (h *APIHandler) RegisterSources(api huma.API) {
	huma.Get(api, "/api/v1/sources", h.GetSources, huma.OperationTags("sources"))
	huma.Post(api, "/api/v1/sources/{name}/import", h.ImportSource, huma.OperationTags("sources"))
}

// httpError maps service errors to HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, coverage.ErrNotFound),
		errors.Is(err, controlpoint.ErrUnknownPoint):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, service.ErrExists),
		errors.Is(err, service.ErrNoSession),
		errors.Is(err, controlpoint.ErrAlreadyDragging),
		errors.Is(err, shape.ErrStaleProfile):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, shape.ErrInvalidRecord),
		errors.Is(err, shape.ErrInvalidDimension),
		errors.Is(err, shape.ErrTooFewPoints),
		errors.Is(err, shape.ErrFixedVertexCount),
		errors.Is(err, service.ErrNotLine),
		errors.Is(err, service.ErrNotNote),
		errors.Is(err, coverage.ErrNoArea),
		errors.Is(err, controlpoint.ErrEmptyPath),
		errors.Is(err, elevation.ErrNoPoints):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}

func (h *APIHandler) plans() (*service.PlanService, error) {
	if h.svc == nil || h.svc.Plan == nil {
		return nil, huma.Error503ServiceUnavailable("service not available")
	}
	return h.svc.Plan, nil
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetPlans(ctx context.Context, input *struct{}) (*struct{ Body []service.PlanInfo }, error) {
	if h.svc == nil || h.svc.Plan == nil {
		return &struct{ Body []service.PlanInfo }{Body: []service.PlanInfo{}}, nil
	}
	return &struct{ Body []service.PlanInfo }{Body: h.svc.Plan.List()}, nil
}

func (h *APIHandler) CreatePlan(ctx context.Context, input *struct{ Body CreatePlanBody }) (*PlanOutput, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	created, err := svc.Create(input.Body.Name)
	if err != nil {
		return nil, httpError(err)
	}
	return &PlanOutput{Body: created}, nil
}

func (h *APIHandler) GetPlan(ctx context.Context, input *PlanIDInput) (*PlanOutput, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	p, ok := svc.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("plan not found")
	}
	return &PlanOutput{Body: p}, nil
}

func (h *APIHandler) DeletePlan(ctx context.Context, input *PlanIDInput) (*struct{ Body MessageBody }, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	if err := svc.Delete(input.ID); err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Plan deleted"}}, nil
}

func (h *APIHandler) ExportPlan(ctx context.Context, input *PlanIDInput) (*struct {
	ContentType string `header:"Content-Type"`
	Body        *geojson.FeatureCollection
}, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	fc, err := svc.Export(input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct {
		ContentType string `header:"Content-Type"`
		Body        *geojson.FeatureCollection
	}{ContentType: "application/geo+json", Body: fc}, nil
}

type TileInput struct {
	PlanIDInput
	Z uint32 `path:"z" maximum:"22" doc:"Zoom level"`
	X uint32 `path:"x" doc:"Tile column"`
	Y uint32 `path:"y" doc:"Tile row"`
}

type TileOutput struct {
	Status          int
	ContentType     string `header:"Content-Type"`
	ContentEncoding string `header:"Content-Encoding"`
	Body            []byte
}

// GetTile renders a plan as a gzipped Mapbox vector tile. Tiles without shapes
// answer 204.
func (h *APIHandler) GetTile(ctx context.Context, input *TileInput) (*TileOutput, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	fc, err := svc.Export(input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	data, err := tiles.Encode(fc, maptile.New(input.X, input.Y, maptile.Zoom(input.Z)), tiles.DefaultLayer)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if data == nil {
		return &TileOutput{Status: 204}, nil
	}
	return &TileOutput{
		Status:          200,
		ContentType:     "application/vnd.mapbox-vector-tile",
		ContentEncoding: "gzip",
		Body:            data,
	}, nil
}

func (h *APIHandler) GetShapes(ctx context.Context, input *PlanIDInput) (*struct{ Body []service.ShapeView }, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	shapes, err := svc.Shapes(input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body []service.ShapeView }{Body: shapes}, nil
}

func (h *APIHandler) CreateShape(ctx context.Context, input *struct {
	PlanIDInput
	Body service.ShapeRecord
}) (*ShapeOutput, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	v, err := svc.AddShape(input.ID, input.Body)
	if err != nil {
		return nil, httpError(err)
	}
	return &ShapeOutput{Body: v}, nil
}

func (h *APIHandler) GetShape(ctx context.Context, input *ShapeIDInput) (*ShapeOutput, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	v, err := svc.Shape(input.ID, input.ShapeID)
	if err != nil {
		return nil, httpError(err)
	}
	return &ShapeOutput{Body: v}, nil
}

func (h *APIHandler) DeleteShape(ctx context.Context, input *ShapeIDInput) (*struct{ Body MessageBody }, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	if err := svc.RemoveShape(input.ID, input.ShapeID); err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Shape deleted"}}, nil
}

func (h *APIHandler) PutStyle(ctx context.Context, input *struct {
	ShapeIDInput
	Body shape.Style
}) (*ShapeOutput, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	v, err := svc.SetStyle(input.ID, input.ShapeID, input.Body)
	if err != nil {
		return nil, httpError(err)
	}
	return &ShapeOutput{Body: v}, nil
}

func (h *APIHandler) PutDetails(ctx context.Context, input *struct {
	ShapeIDInput
	Body service.Details
}) (*ShapeOutput, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	v, err := svc.SetDetails(input.ID, input.ShapeID, input.Body)
	if err != nil {
		return nil, httpError(err)
	}
	return &ShapeOutput{Body: v}, nil
}

// RefreshElevation fetches a new profile. A lookup failure still returns the
// line with a simulated profile; only a cancelled request fails.
func (h *APIHandler) RefreshElevation(ctx context.Context, input *ShapeIDInput) (*ShapeOutput, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	v, err := svc.RefreshElevation(ctx, input.ID, input.ShapeID)
	if err != nil {
		return nil, httpError(err)
	}
	return &ShapeOutput{Body: v}, nil
}

func (h *APIHandler) GetHandles(ctx context.Context, input *ShapeIDInput) (*HandlesOutput, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	set, err := svc.Handles(input.ID, input.ShapeID)
	if err != nil {
		return nil, httpError(err)
	}
	return &HandlesOutput{Body: set}, nil
}

func (h *APIHandler) Drag(ctx context.Context, input *struct {
	ShapeIDInput
	Body service.DragRequest
}) (*ShapeOutput, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	v, err := svc.Drag(input.ID, input.ShapeID, input.Body)
	if err != nil {
		return nil, httpError(err)
	}
	return &ShapeOutput{Body: v}, nil
}

func (h *APIHandler) GetCoverage(ctx context.Context, input *struct {
	PlanIDInput
	Focus string `query:"focus" doc:"Shape whose connected group is measured; the largest group when empty"`
}) (*CoverageOutput, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	res, err := svc.Coverage(input.ID, input.Focus)
	if err != nil {
		return nil, httpError(err)
	}
	return &CoverageOutput{Body: res}, nil
}

func (h *APIHandler) GetComponents(ctx context.Context, input *PlanIDInput) (*struct{ Body []coverage.Result }, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	comps, err := svc.Components(input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body []coverage.Result }{Body: comps}, nil
}

func (h *APIHandler) GetSources(ctx context.Context, input *struct{}) (*struct{ Body []service.SourceFile }, error) {
	if h.svc == nil || h.svc.Source == nil {
		return &struct{ Body []service.SourceFile }{Body: []service.SourceFile{}}, nil
	}
	sources, err := h.svc.Source.List()
	if err != nil {
		return &struct{ Body []service.SourceFile }{Body: []service.SourceFile{}}, nil
	}
	return &struct{ Body []service.SourceFile }{Body: sources}, nil
}

func (h *APIHandler) ImportSource(ctx context.Context, input *struct {
	Name string `path:"name" doc:"Source file name" example:"north_field.yaml"`
}) (*struct{ Body ImportBody }, error) {
	svc, err := h.plans()
	if err != nil {
		return nil, err
	}
	if h.svc.Source == nil {
		return nil, huma.Error503ServiceUnavailable("sources not available")
	}
	pf, err := h.svc.Source.Read(input.Name)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error400BadRequest(err.Error())
	}
	info, err := svc.Import(pf)
	if info.ID == "" {
		return nil, httpError(err)
	}
	body := ImportBody{Plan: info}
	if err != nil {
		body.Skipped = err.Error()
	}
	return &struct{ Body ImportBody }{Body: body}, nil
}
