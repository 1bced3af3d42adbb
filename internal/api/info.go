package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	dataDir      string
	elevationURL string
}

func NewInfoHandler(dataDir, elevationURL string) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, elevationURL: elevationURL}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name      string   `json:"name" doc:"Service name"`
	Version   string   `json:"version" doc:"Service version"`
	DataDir   string   `json:"data_dir" doc:"Data directory path"`
	Elevation bool     `json:"elevation" doc:"Whether an elevation service is configured"`
	Features  []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:      "plat-draw",
		Version:   "0.1.0",
		DataDir:   h.dataDir,
		Elevation: h.elevationURL != "",
		Features:  []string{"shapes", "handles", "coverage", "elevation", "geojson"},
	}}, nil
}
