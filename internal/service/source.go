package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlanFile is an importable plan document, written in YAML or JSON.
type PlanFile struct {
	Name   string        `json:"name" yaml:"name" doc:"Plan name"`
	Shapes []ShapeRecord `json:"shapes" yaml:"shapes" doc:"Shapes in stored form"`
}

// SourceFile is a plan file available for import.
type SourceFile struct {
	Name     string `json:"name" doc:"File name" example:"north_field.yaml"`
	Size     string `json:"size" doc:"Human-readable file size" example:"1.2 KB"`
	FileType string `json:"fileType" doc:"File type: YAML or JSON" example:"YAML"`
}

var extToType = map[string]string{
	".yaml": "YAML",
	".yml":  "YAML",
	".json": "JSON",
}

// ReadPlanFile parses a plan file, choosing the decoder by extension.
func ReadPlanFile(path string) (PlanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlanFile{}, err
	}
	return ParsePlanFile(data, extToType[strings.ToLower(filepath.Ext(path))])
}

// ParsePlanFile decodes data as "YAML" or "JSON".
func ParsePlanFile(data []byte, fileType string) (PlanFile, error) {
	var pf PlanFile
	switch fileType {
	case "YAML":
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return PlanFile{}, fmt.Errorf("plan file: %w", err)
		}
	case "JSON":
		if err := json.Unmarshal(data, &pf); err != nil {
			return PlanFile{}, fmt.Errorf("plan file: %w", err)
		}
	default:
		return PlanFile{}, fmt.Errorf("unsupported plan file type %q", fileType)
	}
	return pf, nil
}

// SourceService lists plan files dropped into the data directory.
type SourceService struct {
	sourcesDir string
}

// NewSourceService creates a new source service.
func NewSourceService(dataDir string) *SourceService {
	return &SourceService{
		sourcesDir: filepath.Join(dataDir, "sources"),
	}
}

// List returns all importable plan files.
func (s *SourceService) List() ([]SourceFile, error) {
	entries, err := os.ReadDir(s.sourcesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SourceFile{}, nil
		}
		return nil, err
	}

	files := []SourceFile{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileType, ok := extToType[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, SourceFile{
			Name:     entry.Name(),
			Size:     formatSize(info.Size()),
			FileType: fileType,
		})
	}
	return files, nil
}

// Read parses a plan file by name. Names containing path separators are
// rejected.
func (s *SourceService) Read(name string) (PlanFile, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return PlanFile{}, fmt.Errorf("invalid file name %q", name)
	}
	pf, err := ReadPlanFile(filepath.Join(s.sourcesDir, name))
	if os.IsNotExist(err) {
		return PlanFile{}, fmt.Errorf("source %q: %w", name, ErrNotFound)
	}
	return pf, err
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
