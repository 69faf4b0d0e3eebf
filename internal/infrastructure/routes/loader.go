// Package routes loads the console route table.
package routes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flotacare/fleet-console/internal/core/domain"
	"github.com/flotacare/fleet-console/internal/core/service"
)

type file struct {
	Routes []domain.RouteRule `yaml:"routes"`
}

// Load returns the validated table in path, or the default table when path
// is empty.
func Load(path string) (*service.RouteTable, error) {
	if path == "" {
		return service.NewRouteTable(domain.DefaultRoutes)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route table: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML route table and validates it.
func Parse(raw []byte) (*service.RouteTable, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse route table: %w", err)
	}
	return service.NewRouteTable(f.Routes)
}
