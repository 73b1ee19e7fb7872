// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

var ErrActivityNotFound = errors.New("activity not found")

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// LoadOrDefault reads path, falling back to DefaultRegistry when path is
// empty or missing.
func LoadOrDefault(path string) (*ActivityRegistry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	reg, err := LoadRegistry(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultRegistry(), nil
	}
	return reg, err
}

func SaveRegistry(reg *ActivityRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func (r *ActivityRegistry) Find(taskType string) (Activity, error) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, nil
		}
	}
	return Activity{}, fmt.Errorf("%w: %s", ErrActivityNotFound, taskType)
}

// InputSchema returns the schema for taskType, or nil when the task type is
// not registered.
func (r *ActivityRegistry) InputSchema(taskType string) map[string]interface{} {
	a, err := r.Find(taskType)
	if err != nil {
		return nil
	}
	return a.InputSchema
}

// Validate checks required fields, uniqueness and that every input schema
// compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if taskTypes[activity.TaskType] {
			return fmt.Errorf("duplicate task type: %s", activity.TaskType)
		}
		taskTypes[activity.TaskType] = true

		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if len(activity.InputSchema) > 0 {
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(activity.InputSchema)); err != nil {
				return fmt.Errorf("activity %s has an invalid input schema: %w", activity.ID, err)
			}
		}
	}
	return nil
}
