// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

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

// Find returns the activity bound to taskType.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Validate reports task types that are started but not catalogued, and
// catalogued implemented activities that nothing serves.
func (r *ActivityRegistry) Validate(started []string) error {
	running := make(map[string]bool, len(started))
	var problems []string
	for _, taskType := range started {
		running[taskType] = true
		if _, ok := r.Find(taskType); !ok {
			problems = append(problems, fmt.Sprintf("%s is not registered", taskType))
		}
	}
	for _, a := range r.Activities {
		if a.ImplementationStatus == StatusImplemented && !running[a.TaskType] {
			problems = append(problems, fmt.Sprintf("%s has no running worker", a.TaskType))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("activity registry mismatch: %s", strings.Join(problems, "; "))
}
