package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tcstore/internal/audit"
)

// Scenario defines a scripted run against the trade service.
type Scenario struct {
	// Name identifies the scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Context is the default audit context for mutating steps.
	Context audit.Context `yaml:"context"`

	// Steps run in order against a fresh store.
	Steps []Step `yaml:"steps"`
}

// Step is one service call.
type Step struct {
	// Op is the service operation, e.g. "save_new" or "count_by_filter".
	Op string `yaml:"op"`

	ID  string   `yaml:"id,omitempty"`
	IDs []string `yaml:"ids,omitempty"`

	// Data is the full trade payload for save_new and save_full_update.
	Data any `yaml:"data,omitempty"`

	// Patch is the partial payload for save_partial.
	Patch map[string]any `yaml:"patch,omitempty"`

	// Filter maps dotted paths to {op: operand} clauses.
	Filter map[string]any `yaml:"filter,omitempty"`

	Limit  int `yaml:"limit,omitempty"`
	Offset int `yaml:"offset,omitempty"`

	// Context overrides the scenario context for this step.
	Context *audit.Context `yaml:"context,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected outcome of a step. Only the fields that
// are set are checked.
type Expect struct {
	// Error is the expected error code, e.g. "NOT_FOUND". When empty the
	// step must succeed.
	Error string `yaml:"error,omitempty"`

	// Data is compared against the returned record data.
	Data any `yaml:"data,omitempty"`

	// Count is the record count (count_by_filter, purge) or the number of
	// returned items (load_by_filter, list_by_filter, load_group).
	Count *int `yaml:"count,omitempty"`

	// IDs are the returned record ids, in order.
	IDs []string `yaml:"ids,omitempty"`

	Deleted      *bool    `yaml:"deleted,omitempty"`
	DeletedCount *int     `yaml:"deleted_count,omitempty"`
	Missing      []string `yaml:"missing,omitempty"`
}

// Step operation names.
const (
	OpSaveNew        = "save_new"
	OpSaveFullUpdate = "save_full_update"
	OpSavePartial    = "save_partial"
	OpLoadByID       = "load_by_id"
	OpLoadGroup      = "load_group"
	OpDeleteByID     = "delete_by_id"
	OpDeleteGroup    = "delete_group"
	OpPurge          = "purge"
	OpLoadByFilter   = "load_by_filter"
	OpListByFilter   = "list_by_filter"
	OpCountByFilter  = "count_by_filter"
)

var knownOps = []string{
	OpSaveNew, OpSaveFullUpdate, OpSavePartial,
	OpLoadByID, OpLoadGroup,
	OpDeleteByID, OpDeleteGroup, OpPurge,
	OpLoadByFilter, OpListByFilter, OpCountByFilter,
}

// needsID lists the operations that act on a single id.
var needsID = []string{OpSaveNew, OpSaveFullUpdate, OpSavePartial, OpLoadByID, OpDeleteByID}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
// Audit contexts are not checked here: a blank context is a legitimate
// way to script an INVALID_CONTEXT failure.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if !slices.Contains(knownOps, step.Op) {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if slices.Contains(needsID, step.Op) && step.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for %s", i, step.Op)
		}
		if (step.Op == OpLoadGroup || step.Op == OpDeleteGroup) && step.IDs == nil {
			return fmt.Errorf("steps[%d]: ids is required for %s (use [] for none)", i, step.Op)
		}
	}
	return nil
}

// contextFor returns the audit context a step runs with.
func (s *Scenario) contextFor(step Step) audit.Context {
	if step.Context != nil {
		return *step.Context
	}
	return s.Context
}
