package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/myurch/mock-rel/internal/ir"
)

// Scenario defines a fixture scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the path to a .cue file or directory. LoadScenario resolves
	// it relative to the scenario file.
	Schema string `yaml:"schema"`

	// Depth is the default resolution depth. Zero keeps the facade default.
	Depth int `yaml:"depth,omitempty"`

	// IDPrefix seeds generated ids for id_strategy "uuid". Defaults to Name.
	IDPrefix string `yaml:"id_prefix,omitempty"`

	// Tables are bulk-loaded into the facade's static state, in order.
	Tables []TableStep `yaml:"tables,omitempty"`

	// Actions are dispatched against the host state, in order.
	Actions []ActionStep `yaml:"actions,omitempty"`

	// Assertions validate the final host and static state.
	Assertions []Assertion `yaml:"assertions"`
}

// TableStep bulk-loads one table.
type TableStep struct {
	Model string           `yaml:"model"`
	Rows  []map[string]any `yaml:"rows"`

	// IDAutomatic defaults to true.
	IDAutomatic *bool `yaml:"id_automatic,omitempty"`
}

// ActionStep dispatches one action.
type ActionStep struct {
	// Type is an action type such as ADD_MODEL.
	Type string `yaml:"type"`

	Model    string           `yaml:"model"`
	ID       any              `yaml:"id,omitempty"`
	Data     map[string]any   `yaml:"data,omitempty"`
	DataList []map[string]any `yaml:"data_list,omitempty"`

	// IDAutomatic applies to ADD_ALL_MODELS and defaults to true.
	IDAutomatic *bool `yaml:"id_automatic,omitempty"`

	// ExpectError is the StoreError code the action must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`

	// ExpectUnchanged requires the action to leave the state untouched,
	// e.g. because validation rejected it.
	ExpectUnchanged bool `yaml:"expect_unchanged,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "resolve": resolve model/id and subset-match expect
	// - "row_count": check the table has count rows
	// - "absent": check no row is stored under id
	Type string `yaml:"type"`

	// Source selects the state: "store" (host state, default) or "static".
	Source string `yaml:"source,omitempty"`

	Model string `yaml:"model"`

	// ID addresses the row. resolve without an id resolves every row.
	ID any `yaml:"id,omitempty"`

	// Depth overrides the scenario depth (resolve only).
	Depth int `yaml:"depth,omitempty"`

	// Expect is subset-matched against the resolved value (resolve only).
	// Maps match when every expected key matches; lists must have equal
	// length and match element-wise.
	Expect any `yaml:"expect,omitempty"`

	// Count is the expected number of rows (row_count only).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertResolve  = "resolve"
	AssertRowCount = "row_count"
	AssertAbsent   = "absent"
)

// Assertion sources.
const (
	SourceStore  = "store"
	SourceStatic = "static"
)

// Fixtures is a file of static tables, as used by the CLI.
type Fixtures struct {
	Tables []TableStep `yaml:"tables"`
}

// LoadScenario reads and parses a scenario YAML file.
// The schema path is resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving a relative schema path
// against baseDir.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) && baseDir != "" {
		scenario.Schema = filepath.Join(baseDir, scenario.Schema)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarioFiles returns the .yaml and .yml files directly under dir,
// sorted.
func FindScenarioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// LoadFixtures reads a fixtures YAML file ({tables: [...]}).
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures file: %w", err)
	}

	var fixtures Fixtures
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, table := range fixtures.Tables {
		if err := validateTable(i, table); err != nil {
			return nil, fmt.Errorf("invalid fixtures: %w", err)
		}
	}
	return &fixtures, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
		return fmt.Errorf("schema not found: %s", s.Schema)
	}

	if s.Depth < 0 {
		return fmt.Errorf("depth must be non-negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, table := range s.Tables {
		if err := validateTable(i, table); err != nil {
			return err
		}
	}

	for i, step := range s.Actions {
		if err := validateAction(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateTable(index int, t TableStep) error {
	if t.Model == "" {
		return fmt.Errorf("tables[%d]: model is required", index)
	}
	if t.Rows == nil {
		return fmt.Errorf("tables[%d]: rows is required (use an empty list if no rows)", index)
	}
	return nil
}

func validateAction(index int, step ActionStep) error {
	if step.Model == "" {
		return fmt.Errorf("actions[%d]: model is required", index)
	}

	switch ir.ActionType(step.Type) {
	case ir.ActionAddAllModels:
		if step.DataList == nil {
			return fmt.Errorf("actions[%d]: data_list is required for %s", index, step.Type)
		}
	case ir.ActionAddModel:
		if step.Data == nil {
			return fmt.Errorf("actions[%d]: data is required for %s", index, step.Type)
		}
	case ir.ActionEditModel:
		if step.Data == nil {
			return fmt.Errorf("actions[%d]: data is required for %s", index, step.Type)
		}
	case ir.ActionDeleteModel:
		if step.ID == nil {
			return fmt.Errorf("actions[%d]: id is required for %s", index, step.Type)
		}
	case "":
		return fmt.Errorf("actions[%d]: type is required", index)
	default:
		return fmt.Errorf("actions[%d]: unknown action type %q", index, step.Type)
	}

	if step.ExpectError != "" && step.ExpectUnchanged {
		return fmt.Errorf("actions[%d]: expect_error and expect_unchanged are exclusive", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Model == "" {
		return fmt.Errorf("assertions[%d]: model is required", index)
	}

	switch a.Source {
	case "", SourceStore, SourceStatic:
	default:
		return fmt.Errorf("assertions[%d]: source must be %q or %q, got %q", index, SourceStore, SourceStatic, a.Source)
	}

	switch a.Type {
	case AssertResolve:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for resolve", index)
		}
		if a.Depth < 0 {
			return fmt.Errorf("assertions[%d]: depth must be non-negative", index)
		}
	case AssertRowCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for row_count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertAbsent:
		if a.ID == nil {
			return fmt.Errorf("assertions[%d]: id is required for absent", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
