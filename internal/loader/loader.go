// Package loader reads manifest.yaml and plan.yaml documents from disk and
// builds the core's manifest.RawComponent / plan.Plan structs from them.
// It is strictly an ambient, CLI-facing concern: no core package imports
// it, since the core operates on already-parsed structs and must stay
// agnostic to whatever document format a caller loaded them from.
//
// Both documents are walked as yaml.Node trees rather than unmarshaled
// directly into the target structs. Two details need that: a component's
// "path" field may be written as a single string or a YAML sequence, and
// walking the node tree keeps every field's appearance position instead of
// losing it to Go's unordered map decoding. A task with no "id" field is
// assigned a generated one, so authors can sketch a plan's task bodies
// before settling on stable identifiers.
package loader

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"varp/internal/manifest"
	"varp/internal/plan"
)

// LoadManifest reads and parses a manifest.yaml document at path.
func LoadManifest(fs afero.Fs, root, path string) (*manifest.Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("loader: read manifest %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loader: parse manifest %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("loader: manifest %s is empty", path)
	}
	rootNode := doc.Content[0]

	version := "1"
	var rawComponents []manifest.RawComponent
	for i := 0; i+1 < len(rootNode.Content); i += 2 {
		key := rootNode.Content[i].Value
		val := rootNode.Content[i+1]
		switch key {
		case "version":
			version = val.Value
		case "components":
			for _, compNode := range val.Content {
				rc, err := decodeComponent(compNode)
				if err != nil {
					return nil, fmt.Errorf("loader: manifest %s: %w", path, err)
				}
				rawComponents = append(rawComponents, rc)
			}
		}
	}

	return manifest.New(root, version, rawComponents)
}

func decodeComponent(node *yaml.Node) (manifest.RawComponent, error) {
	var rc manifest.RawComponent
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "name":
			rc.Name = val.Value
		case "path":
			rc.PathEntries = decodeStringOrList(val)
		case "deps":
			rc.Deps = decodeStringList(val)
		case "docs":
			rc.Docs = decodeStringOrList(val)
		case "tags":
			rc.Tags = decodeStringList(val)
		case "env":
			rc.Env = decodeStringList(val)
		case "stability":
			rc.Stability = manifest.Stability(val.Value)
		case "test":
			rc.Test = val.Value
		}
	}
	if rc.Name == "" {
		return rc, fmt.Errorf("component missing required \"name\" field")
	}
	return rc, nil
}

func decodeStringOrList(node *yaml.Node) []string {
	if node.Kind == yaml.ScalarNode {
		return []string{node.Value}
	}
	return decodeStringList(node)
}

func decodeStringList(node *yaml.Node) []string {
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(node.Content))
	for _, c := range node.Content {
		out = append(out, c.Value)
	}
	return out
}

// LoadPlan reads and parses a plan.yaml document at path.
func LoadPlan(fs afero.Fs, path string) (plan.Plan, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return plan.Plan{}, fmt.Errorf("loader: read plan %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return plan.Plan{}, fmt.Errorf("loader: parse plan %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return plan.Plan{}, fmt.Errorf("loader: plan %s is empty", path)
	}
	rootNode := doc.Content[0]

	var p plan.Plan
	for i := 0; i+1 < len(rootNode.Content); i += 2 {
		key := rootNode.Content[i].Value
		val := rootNode.Content[i+1]
		switch key {
		case "metadata":
			p.Metadata = decodeStringMap(val)
		case "contract":
			p.Contract = decodeContract(val)
		case "tasks":
			for _, taskNode := range val.Content {
				t, err := decodeTask(taskNode)
				if err != nil {
					return plan.Plan{}, fmt.Errorf("loader: plan %s: %w", path, err)
				}
				p.Tasks = append(p.Tasks, t)
			}
		}
	}
	return p, nil
}

func decodeStringMap(node *yaml.Node) map[string]string {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	out := make(map[string]string, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out[node.Content[i].Value] = node.Content[i+1].Value
	}
	return out
}

func decodeContract(node *yaml.Node) plan.Contract {
	var c plan.Contract
	if node == nil || node.Kind != yaml.MappingNode {
		return c
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "preconditions":
			c.Preconditions = decodeConditions(val)
		case "invariants":
			c.Invariants = decodeConditions(val)
		case "postconditions":
			c.Postconditions = decodeConditions(val)
		}
	}
	return c
}

func decodeConditions(node *yaml.Node) []plan.Condition {
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]plan.Condition, 0, len(node.Content))
	for _, cn := range node.Content {
		var c plan.Condition
		for i := 0; i+1 < len(cn.Content); i += 2 {
			key := cn.Content[i].Value
			val := cn.Content[i+1]
			switch key {
			case "id":
				c.ID = val.Value
			case "verify":
				c.Verify = val.Value
			case "critical":
				c.Critical = val.Value == "true"
			}
		}
		out = append(out, c)
	}
	return out
}

func decodeTask(node *yaml.Node) (plan.Task, error) {
	var t plan.Task
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "id":
			t.ID = val.Value
		case "description":
			t.Description = val.Value
		case "action":
			t.Action = val.Value
		case "values":
			t.Values = decodeStringList(val)
		case "touches":
			t.Touches = decodeTouches(val)
		case "mutexes":
			t.Mutexes = decodeStringList(val)
		case "metadata":
			t.Metadata = decodeStringMap(val)
		}
	}
	if t.ID == "" {
		t.ID = fmt.Sprintf("task_%s", uuid.New().String()[:8])
	}
	return t, nil
}

func decodeTouches(node *yaml.Node) plan.Touches {
	var touches plan.Touches
	if node == nil || node.Kind != yaml.MappingNode {
		return touches
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "reads":
			touches.Reads = decodeStringList(val)
		case "writes":
			touches.Writes = decodeStringList(val)
		}
	}
	return touches
}
