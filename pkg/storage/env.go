package storage

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// varPattern matches {{VAR_NAME}} or {{env:VAR_NAME}}, whitespace tolerated inside the braces
var varPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// refPattern matches only references that name a variable
var refPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// LoadVariables reads environment variables from a YAML file. Both a plain
// mapping (KEY: value) and a list of {key, value} items are accepted; file
// order is preserved.
func LoadVariables(filePath string) ([]Variable, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read variables file: %w", err)
	}
	return ParseVariables(data)
}

// ParseVariables decodes YAML variable definitions. See LoadVariables.
func ParseVariables(data []byte) ([]Variable, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse variables YAML: %w", err)
	}
	vars := []Variable{}
	if len(root.Content) == 0 {
		return vars, nil
	}

	node := root.Content[0]
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			vars = append(vars, Variable{
				Key:   node.Content[i].Value,
				Value: resolveEnvRefs(node.Content[i+1].Value),
			})
		}
	case yaml.SequenceNode:
		var items []Variable
		if err := node.Decode(&items); err != nil {
			return nil, fmt.Errorf("failed to parse variables YAML: %w", err)
		}
		for _, v := range items {
			vars = append(vars, Variable{Key: v.Key, Value: resolveEnvRefs(v.Value)})
		}
	default:
		return nil, fmt.Errorf("failed to parse variables YAML: expected a mapping or a list, got %s", kindName(node.Kind))
	}
	return vars, nil
}

// MarshalVariables renders variables as a YAML list, the inverse of ParseVariables.
func MarshalVariables(vars []Variable) ([]byte, error) {
	type item struct {
		Key   string `yaml:"key"`
		Value string `yaml:"value"`
	}
	items := make([]item, len(vars))
	for i, v := range vars {
		items[i] = item{Key: v.Key, Value: v.Value}
	}
	data, err := yaml.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variables: %w", err)
	}
	return data, nil
}

// SubstituteVariables replaces {{VAR}} placeholders with values from vars.
// When a key appears more than once the last definition wins.
func SubstituteVariables(text string, vars []Variable) string {
	if text == "" {
		return text
	}
	lookup := make(map[string]string, len(vars))
	for _, v := range vars {
		if v.Key != "" {
			lookup[v.Key] = v.Value
		}
	}

	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		varName := strings.TrimSpace(varPattern.FindStringSubmatch(match)[1])

		// Check for env: prefix (reference to system environment)
		if strings.HasPrefix(varName, "env:") {
			if val := os.Getenv(strings.TrimPrefix(varName, "env:")); val != "" {
				return val
			}
			return match
		}

		if val, ok := lookup[varName]; ok {
			return val
		}
		return match // Keep original if not found
	})
}

// VariableReferences lists the variable names referenced in text, without
// duplicates, in order of first appearance.
func VariableReferences(text string) []string {
	seen := make(map[string]bool)
	refs := []string{}
	for _, m := range refPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			refs = append(refs, m[1])
		}
	}
	return refs
}

// MissingVariables lists references in text that vars does not define.
func MissingVariables(text string, vars []Variable) []string {
	defined := make(map[string]bool, len(vars))
	for _, v := range vars {
		defined[v.Key] = true
	}
	missing := []string{}
	for _, ref := range VariableReferences(text) {
		if !defined[ref] {
			missing = append(missing, ref)
		}
	}
	return missing
}

// resolveEnvRefs resolves {{env:VAR}} references in a string
func resolveEnvRefs(text string) string {
	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		varName := strings.TrimSpace(varPattern.FindStringSubmatch(match)[1])
		if strings.HasPrefix(varName, "env:") {
			if val := os.Getenv(strings.TrimPrefix(varName, "env:")); val != "" {
				return val
			}
		}
		return match
	})
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "unknown node"
	}
}
