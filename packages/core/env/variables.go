package env

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/harpi/packages/builtin"
	"github.com/abdul-hamid-achik/harpi/packages/core/parser"
)

// SystemEnvPrefix selects environment variables passed to a run as variables:
// HARPI_VAR_token=abc supplies $(token).
const SystemEnvPrefix = "HARPI_VAR_"

// RequiredVariableError reports a variable declared as "required" that no
// override supplied.
type RequiredVariableError struct {
	Name string
}

func (e *RequiredVariableError) Error() string {
	return fmt.Sprintf("Required variable '%s' not found in cli parameters", e.Name)
}

// ParseCLIVariables parses the --variables flag: pairs separated by commas,
// key and value separated by the first "=".
func ParseCLIVariables(s string) map[string]string {
	result := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return result
	}
	for _, pair := range strings.Split(s, ",") {
		key, value, _ := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		result[key] = value
	}
	return result
}

// LoadSystemEnv returns the environment variables starting with prefix, with
// the prefix removed.
func LoadSystemEnv(prefix string) map[string]string {
	result := make(map[string]string)
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok || !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
			continue
		}
		result[key[len(prefix):]] = value
	}
	return result
}

// MergeVariables combines override sources; later sources win.
func MergeVariables(sources ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// ApplyOverrides copies overrides into vars and fails when a variable declared
// as required was not overridden.
func ApplyOverrides(vars map[string]any, overrides map[string]string) error {
	var required []string
	for name, value := range vars {
		if s, ok := value.(string); ok && s == parser.RequiredValue {
			required = append(required, name)
		}
	}
	sort.Strings(required)

	for k, v := range overrides {
		vars[k] = v
	}

	for _, name := range required {
		if _, ok := overrides[name]; !ok {
			return &RequiredVariableError{Name: name}
		}
	}
	return nil
}

// GenerateDynamics evaluates every variable whose value is a dynamic
// expression such as $(guid) and returns the generated values by name.
func GenerateDynamics(vars parser.Variables, funcs *builtin.Registry) map[string]any {
	generated := make(map[string]any)
	for _, v := range vars {
		s, ok := v.Value.(string)
		if !ok {
			continue
		}
		if value, ok := funcs.Dynamic(s); ok {
			generated[v.Name] = value
		}
	}
	return generated
}
