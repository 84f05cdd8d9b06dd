package catalog

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/avi3tal/noxus-go/pkg/types"
)

var (
	// ErrNodeTypeNotFound is returned when a node type is not in the registry
	ErrNodeTypeNotFound = errors.New("node type not found")

	// ErrMissingValue is returned when a required config field is left unset
	ErrMissingValue = errors.New("missing required config value")
)

// FieldError reports a value rejected by a config field spec
type FieldError struct {
	// Key is the config field name
	Key string
	// Type is the declared data type of the field
	Type types.FieldType
	// Err is the underlying error
	Err error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrMissingValue) {
		return fmt.Sprintf("missing required config value for %s", e.Key)
	}
	return fmt.Sprintf("invalid config value for %s: [%v]", e.Key, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func visibleKeys(config map[string]ConfigFieldSpec) []string {
	keys := make([]string, 0, len(config))
	for k, v := range config {
		if v.Visible {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
