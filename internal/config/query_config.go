package config

import (
	"reflect"
)

// QueryOptions represents the subset of Settings that can be declared in
// a workspace's query: section, so a team can check in defaults (e.g.
// "always run offline in CI") instead of repeating flags.
// Field names match Settings for reflection-based merging.
type QueryOptions struct {
	MachineReadableOutput string `yaml:"machine_readable_output,omitempty"`
	Interactive           bool   `yaml:"interactive,omitempty"`
	Offline               bool   `yaml:"offline,omitempty"`
	Verbose               bool   `yaml:"verbose,omitempty"`
	Debug                 bool   `yaml:"debug,omitempty"`
}

// MergeWithSettings layers the workspace config's query: section under an
// existing Settings value. CLI flags already applied to settings always
// win: a field is only filled in from the config when settings still
// holds its zero value.
func (c *WorkspaceConfig) MergeWithSettings(settings *Settings) {
	if c == nil || settings == nil {
		return
	}
	mergeStructFields(c.Query, settings)
}

// mergeStructFields copies fields from source to target by name using
// reflection, but only into target fields still at their zero value —
// this is how CLI-flag precedence over workspace-config defaults is
// implemented without repeating the field list twice.
func mergeStructFields(source, target interface{}) {
	sourceValue := reflect.ValueOf(source)
	targetValue := reflect.ValueOf(target)

	if sourceValue.Kind() == reflect.Ptr {
		sourceValue = sourceValue.Elem()
	}
	if targetValue.Kind() == reflect.Ptr {
		targetValue = targetValue.Elem()
	}

	if sourceValue.Kind() != reflect.Struct || targetValue.Kind() != reflect.Struct {
		return
	}

	sourceType := sourceValue.Type()

	for i := 0; i < sourceValue.NumField(); i++ {
		field := sourceValue.Field(i)
		fieldType := sourceType.Field(i)
		targetField := targetValue.FieldByName(fieldType.Name)

		if !targetField.IsValid() || !targetField.CanSet() {
			continue
		}

		if isDefaultValue(targetField) && !isDefaultValue(field) {
			targetField.Set(field)
		}
	}
}

// isDefaultValue checks if a field has its default/zero value.
func isDefaultValue(field reflect.Value) bool {
	switch field.Kind() {
	case reflect.String:
		return field.String() == ""
	case reflect.Bool:
		return !field.Bool()
	case reflect.Slice:
		return field.Len() == 0
	case reflect.Interface:
		return field.IsNil()
	default:
		return field.IsZero()
	}
}
