package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ConfigField represents metadata about a config field extracted from struct tags
type ConfigField struct {
	Key      string   // e.g., "view.default_width"
	Default  string   // default value as string
	Desc     string   // description for help text
	Min      int      // minimum value for int fields (0 = no limit)
	Max      int      // maximum value for int fields (0 = no limit)
	Enum     []string // allowed values for string fields (nil = any)
	Type     string   // "string" or "int"
	Category string   // e.g., "view", "filter", "source"
}

var fieldCache []ConfigField

// configFields extracts all config fields from GlobalConfig using reflection
func configFields() []ConfigField {
	if fieldCache != nil {
		return fieldCache
	}

	var fields []ConfigField
	extractFields(reflect.TypeOf(GlobalConfig{}), &fields)

	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Key < fields[j].Key
	})

	fieldCache = fields
	return fields
}

// extractFields recursively extracts config fields from a struct
func extractFields(t reflect.Type, fields *[]ConfigField) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		configKey := field.Tag.Get("config")
		if configKey == "" {
			if field.Type.Kind() == reflect.Struct {
				extractFields(field.Type, fields)
			}
			continue
		}

		cf := ConfigField{
			Key:      configKey,
			Default:  field.Tag.Get("default"),
			Desc:     field.Tag.Get("desc"),
			Category: strings.Split(configKey, ".")[0],
		}
		if minStr := field.Tag.Get("min"); minStr != "" {
			cf.Min, _ = strconv.Atoi(minStr)
		}
		if maxStr := field.Tag.Get("max"); maxStr != "" {
			cf.Max, _ = strconv.Atoi(maxStr)
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			cf.Enum = strings.Split(enum, ",")
		}

		switch field.Type.Kind() {
		case reflect.Int:
			cf.Type = "int"
		case reflect.String:
			cf.Type = "string"
		}

		*fields = append(*fields, cf)
	}
}

// FindField finds a config field by key
func FindField(key string) *ConfigField {
	key = normalizeKey(key)
	for _, f := range configFields() {
		if f.Key == key {
			return &f
		}
	}
	return nil
}

// normalizeKey handles key aliases
func normalizeKey(key string) string {
	aliases := map[string]string{
		"view.width":    "view.default_width",
		"filter.mode":   "filter.policy",
		"source.max":    "source.limit",
		"view.minwidth": "view.min_width",
	}
	if normalized, ok := aliases[key]; ok {
		return normalized
	}
	return key
}

// lookupField walks cfg to the field tagged key.
func lookupField(cfg any, key string) (reflect.Value, bool) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return reflect.Value{}, false
	}

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	var nested reflect.Value
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == parts[0] {
			nested = v.Field(i)
			break
		}
	}
	if !nested.IsValid() || nested.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	nt := nested.Type()
	for i := 0; i < nt.NumField(); i++ {
		if nt.Field(i).Tag.Get("config") == key {
			return nested.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// getFieldValue gets a field value from a config struct using reflection
func getFieldValue(cfg any, key string) (string, bool) {
	fv, ok := lookupField(cfg, normalizeKey(key))
	if !ok {
		return "", false
	}
	switch fv.Kind() {
	case reflect.String:
		return fv.String(), true
	case reflect.Int:
		return strconv.FormatInt(fv.Int(), 10), true
	}
	return "", false
}

// setFieldValue sets a field value on a config struct using reflection
func setFieldValue(cfg any, key, value string) error {
	key = normalizeKey(key)

	field := FindField(key)
	if field == nil {
		return fmt.Errorf("unknown config key: %s", key)
	}

	fv, ok := lookupField(cfg, key)
	if !ok {
		return fmt.Errorf("field not found: %s", key)
	}

	switch fv.Kind() {
	case reflect.String:
		if field.Enum != nil && !containsKey(field.Enum, value) {
			return fmt.Errorf("invalid value %q for %s (want one of: %s)", value, key, strings.Join(field.Enum, ", "))
		}
		fv.SetString(value)
		return nil

	case reflect.Int:
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		if field.Min != 0 && intVal < field.Min {
			return fmt.Errorf("value %d is below minimum %d", intVal, field.Min)
		}
		if field.Max != 0 && intVal > field.Max {
			return fmt.Errorf("value %d exceeds maximum %d", intVal, field.Max)
		}
		fv.SetInt(int64(intVal))
		return nil
	}

	return fmt.Errorf("unsupported field type for %s", key)
}

// ListKeys returns all available global config keys
func ListKeys() []string {
	fields := configFields()
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

// GetFieldsByCategory returns config fields grouped by category
func GetFieldsByCategory() map[string][]ConfigField {
	result := make(map[string][]ConfigField)
	for _, f := range configFields() {
		result[f.Category] = append(result[f.Category], f)
	}
	return result
}

// GenerateHelpText generates help text for config options
func GenerateHelpText() string {
	var sb strings.Builder

	byCategory := GetFieldsByCategory()

	categories := []struct {
		key   string
		title string
	}{
		{"view", "View"},
		{"filter", "Filters"},
		{"source", "Data source"},
	}

	for _, cat := range categories {
		fields, ok := byCategory[cat.key]
		if !ok || len(fields) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "  %s:\n", cat.title)
		for _, f := range fields {
			defaultStr := ""
			if f.Default != "" {
				defaultStr = fmt.Sprintf(" (default: %s)", f.Default)
			}
			fmt.Fprintf(&sb, "    %-24s %s%s\n", f.Key, f.Desc, defaultStr)
		}
		sb.WriteString("\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}
