package nasc

import (
	"reflect"
	"strings"
	"sync"
)

// injectTag is the struct tag that marks a field for injection.
const injectTag = "inject"

// tagOptions represents parsed options from an inject tag.
type tagOptions struct {
	skip     bool // `inject:"-"`
	optional bool // leave the field zero when the service is not registered
}

// parseInjectTag parses an inject struct tag.
// Supported formats:
//   - `inject:""` - required injection
//   - `inject:"optional"` - optional injection
//   - `inject:"-"` - never injected
func parseInjectTag(tag string) tagOptions {
	if tag == "-" {
		return tagOptions{skip: true}
	}

	opts := tagOptions{}
	for _, part := range strings.Split(tag, ",") {
		if strings.TrimSpace(part) == "optional" {
			opts.optional = true
		}
	}
	return opts
}

// injectField is the cached description of one injectable struct field.
type injectField struct {
	index   int
	name    string
	typ     reflect.Type
	options tagOptions
}

// fieldCache memoizes the injectable fields of struct types so the tags of a
// type are parsed once per container.
type fieldCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]injectField
}

func newFieldCache() *fieldCache {
	return &fieldCache{
		fields: make(map[reflect.Type][]injectField),
	}
}

// injectable returns the exported, tagged fields of structType.
func (fc *fieldCache) injectable(structType reflect.Type) []injectField {
	fc.mu.RLock()
	fields, exists := fc.fields[structType]
	fc.mu.RUnlock()

	if exists {
		return fields
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fields, exists = fc.fields[structType]; exists {
		return fields
	}

	if structType.Kind() == reflect.Struct {
		for i := 0; i < structType.NumField(); i++ {
			field := structType.Field(i)
			tag, tagged := field.Tag.Lookup(injectTag)
			if !tagged || !field.IsExported() {
				continue
			}
			opts := parseInjectTag(tag)
			if opts.skip {
				continue
			}
			fields = append(fields, injectField{
				index:   i,
				name:    field.Name,
				typ:     field.Type,
				options: opts,
			})
		}
	}

	fc.fields[structType] = fields
	return fields
}

func (fc *fieldCache) clear() {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.fields = make(map[reflect.Type][]injectField)
}
