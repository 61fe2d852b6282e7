package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formrelay/pkg/model"
)

const (
	extensionType        = "x-formrelay-type"
	extensionOrder       = "x-formrelay-order"
	extensionPlaceholder = "x-formrelay-placeholder"
	extensionID          = "x-formrelay-id"
	extensionEndpoint    = "x-formrelay-endpoint"
)

// preferred request body media types, in order.
var mediaTypes = []string{
	"application/x-www-form-urlencoded",
	"application/json",
	"multipart/form-data",
}

// Operations lists the operation ids of POST operations that carry a
// request body, sorted.
func Operations(ctx context.Context, doc Document) ([]string, error) {
	spec, err := parse(ctx, doc)
	if err != nil {
		return nil, err
	}
	var ids []string
	for path, item := range spec.Paths.Map() {
		if item == nil || item.Post == nil || item.Post.RequestBody == nil {
			continue
		}
		ids = append(ids, opID(item.Post, path))
	}
	sort.Strings(ids)
	return ids, nil
}

// FormFromDocument converts the request body of operationID into a form.
// An empty operationID selects the only POST operation with a body.
func FormFromDocument(ctx context.Context, doc Document, operationID string) (model.FormModel, error) {
	spec, err := parse(ctx, doc)
	if err != nil {
		return model.FormModel{}, err
	}

	path, op, err := findOperation(spec, operationID)
	if err != nil {
		return model.FormModel{}, err
	}
	schema, err := requestSchema(op)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("openapi: operation %q: %w", operationID, err)
	}

	form := model.FormModel{
		ID:          opID(op, path),
		Endpoint:    endpointFor(spec, op, path),
		Method:      http.MethodPost,
		Title:       strings.TrimSpace(op.Summary),
		Description: strings.TrimSpace(op.Description),
	}
	if id, ok := stringExtension(op.Extensions, extensionID); ok {
		form.ID = id
	}
	if form.Title == "" {
		form.Title = strings.TrimSpace(schema.Title)
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	type ordered struct {
		field model.Field
		order int
	}
	var fields []ordered
	for name, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		field := fieldFromSchema(name, ref.Value, required[name])
		order, ok := intExtension(ref.Value.Extensions, extensionOrder)
		if !ok {
			order = int(^uint(0) >> 1)
		}
		fields = append(fields, ordered{field: field, order: order})
	}
	if len(fields) == 0 {
		return model.FormModel{}, fmt.Errorf("openapi: operation %q: request schema has no properties", form.ID)
	}
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].order != fields[j].order {
			return fields[i].order < fields[j].order
		}
		return fields[i].field.Name < fields[j].field.Name
	})
	for _, f := range fields {
		form.Fields = append(form.Fields, f.field)
	}
	return form, nil
}

func parse(ctx context.Context, doc Document) (*openapi3.T, error) {
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}
	return spec, nil
}

func findOperation(spec *openapi3.T, id string) (string, *openapi3.Operation, error) {
	var (
		matchPath string
		match     *openapi3.Operation
		count     int
	)
	for path, item := range spec.Paths.Map() {
		if item == nil || item.Post == nil || item.Post.RequestBody == nil {
			continue
		}
		if id == "" {
			count++
			matchPath, match = path, item.Post
			continue
		}
		if opID(item.Post, path) == id {
			return path, item.Post, nil
		}
	}
	switch {
	case id != "":
		return "", nil, fmt.Errorf("openapi: operation %q not found", id)
	case count == 0:
		return "", nil, errors.New("openapi: no POST operation with a request body")
	case count > 1:
		return "", nil, errors.New("openapi: several POST operations found, name one")
	}
	return matchPath, match, nil
}

func opID(op *openapi3.Operation, path string) string {
	if op.OperationID != "" {
		return op.OperationID
	}
	return "post:" + path
}

func requestSchema(op *openapi3.Operation) (*openapi3.Schema, error) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, errors.New("missing request body")
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range mediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value, nil
		}
	}
	for _, mt := range content {
		if mt != nil && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value, nil
		}
	}
	return nil, errors.New("request body has no schema")
}

func endpointFor(spec *openapi3.T, op *openapi3.Operation, path string) string {
	if endpoint, ok := stringExtension(op.Extensions, extensionEndpoint); ok {
		return endpoint
	}
	if len(spec.Servers) > 0 && spec.Servers[0] != nil {
		return strings.TrimRight(spec.Servers[0].URL, "/") + path
	}
	return path
}

func fieldFromSchema(name string, schema *openapi3.Schema, required bool) model.Field {
	field := model.Field{
		Name:        name,
		Type:        fieldType(schema),
		Required:    required,
		Label:       strings.TrimSpace(schema.Title),
		Description: strings.TrimSpace(schema.Description),
	}

	if placeholder, ok := stringExtension(schema.Extensions, extensionPlaceholder); ok {
		field.Placeholder = placeholder
	} else if example, ok := schema.Example.(string); ok {
		field.Placeholder = example
	}

	for _, value := range schema.Enum {
		field.Options = append(field.Options, fmt.Sprint(value))
	}

	if schema.MinLength > 0 {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRuleMinLength,
			Params: map[string]string{"value": strconv.FormatUint(schema.MinLength, 10)},
		})
	}
	if schema.MaxLength != nil {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRuleMaxLength,
			Params: map[string]string{"value": strconv.FormatUint(*schema.MaxLength, 10)},
		})
	}
	if pattern := strings.TrimSpace(schema.Pattern); pattern != "" {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRulePattern,
			Params: map[string]string{"pattern": pattern},
		})
	}
	return field
}

func fieldType(schema *openapi3.Schema) model.FieldType {
	if hint, ok := stringExtension(schema.Extensions, extensionType); ok {
		return model.ParseFieldType(hint)
	}
	if len(schema.Enum) > 0 {
		return model.FieldTypeSelect
	}
	switch strings.ToLower(schema.Format) {
	case "email":
		return model.FieldTypeEmail
	case "tel", "phone":
		return model.FieldTypeTel
	}
	return model.FieldTypeText
}

func stringExtension(ext map[string]any, key string) (string, bool) {
	raw, ok := ext[key]
	if !ok {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	return "", false
}

func intExtension(ext map[string]any, key string) (int, bool) {
	raw, ok := ext[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	case json.RawMessage:
		var n float64
		if err := json.Unmarshal(v, &n); err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
