// Package prompt fills a form session interactively, one scalar field at a
// time.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/giantswarm/schemaform/pkg/form"
	"github.com/giantswarm/schemaform/pkg/jsonschema"
	"github.com/giantswarm/schemaform/pkg/schema"
	"github.com/giantswarm/schemaform/pkg/validation"
)

// Fill prompts for every scalar field of the session's schema, nested objects
// included, and submits the result. Answers that fail validation are asked
// again. Arrays and transformed maps are left to the loaded data.
func Fill(ctx context.Context, session *form.Session, driver Driver) (form.Result, error) {
	if session == nil {
		return form.Result{}, errors.New("prompt: session is nil")
	}
	if driver == nil {
		return form.Result{}, errors.New("prompt: driver is nil")
	}

	data, _ := jsonschema.Clone(session.Data()).(map[string]any)
	if data == nil {
		data = make(map[string]any)
	}
	f := &filler{
		session: session,
		driver:  driver,
		root:    session.Schema(),
		data:    data,
	}
	if err := f.object(ctx, f.root, nil, data); err != nil {
		return form.Result{}, err
	}

	result, ok := session.Submit()
	if !ok {
		if err := driver.Info(ctx, fmt.Sprintf("%d validation errors remain", len(result.Errors))); err != nil {
			return result, err
		}
	}
	return result, nil
}

type filler struct {
	session *form.Session
	driver  Driver
	root    map[string]any
	data    map[string]any
}

func (f *filler) object(ctx context.Context, node map[string]any, path []string, values map[string]any) error {
	props := schema.Properties(jsonschema.ResolveRef(node, f.root))
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw, ok := props[key].(map[string]any)
		if !ok {
			continue
		}
		child := jsonschema.ResolveRef(raw, f.root)
		childPath := append(append([]string(nil), path...), key)

		kind := schema.KindOf(child)
		switch {
		case kind == schema.KindObject:
			nested, _ := values[key].(map[string]any)
			if nested == nil {
				nested = make(map[string]any)
				values[key] = nested
			}
			if err := f.object(ctx, child, childPath, nested); err != nil {
				return err
			}
		case kind.IsScalar() && !readOnly(child):
			if err := f.field(ctx, child, childPath, values); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *filler) field(ctx context.Context, node map[string]any, path []string, values map[string]any) error {
	key := path[len(path)-1]
	id := f.session.FieldID(path...)
	property := validation.PropertyPath(path)

	for {
		value, set, err := f.ask(ctx, node, key, values[key])
		if err != nil {
			return err
		}
		if set {
			values[key] = value
		} else {
			delete(values, key)
		}

		result := f.session.Change(f.data, id)
		var problems []string
		for _, e := range result.VisibleErrors {
			if e.Property == property {
				problems = append(problems, e.Message)
			}
		}
		if len(problems) == 0 {
			return nil
		}
		msg := fmt.Sprintf("Invalid %s: %s", strings.Join(path, "."), strings.Join(problems, "; "))
		if err := f.driver.Info(ctx, msg); err != nil {
			return err
		}
	}
}

// ask prompts for one value. set is false when the answer leaves the field
// empty.
func (f *filler) ask(ctx context.Context, node map[string]any, key string, current any) (any, bool, error) {
	label := key
	if title, ok := node["title"].(string); ok && strings.TrimSpace(title) != "" {
		label = title
	}
	help, _ := node["description"].(string)
	fallback, _ := schema.Default(node)
	if current == nil {
		current = fallback
	}

	if enum, ok := node["enum"].([]any); ok && len(enum) > 0 {
		options := make([]string, 0, len(enum))
		defaultIdx := -1
		for idx, option := range enum {
			options = append(options, fmt.Sprint(option))
			if current != nil && fmt.Sprint(current) == options[idx] {
				defaultIdx = idx
			}
		}
		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         help,
		})
		if err != nil {
			return nil, false, err
		}
		if idx < 0 || idx >= len(enum) {
			return nil, false, nil
		}
		return enum[idx], true, nil
	}

	switch schema.KindOf(node) {
	case schema.KindBoolean:
		def, _ := current.(bool)
		answer, err := f.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: def, Help: help})
		if err != nil {
			return nil, false, err
		}
		return answer, true, nil
	case schema.KindNumber, schema.KindInteger:
		integer := schema.KindOf(node) == schema.KindInteger
		def := ""
		if number, ok := current.(float64); ok {
			def = strconv.FormatFloat(number, 'f', -1, 64)
		}
		answer, err := f.driver.Input(ctx, InputConfig{
			Message: label,
			Default: def,
			Help:    help,
			Validator: func(text string) error {
				_, err := parseNumber(text, integer)
				return err
			},
		})
		if err != nil {
			return nil, false, err
		}
		if strings.TrimSpace(answer) == "" {
			return nil, false, nil
		}
		number, err := parseNumber(answer, integer)
		if err != nil {
			return nil, false, fmt.Errorf("prompt: %s: %w", key, err)
		}
		return number, true, nil
	default:
		def, _ := current.(string)
		answer, err := f.driver.Input(ctx, InputConfig{Message: label, Default: def, Help: help})
		if err != nil {
			return nil, false, err
		}
		if answer == "" {
			return nil, false, nil
		}
		return answer, true, nil
	}
}

// parseNumber accepts an empty answer; numbers are returned as float64 like
// decoded JSON.
func parseNumber(text string, integer bool) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	if integer {
		value, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", text)
		}
		return float64(value), nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", text)
	}
	return value, nil
}

func readOnly(node map[string]any) bool {
	flag, _ := node["readOnly"].(bool)
	return flag
}
