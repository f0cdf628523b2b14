package quiz

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"broker-match-workers/internal/common/validation"
	"broker-match-workers/internal/models"
)

const maxTextAnswerLength = 2000

var choiceListSchema = map[string]interface{}{
	"oneOf": []interface{}{
		map[string]interface{}{"type": "string", "minLength": 1},
		map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]interface{}{"type": "string", "minLength": 1},
		},
	},
}

// AnswerSchema returns the JSON schema a raw answer must satisfy for the question.
func AnswerSchema(q *models.Question) map[string]interface{} {
	switch q.Format {
	case models.FormatText:
		return map[string]interface{}{"type": "string", "minLength": 1, "maxLength": maxTextAnswerLength}
	case models.FormatSingleChoice:
		return map[string]interface{}{"type": []interface{}{"string", "number"}, "minLength": 1}
	case models.FormatMultipleChoice, models.FormatMultipleSelect:
		return choiceListSchema
	case models.FormatScale:
		scale := DefaultScale
		if q.Scale != nil {
			scale = *q.Scale
		}
		return map[string]interface{}{"type": "integer", "minimum": scale.Min, "maximum": scale.Max}
	case models.FormatBoolean:
		return map[string]interface{}{"type": "boolean"}
	}
	return nil
}

// ParseAnswer resolves a raw client value into the answer variant the
// question's format calls for.
func ParseAnswer(q *models.Question, raw interface{}) (models.Answer, error) {
	if q == nil {
		return models.Answer{}, fmt.Errorf("%w: no question is being served", ErrInvalidAnswer)
	}

	raw = normalizeRaw(q.Format, raw)
	result, err := validation.Validate(AnswerSchema(q), raw)
	if err != nil {
		return models.Answer{}, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}
	if !result.Valid {
		return models.Answer{}, fmt.Errorf("%w: %s answer rejected: %s", ErrInvalidAnswer, q.Format, result.Error())
	}

	switch q.Format {
	case models.FormatText:
		text, ok := raw.(string)
		if !ok {
			return models.Answer{}, fmt.Errorf("%w: text answer must be a string", ErrInvalidAnswer)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return models.Answer{}, fmt.Errorf("%w: empty text answer", ErrInvalidAnswer)
		}
		return models.NewTextAnswer(text), nil

	case models.FormatSingleChoice:
		value, err := resolveOption(q, scalarString(raw))
		if err != nil {
			return models.Answer{}, err
		}
		return models.NewChoiceAnswer(value), nil

	case models.FormatMultipleChoice, models.FormatMultipleSelect:
		values, isList := stringList(raw)
		resolved := make([]string, 0, len(values))
		for _, v := range values {
			value, err := resolveOption(q, v)
			if err != nil {
				return models.Answer{}, err
			}
			resolved = append(resolved, value)
		}
		if q.Format == models.FormatMultipleChoice && !isList {
			return models.NewChoiceAnswer(resolved[0]), nil
		}
		return models.NewMultiChoiceAnswer(resolved), nil

	case models.FormatScale:
		value, ok := raw.(float64)
		if !ok {
			return models.Answer{}, fmt.Errorf("%w: scale answer must be a number", ErrInvalidAnswer)
		}
		return models.NewScaleAnswer(int(value)), nil

	case models.FormatBoolean:
		value, ok := raw.(bool)
		if !ok {
			return models.Answer{}, fmt.Errorf("%w: boolean answer must be true or false", ErrInvalidAnswer)
		}
		return models.NewBooleanAnswer(value), nil
	}
	return models.Answer{}, fmt.Errorf("%w: unsupported format %q", ErrInvalidAnswer, q.Format)
}

// normalizeRaw coerces the loose encodings clients send: numeric strings for
// scales, yes/no strings for booleans. Values are first reduced to their JSON
// shape, so every number becomes float64 and named string types become string.
func normalizeRaw(format models.QuestionFormat, raw interface{}) interface{} {
	raw = jsonShape(raw)
	v, ok := raw.(string)
	if !ok {
		return raw
	}
	switch format {
	case models.FormatScale:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	case models.FormatBoolean:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "true":
			return true
		case "no", "false":
			return false
		}
	}
	return raw
}

// jsonShape maps a Go value onto the types encoding/json decodes into.
// Maps and other kinds are returned unchanged for the schema to reject.
func jsonShape(raw interface{}) interface{} {
	if raw == nil {
		return nil
	}
	v := reflect.ValueOf(raw)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return raw
		}
		out := make([]interface{}, v.Len())
		for i := range out {
			out[i] = jsonShape(v.Index(i).Interface())
		}
		return out
	}
	return raw
}

func scalarString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(raw)
}

func stringList(raw interface{}) ([]string, bool) {
	items, ok := raw.([]interface{})
	if !ok {
		return []string{scalarString(raw)}, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, scalarString(item))
	}
	return out, true
}

// resolveOption accepts an option value or, case-insensitively, its label.
// Questions without options accept any value.
func resolveOption(q *models.Question, value string) (string, error) {
	if len(q.Options) == 0 || q.HasOption(value) {
		return value, nil
	}
	for _, o := range q.Options {
		if strings.EqualFold(o.Label, value) || strings.EqualFold(o.Value, value) {
			return o.Value, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not an option of question %d", ErrInvalidAnswer, value, q.Order)
}
