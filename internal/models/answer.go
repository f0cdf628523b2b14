package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type AnswerKind string

const (
	AnswerText        AnswerKind = "text"
	AnswerChoice      AnswerKind = "choice"
	AnswerMultiChoice AnswerKind = "multi_choice"
	AnswerScale       AnswerKind = "scale"
	AnswerBoolean     AnswerKind = "boolean"
)

// Answer holds exactly one of the variants named by Kind.
type Answer struct {
	Kind    AnswerKind `json:"kind"`
	Text    string     `json:"text,omitempty"`
	Choices []string   `json:"choices,omitempty"`
	Scale   int        `json:"scale,omitempty"`
	Bool    bool       `json:"bool,omitempty"`
}

func NewTextAnswer(text string) Answer {
	return Answer{Kind: AnswerText, Text: text}
}

func NewChoiceAnswer(value string) Answer {
	return Answer{Kind: AnswerChoice, Choices: []string{value}}
}

func NewMultiChoiceAnswer(values []string) Answer {
	return Answer{Kind: AnswerMultiChoice, Choices: append([]string(nil), values...)}
}

func NewScaleAnswer(value int) Answer {
	return Answer{Kind: AnswerScale, Scale: value}
}

func NewBooleanAnswer(value bool) Answer {
	return Answer{Kind: AnswerBoolean, Bool: value}
}

// String renders the answer as the text the keyword rules scan.
func (a Answer) String() string {
	switch a.Kind {
	case AnswerText:
		return a.Text
	case AnswerChoice, AnswerMultiChoice:
		return strings.Join(a.Choices, ", ")
	case AnswerScale:
		return strconv.Itoa(a.Scale)
	case AnswerBoolean:
		if a.Bool {
			return "yes"
		}
		return "no"
	}
	return ""
}

// Values returns the selected option values, or the single textual value otherwise.
func (a Answer) Values() []string {
	switch a.Kind {
	case AnswerChoice, AnswerMultiChoice:
		return a.Choices
	case AnswerText:
		if a.Text == "" {
			return nil
		}
		return []string{a.Text}
	case AnswerScale, AnswerBoolean:
		return []string{a.String()}
	}
	return nil
}

// Primary returns the first value of the answer, or "" when empty.
func (a Answer) Primary() string {
	values := a.Values()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (a Answer) IsZero() bool {
	return a.Kind == ""
}

type answerAlias Answer

// UnmarshalJSON accepts the tagged form as well as bare legacy values
// (string, number, boolean, list of strings).
func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = Answer{}
		return nil
	}

	switch trimmed[0] {
	case '{':
		var alias answerAlias
		if err := json.Unmarshal(trimmed, &alias); err != nil {
			return err
		}
		if alias.Kind == "" {
			return fmt.Errorf("answer object without kind")
		}
		*a = Answer(alias)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*a = NewTextAnswer(s)
		return nil
	case '[':
		var values []string
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return err
		}
		*a = NewMultiChoiceAnswer(values)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*a = NewBooleanAnswer(b)
		return nil
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*a = NewScaleAnswer(int(n))
		return nil
	}
}
