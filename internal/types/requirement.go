// Package types provides type definitions for the structured data passed between the parser,
// the synthesizer and the execution collaborator.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NoConditions is the sentinel condition used when a requirement carries no qualifying context.
const NoConditions = "no specific conditions"

// UnknownFeature is the feature tag assigned when nothing in the text identifies an action.
const UnknownFeature = "unknown_feature"

// Requirement is the structured record extracted from one free-text requirement sentence.
type Requirement struct {
	Feature      string   `json:"feature" yaml:"feature" validate:"required"`
	Conditions   []string `json:"conditions" yaml:"conditions" validate:"required,min=1,dive,required"`
	Expected     string   `json:"expected" yaml:"expected" validate:"required"`
	OriginalText string   `json:"original_text" yaml:"original_text"`
}

// Validate checks that the record carries every field the synthesizer needs.
// Field names in the returned validator.ValidationErrors are the JSON keys.
func (r *Requirement) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	return validate.Struct(r)
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

// HasConditions reports whether the record carries at least one condition other than the sentinel.
func (r *Requirement) HasConditions() bool {
	if len(r.Conditions) == 0 {
		return false
	}
	return !(len(r.Conditions) == 1 && r.Conditions[0] == NoConditions)
}
