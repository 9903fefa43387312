package model

import (
	"fmt"
	"strings"
)

// Sensitivity is a user-selected health or comfort concern.
type Sensitivity string

const (
	SensitivityUV            Sensitivity = "uv"
	SensitivityPollen        Sensitivity = "pollen"
	SensitivityBreathing     Sensitivity = "breathing"
	SensitivitySmog          Sensitivity = "smog"
	SensitivityLowImpact     Sensitivity = "low_impact"
	SensitivityNoise         Sensitivity = "noise"
	SensitivityPrivacy       Sensitivity = "privacy"
	SensitivityAccessibility Sensitivity = "accessibility"
)

// AllSensitivities lists the enum in display order.
var AllSensitivities = []Sensitivity{
	SensitivityUV,
	SensitivityPollen,
	SensitivityBreathing,
	SensitivitySmog,
	SensitivityLowImpact,
	SensitivityNoise,
	SensitivityPrivacy,
	SensitivityAccessibility,
}

var sensitivityLabels = map[Sensitivity]string{
	SensitivityUV:            "UV sensitivity",
	SensitivityPollen:        "Pollen sensitivity",
	SensitivityBreathing:     "Breathing sensitivity",
	SensitivitySmog:          "Smog sensitivity",
	SensitivityLowImpact:     "Low impact",
	SensitivityNoise:         "Noise sensitivity",
	SensitivityPrivacy:       "Privacy",
	SensitivityAccessibility: "Accessibility",
}

// Label returns the human-facing name, e.g. "UV sensitivity".
func (s Sensitivity) Label() string {
	if l, ok := sensitivityLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseSensitivity accepts either the short code ("low_impact") or the label ("Low impact").
func ParseSensitivity(raw string) (Sensitivity, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, s := range AllSensitivities {
		if v == string(s) || v == strings.ToLower(sensitivityLabels[s]) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown sensitivity %q", raw)
}

// SensitivitySet is the set of sensitivities active for a request.
type SensitivitySet map[Sensitivity]struct{}

func NewSensitivitySet(items ...Sensitivity) SensitivitySet {
	set := make(SensitivitySet, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

// ParseSensitivitySet parses a list of codes or labels, failing on the first unknown one.
func ParseSensitivitySet(raw []string) (SensitivitySet, error) {
	set := make(SensitivitySet, len(raw))
	for _, r := range raw {
		s, err := ParseSensitivity(r)
		if err != nil {
			return nil, err
		}
		set[s] = struct{}{}
	}
	return set, nil
}

func (s SensitivitySet) Has(v Sensitivity) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in catalogue order.
func (s SensitivitySet) Sorted() []Sensitivity {
	out := make([]Sensitivity, 0, len(s))
	for _, v := range AllSensitivities {
		if s.Has(v) {
			out = append(out, v)
		}
	}
	return out
}
