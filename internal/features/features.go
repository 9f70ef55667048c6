package features

import "errors"

// Feature is one named functional area of the app that can be shown or
// hidden per user.
type Feature string

const (
	FeatureShopping Feature = "shopping"
	FeatureChores   Feature = "chores"
	FeatureTracker  Feature = "tracker"
	FeatureBills    Feature = "bills"
	FeatureBudget   Feature = "budget"
)

// ErrInvalidFeature is returned for feature names outside the registry.
// The registry is closed, so this is always a caller bug, never user input.
var ErrInvalidFeature = errors.New("unknown feature")

// All returns the full feature registry in stable display order.
func All() []Feature {
	return []Feature{
		FeatureShopping,
		FeatureChores,
		FeatureTracker,
		FeatureBills,
		FeatureBudget,
	}
}

// Valid reports whether f is part of the registry.
func Valid(f Feature) bool {
	switch f {
	case FeatureShopping, FeatureChores, FeatureTracker, FeatureBills, FeatureBudget:
		return true
	}
	return false
}

// Parse validates a raw feature name coming from a request path or form.
func Parse(raw string) (Feature, error) {
	f := Feature(raw)
	if !Valid(f) {
		return "", ErrInvalidFeature
	}
	return f, nil
}
