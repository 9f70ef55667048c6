package features

import "context"

// Subject is the resolved identity a visibility decision applies to.
// Local identities belong to the trusted single-operator mode and bypass
// the store entirely.
type Subject struct {
	UserID uint
	Local  bool
}

// Store is the persisted visibility mapping. A missing override row means
// visible, so both methods return effective values, never raw rows.
type Store interface {
	GetFeatureVisibility(ctx context.Context, userID uint, feature Feature) (bool, error)
	GetAllFeatureVisibility(ctx context.Context, userID uint) (map[Feature]bool, error)
}

// Service is the single source of truth for effective feature visibility.
// Both the route guard and the navigation rendering must go through it so
// UI hiding and request enforcement can never diverge.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// IsVisible returns the effective visibility of a feature for a subject.
// Local subjects always see everything. Admin status grants nothing here:
// an admin's own visibility follows the stored overrides like anyone else's.
func (s *Service) IsVisible(ctx context.Context, sub Subject, feature Feature) (bool, error) {
	if !Valid(feature) {
		return false, ErrInvalidFeature
	}
	if sub.Local {
		return true, nil
	}
	return s.store.GetFeatureVisibility(ctx, sub.UserID, feature)
}

// VisibleFeatures returns the effective visibility for every registry
// feature. The result always contains exactly the registry keys.
func (s *Service) VisibleFeatures(ctx context.Context, sub Subject) (map[Feature]bool, error) {
	if sub.Local {
		all := make(map[Feature]bool, len(All()))
		for _, f := range All() {
			all[f] = true
		}
		return all, nil
	}
	return s.store.GetAllFeatureVisibility(ctx, sub.UserID)
}
