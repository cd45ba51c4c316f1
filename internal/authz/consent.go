package authz

// MinConsentAge is the minimum age at which personal-data consent flags may be set.
const MinConsentAge = 15

// ConsentState is the stored consent-relevant part of a user.
type ConsentState struct {
	Age             *int
	CanBeContacted  bool
	CanDataBeShared bool
}

// ConsentInput holds the fields of a create or update request. Nil means the
// field was not supplied.
type ConsentInput struct {
	Age             *int
	CanBeContacted  *bool
	CanDataBeShared *bool
}

// Merge returns the state that results from applying in over s.
func (s ConsentState) Merge(in ConsentInput) ConsentState {
	out := s
	if in.Age != nil {
		age := *in.Age
		out.Age = &age
	}
	if in.CanBeContacted != nil {
		out.CanBeContacted = *in.CanBeContacted
	}
	if in.CanDataBeShared != nil {
		out.CanDataBeShared = *in.CanDataBeShared
	}
	return out
}

// ValidateConsent checks in against existing, which is nil on creation.
//
// The effective age is the incoming age, else the stored age. An unknown age
// fails the threshold. A flag that would be true after the write is rejected
// when the effective age is below MinConsentAge. Creation and update follow
// the same path.
func ValidateConsent(existing *ConsentState, in ConsentInput) error {
	if in.Age != nil && *in.Age < 0 {
		return Validation("age", "age must be a non-negative integer")
	}

	var base ConsentState
	if existing != nil {
		base = *existing
	}
	next := base.Merge(in)

	if next.Age != nil && *next.Age >= MinConsentAge {
		return nil
	}
	if next.CanBeContacted {
		return Validation("can_be_contacted", "requires the user to be at least 15 years old (GDPR)")
	}
	if next.CanDataBeShared {
		return Validation("can_data_be_shared", "requires the user to be at least 15 years old (GDPR)")
	}
	return nil
}
