package domain

// SelectWorkflow picks the definition applicable to the given profile.
// Three tiers apply in order:
//
//  1. Exact match: the predicate's entity type equals the profile's and its
//     jurisdiction set contains the profile's jurisdiction.
//  2. Partial match: entity type equality only, ignoring jurisdiction.
//  3. Fallback: the first workflow in the list, regardless of type.
//
// The fallback is deliberately permissive so that an unmodelled profile still
// gets onboarded somehow; see DESIGN.md before tightening it. Returns nil
// only when the list itself is empty.
func SelectWorkflow(defs []WorkflowDefinition, profile Profile) *WorkflowDefinition {
	if len(defs) == 0 {
		return nil
	}

	for i := range defs {
		a := defs[i].AppliesTo
		if a == nil {
			continue
		}
		if a.EntityType == profile.EntityType && a.HasJurisdiction(profile.Jurisdiction) {
			return &defs[i]
		}
	}

	for i := range defs {
		a := defs[i].AppliesTo
		if a == nil {
			continue
		}
		if a.EntityType == profile.EntityType {
			return &defs[i]
		}
	}

	return &defs[0]
}
