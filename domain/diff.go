package domain

// FieldChange records one field's transition inside an audit event.
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// ChangeSet maps field name to its change. Fields with equal values are
// omitted entirely; an empty set means the proposed snapshot is a no-op.
type ChangeSet map[string]FieldChange

// CreatedSentinel is the change-set key marking entity creation, where there
// is no prior state to diff against.
const CreatedSentinel = "created"

// Diff compares two snapshots field by field over the allow-list of mutable
// fields. Tag lists are compared by full contents and element order is
// significant: a reordered list counts as a change.
func Diff(existing, proposed BuyerFields) ChangeSet {
	changes := ChangeSet{}

	diffString := func(name, oldVal, newVal string) {
		if oldVal != newVal {
			changes[name] = FieldChange{Old: oldVal, New: newVal}
		}
	}

	diffString("fullName", existing.FullName, proposed.FullName)
	diffString("email", existing.Email, proposed.Email)
	diffString("phone", existing.Phone, proposed.Phone)
	diffString("city", string(existing.City), string(proposed.City))
	diffString("propertyType", string(existing.PropertyType), string(proposed.PropertyType))
	diffString("bhk", string(existing.BHK), string(proposed.BHK))
	diffString("purpose", string(existing.Purpose), string(proposed.Purpose))
	diffString("timeline", string(existing.Timeline), string(proposed.Timeline))
	diffString("source", string(existing.Source), string(proposed.Source))
	diffString("status", string(existing.Status), string(proposed.Status))
	diffString("notes", existing.Notes, proposed.Notes)

	if !equalInt64Ptr(existing.BudgetMin, proposed.BudgetMin) {
		changes["budgetMin"] = FieldChange{Old: existing.BudgetMin, New: proposed.BudgetMin}
	}
	if !equalInt64Ptr(existing.BudgetMax, proposed.BudgetMax) {
		changes["budgetMax"] = FieldChange{Old: existing.BudgetMax, New: proposed.BudgetMax}
	}
	if !equalTags(existing.Tags, proposed.Tags) {
		changes["tags"] = FieldChange{Old: existing.Tags, New: proposed.Tags}
	}

	return changes
}

// CreatedChangeSet builds the change-set for a freshly inserted buyer,
// carrying the full initial field values under the created sentinel.
func CreatedChangeSet(fields BuyerFields) ChangeSet {
	return ChangeSet{CreatedSentinel: FieldChange{Old: nil, New: fields}}
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
