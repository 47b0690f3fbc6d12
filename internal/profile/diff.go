package profile

import "sort"

// ListDiff represents the difference between two versions of a list field.
type ListDiff struct {
	Added   []string // In current but not base
	Removed []string // In base but not current
}

// Empty reports whether nothing was added or removed.
func (d ListDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// FieldChange represents a single scalar difference.
type FieldChange struct {
	Base    string
	Current string
}

// Changes summarizes what differs between a saved profile and an edited one.
type Changes struct {
	Fields map[ScalarField]FieldChange
	Lists  map[ListField]ListDiff
	Photo  *FieldChange
}

// Empty reports whether the two profiles are equivalent.
func (c Changes) Empty() bool {
	return len(c.Fields) == 0 && len(c.Lists) == 0 && c.Photo == nil
}

// SortedFields returns the changed scalar fields in a stable order.
func (c Changes) SortedFields() []ScalarField {
	keys := make([]ScalarField, 0, len(c.Fields))
	for k := range c.Fields {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Diff computes the changes that turn base into current. List entries are
// compared as multisets, so reordering alone is not a change.
func Diff(base, current Profile) Changes {
	c := Changes{
		Fields: make(map[ScalarField]FieldChange),
		Lists:  make(map[ListField]ListDiff),
	}

	if b, cur := base.DateOfBirthString(), current.DateOfBirthString(); b != cur {
		c.Fields[DateOfBirth] = FieldChange{Base: b, Current: cur}
	}
	if base.SkinType != current.SkinType {
		c.Fields[SkinTypeField] = FieldChange{Base: string(base.SkinType), Current: string(current.SkinType)}
	}
	if base.Notes != current.Notes {
		c.Fields[Notes] = FieldChange{Base: base.Notes, Current: current.Notes}
	}

	for _, f := range ListFields {
		if d := diffList(base.List(f), current.List(f)); !d.Empty() {
			c.Lists[f] = d
		}
	}

	if b, cur := photoURL(base.ConcernPhoto), photoURL(current.ConcernPhoto); b != cur {
		c.Photo = &FieldChange{Base: b, Current: cur}
	}
	return c
}

func diffList(base, current []string) ListDiff {
	baseCount := toCounts(base)
	curCount := toCounts(current)

	var d ListDiff
	for _, item := range current {
		if baseCount[item] > 0 {
			baseCount[item]--
			continue
		}
		d.Added = append(d.Added, item)
	}
	for _, item := range base {
		if curCount[item] > 0 {
			curCount[item]--
			continue
		}
		d.Removed = append(d.Removed, item)
	}
	return d
}

func toCounts(items []string) map[string]int {
	m := make(map[string]int, len(items))
	for _, item := range items {
		m[item]++
	}
	return m
}

func photoURL(p *Photo) string {
	if p == nil {
		return ""
	}
	return p.URL
}
