package profile

import "fmt"

// ListField names one of the ordered list fields of a Profile.
type ListField string

const (
	SkinIssues        ListField = "skin_issues"
	Allergies         ListField = "allergies"
	MedicalConditions ListField = "medical_conditions"
)

// ListFields lists every list field in display order.
var ListFields = []ListField{SkinIssues, Allergies, MedicalConditions}

// Label returns a human-readable name for the field.
func (f ListField) Label() string {
	switch f {
	case SkinIssues:
		return "Skin Issues"
	case Allergies:
		return "Allergies"
	case MedicalConditions:
		return "Medical Conditions"
	}
	return string(f)
}

// ScalarField names one of the single-valued fields of a Profile.
type ScalarField string

const (
	DateOfBirth   ScalarField = "date_of_birth"
	SkinTypeField ScalarField = "skin_type"
	Notes         ScalarField = "notes"
)

// ParseListField resolves a list field from its wire name. "allergy_records"
// is accepted as an alias of "allergies".
func ParseListField(name string) (ListField, error) {
	switch name {
	case string(SkinIssues):
		return SkinIssues, nil
	case string(Allergies), "allergy_records":
		return Allergies, nil
	case string(MedicalConditions):
		return MedicalConditions, nil
	}
	return "", fmt.Errorf("unknown list field %q", name)
}

// ParseScalarField resolves a scalar field from its wire name.
func ParseScalarField(name string) (ScalarField, error) {
	switch name {
	case string(DateOfBirth):
		return DateOfBirth, nil
	case string(SkinTypeField):
		return SkinTypeField, nil
	case string(Notes):
		return Notes, nil
	}
	return "", fmt.Errorf("unknown field %q", name)
}
