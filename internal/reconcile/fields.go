package reconcile

import (
	"strings"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
)

// sectionField maps keys of a structured section onto a FieldSet key.
// Keys are tried in order; the first non-empty value wins.
type sectionField struct {
	section string
	keys    []string
	field   domain.FieldKey
}

var sectionFields = []sectionField{
	{sectionPolicyholder, []string{"full_name", "name"}, domain.FieldFullName},
	{sectionPolicyholder, []string{"address", "street_address"}, domain.FieldAddress},
	{sectionPolicyholder, []string{"city_state_zip"}, domain.FieldCityStateZip},
	{sectionPolicyholder, []string{"phone", "phone_number"}, domain.FieldPhone},
	{sectionPolicyholder, []string{"email"}, domain.FieldEmail},
	{sectionPolicyholder, []string{"dob", "date_of_birth"}, domain.FieldDOB},
	{sectionPolicyholder, []string{"gender"}, domain.FieldGender},
	{sectionPolicyholder, []string{"marital_status"}, domain.FieldMaritalStatus},

	{sectionPolicyInfo, []string{"policy_type"}, domain.FieldPolicyType},
	{sectionPolicyInfo, []string{"issue_date"}, domain.FieldIssueDate},
	{sectionPolicyInfo, []string{"term_length", "term"}, domain.FieldTermLength},
	{sectionPolicyInfo, []string{"renewal_date"}, domain.FieldRenewalDate},
	{sectionPolicyInfo, []string{"agent", "agent_name"}, domain.FieldAgent},
	{sectionPolicyInfo, []string{"agent_id"}, domain.FieldAgentID},
	{sectionPolicyInfo, []string{"office_phone"}, domain.FieldOfficePhone},

	{sectionVehicle, []string{"year/make/model", "year_make_model", "year make model", "vehicle"}, domain.FieldVehicle},
	{sectionVehicle, []string{"VIN Number", "vin", "VIN"}, domain.FieldVIN},
	{sectionVehicle, []string{"license_plate", "plate"}, domain.FieldLicensePlate},
	{sectionVehicle, []string{"body_type"}, domain.FieldBodyType},
	{sectionVehicle, []string{"usage_class", "usage"}, domain.FieldUsageClass},
	{sectionVehicle, []string{"annual_mileage", "mileage"}, domain.FieldAnnualMileage},
	{sectionVehicle, []string{"garaging_zip", "garage_zip"}, domain.FieldGaragingZip},
}

func (r sectionField) lookup(res *domain.OcrResult) string {
	var obj map[string]any
	switch r.section {
	case sectionPolicyholder:
		obj = res.PolicyholderDetails
	case sectionPolicyInfo:
		obj = res.PolicyInformation
	case sectionVehicle:
		obj = res.InsuredVehicle
	}
	if obj == nil {
		return ""
	}
	return firstString(obj, r.keys...)
}

func fillFromSections(f *domain.FieldSet, res *domain.OcrResult) {
	for _, r := range sectionFields {
		if v := r.lookup(res); v != "" {
			f.Set(r.field, v)
		}
	}
	// Some engine versions split the vehicle into separate keys.
	if f.Vehicle == "" && res.InsuredVehicle != nil {
		var parts []string
		for _, k := range []string{"year", "make", "model"} {
			if s := stringValue(res.InsuredVehicle[k]); s != "" {
				parts = append(parts, s)
			}
		}
		f.Vehicle = strings.Join(parts, " ")
	}
	if res.PolicyNumber == "" && res.PolicyInformation != nil {
		res.PolicyNumber = stringValue(res.PolicyInformation["policy_number"])
	}
}

// fillFromTopLevel maps an older flat payload whose keys are FieldSet keys.
func fillFromTopLevel(f *domain.FieldSet, payload map[string]any) {
	for _, k := range domain.FieldKeys {
		if s := stringValue(payload[string(k)]); s != "" {
			f.Set(k, s)
		}
	}
}

// fillTopLevel copies the fields that are top-level in every payload shape.
func fillTopLevel(f *domain.FieldSet, res *domain.OcrResult) {
	if res.PolicyNumber != "" {
		f.PolicyNumber = res.PolicyNumber
	}
	if res.EffectiveDates != nil {
		if res.EffectiveDates.Start != "" {
			f.EffectiveStart = res.EffectiveDates.Start
		}
		if res.EffectiveDates.End != "" {
			f.EffectiveEnd = res.EffectiveDates.End
		}
	}
}

// ApplyFields projects extracted fields back into res so the structured
// sections carry what the extraction engine found. Empty fields are skipped.
func ApplyFields(res *domain.OcrResult, f domain.FieldSet) {
	if f.PolicyNumber != "" {
		res.PolicyNumber = f.PolicyNumber
	}
	if f.EffectiveStart != "" || f.EffectiveEnd != "" {
		res.EffectiveDates = &domain.EffectiveDates{Start: f.EffectiveStart, End: f.EffectiveEnd}
	}
	for _, r := range sectionFields {
		v := f.Get(r.field)
		if v == "" {
			continue
		}
		switch r.section {
		case sectionPolicyholder:
			res.PolicyholderDetails = put(res.PolicyholderDetails, r.keys[0], v)
		case sectionPolicyInfo:
			res.PolicyInformation = put(res.PolicyInformation, r.keys[0], v)
		case sectionVehicle:
			res.InsuredVehicle = put(res.InsuredVehicle, r.keys[0], v)
		}
	}
}

func put(m map[string]any, k, v string) map[string]any {
	if m == nil {
		m = map[string]any{}
	}
	m[k] = v
	return m
}
