package domain

// FieldKey names one of the 25 insurance-domain fields.
type FieldKey string

const (
	FieldPolicyNumber   FieldKey = "policy_number"
	FieldEffectiveStart FieldKey = "effective_start"
	FieldEffectiveEnd   FieldKey = "effective_end"
	FieldFullName       FieldKey = "full_name"
	FieldAddress        FieldKey = "address"
	FieldCityStateZip   FieldKey = "city_state_zip"
	FieldPhone          FieldKey = "phone"
	FieldEmail          FieldKey = "email"
	FieldDOB            FieldKey = "dob"
	FieldGender         FieldKey = "gender"
	FieldMaritalStatus  FieldKey = "marital_status"
	FieldPolicyType     FieldKey = "policy_type"
	FieldIssueDate      FieldKey = "issue_date"
	FieldTermLength     FieldKey = "term_length"
	FieldRenewalDate    FieldKey = "renewal_date"
	FieldAgent          FieldKey = "agent"
	FieldAgentID        FieldKey = "agent_id"
	FieldOfficePhone    FieldKey = "office_phone"
	FieldVehicle        FieldKey = "vehicle"
	FieldVIN            FieldKey = "vin"
	FieldLicensePlate   FieldKey = "license_plate"
	FieldBodyType       FieldKey = "body_type"
	FieldUsageClass     FieldKey = "usage_class"
	FieldAnnualMileage  FieldKey = "annual_mileage"
	FieldGaragingZip    FieldKey = "garaging_zip"
)

// FieldKeys is the canonical key order, also used as the export column order.
var FieldKeys = []FieldKey{
	FieldPolicyNumber, FieldEffectiveStart, FieldEffectiveEnd,
	FieldFullName, FieldAddress, FieldCityStateZip, FieldPhone, FieldEmail,
	FieldDOB, FieldGender, FieldMaritalStatus,
	FieldPolicyType, FieldIssueDate, FieldTermLength, FieldRenewalDate,
	FieldAgent, FieldAgentID, FieldOfficePhone,
	FieldVehicle, FieldVIN, FieldLicensePlate, FieldBodyType, FieldUsageClass,
	FieldAnnualMileage, FieldGaragingZip,
}

// FieldLabels maps each key to its human-readable export header.
var FieldLabels = map[FieldKey]string{
	FieldPolicyNumber:   "Policy Number",
	FieldEffectiveStart: "Effective Start",
	FieldEffectiveEnd:   "Effective End",
	FieldFullName:       "Full Name",
	FieldAddress:        "Address",
	FieldCityStateZip:   "City/State/ZIP",
	FieldPhone:          "Phone",
	FieldEmail:          "Email",
	FieldDOB:            "Date of Birth",
	FieldGender:         "Gender",
	FieldMaritalStatus:  "Marital Status",
	FieldPolicyType:     "Policy Type",
	FieldIssueDate:      "Issue Date",
	FieldTermLength:     "Term Length",
	FieldRenewalDate:    "Renewal Date",
	FieldAgent:          "Agent",
	FieldAgentID:        "Agent ID",
	FieldOfficePhone:    "Office Phone",
	FieldVehicle:        "Vehicle",
	FieldVIN:            "VIN",
	FieldLicensePlate:   "License Plate",
	FieldBodyType:       "Body Type",
	FieldUsageClass:     "Usage Class",
	FieldAnnualMileage:  "Annual Mileage",
	FieldGaragingZip:    "Garaging ZIP",
}

// FieldSet is the fixed 25-key normalized output. Every value defaults to "".
type FieldSet struct {
	PolicyNumber   string `json:"policy_number"`
	EffectiveStart string `json:"effective_start"`
	EffectiveEnd   string `json:"effective_end"`
	FullName       string `json:"full_name"`
	Address        string `json:"address"`
	CityStateZip   string `json:"city_state_zip"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	DOB            string `json:"dob"`
	Gender         string `json:"gender"`
	MaritalStatus  string `json:"marital_status"`
	PolicyType     string `json:"policy_type"`
	IssueDate      string `json:"issue_date"`
	TermLength     string `json:"term_length"`
	RenewalDate    string `json:"renewal_date"`
	Agent          string `json:"agent"`
	AgentID        string `json:"agent_id"`
	OfficePhone    string `json:"office_phone"`
	Vehicle        string `json:"vehicle"`
	VIN            string `json:"vin"`
	LicensePlate   string `json:"license_plate"`
	BodyType       string `json:"body_type"`
	UsageClass     string `json:"usage_class"`
	AnnualMileage  string `json:"annual_mileage"`
	GaragingZip    string `json:"garaging_zip"`
}

// Ptr returns a pointer to the field named by key, or nil for an unknown key.
func (f *FieldSet) Ptr(key FieldKey) *string {
	switch key {
	case FieldPolicyNumber:
		return &f.PolicyNumber
	case FieldEffectiveStart:
		return &f.EffectiveStart
	case FieldEffectiveEnd:
		return &f.EffectiveEnd
	case FieldFullName:
		return &f.FullName
	case FieldAddress:
		return &f.Address
	case FieldCityStateZip:
		return &f.CityStateZip
	case FieldPhone:
		return &f.Phone
	case FieldEmail:
		return &f.Email
	case FieldDOB:
		return &f.DOB
	case FieldGender:
		return &f.Gender
	case FieldMaritalStatus:
		return &f.MaritalStatus
	case FieldPolicyType:
		return &f.PolicyType
	case FieldIssueDate:
		return &f.IssueDate
	case FieldTermLength:
		return &f.TermLength
	case FieldRenewalDate:
		return &f.RenewalDate
	case FieldAgent:
		return &f.Agent
	case FieldAgentID:
		return &f.AgentID
	case FieldOfficePhone:
		return &f.OfficePhone
	case FieldVehicle:
		return &f.Vehicle
	case FieldVIN:
		return &f.VIN
	case FieldLicensePlate:
		return &f.LicensePlate
	case FieldBodyType:
		return &f.BodyType
	case FieldUsageClass:
		return &f.UsageClass
	case FieldAnnualMileage:
		return &f.AnnualMileage
	case FieldGaragingZip:
		return &f.GaragingZip
	}
	return nil
}

// Get returns the value for key, "" when unset or unknown.
func (f *FieldSet) Get(key FieldKey) string {
	if p := f.Ptr(key); p != nil {
		return *p
	}
	return ""
}

// Set assigns value to key. Unknown keys are ignored.
func (f *FieldSet) Set(key FieldKey, value string) {
	if p := f.Ptr(key); p != nil {
		*p = value
	}
}

// FilledCount returns how many keys hold a non-empty value.
func (f *FieldSet) FilledCount() int {
	n := 0
	for _, k := range FieldKeys {
		if f.Get(k) != "" {
			n++
		}
	}
	return n
}

// Values returns the field values in FieldKeys order.
func (f *FieldSet) Values() []string {
	out := make([]string, len(FieldKeys))
	for i, k := range FieldKeys {
		out[i] = f.Get(k)
	}
	return out
}
