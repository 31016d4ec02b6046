package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
)

// rule is one entry of the flat extraction table. A rule fills its fields from
// the capture groups of sameLine, or, when label matches a whole line, from the
// capture groups of next applied to the following non-empty line.
type rule struct {
	name   string
	fields []domain.FieldKey
	// secondary receives a second, distinct value once fields[0] is taken.
	secondary domain.FieldKey

	sameLine *regexp.Regexp
	label    *regexp.Regexp
	next     *regexp.Regexp
	exclude  *regexp.Regexp

	// multi applies sameLine to every match on the line, not just the first.
	multi bool
	// unclaimedOnly skips lines another rule already matched.
	unclaimedOnly bool
	// passive matches do not claim the line.
	passive bool

	accept    func(value string) bool
	normalize func(value string) string
	gate      func(lines []string, i int) bool
}

// labeled builds `label <sep> (value)`. The label is always case-insensitive;
// ci makes the value case-insensitive too.
func labeled(label, value string, ci bool) *regexp.Regexp {
	v := `(` + value + `)`
	if ci {
		v = `(?i:` + v + `)`
	}
	return regexp.MustCompile(`(?i:\b(?:` + label + `))` + labelSep + v)
}

// labelLine matches a line holding only the label, optionally followed by ':'.
func labelLine(label string) *regexp.Regexp {
	return regexp.MustCompile(`^(?i:(?:` + label + `))\s*[:#]?$`)
}

func whole(value string, ci bool) *regexp.Regexp {
	if ci {
		return regexp.MustCompile(`(?i)^(` + value + `)$`)
	}
	return regexp.MustCompile(`^(` + value + `)$`)
}

const (
	policyLabel   = `policy\s*(?:number|no\.?|num\.?|#)`
	rangeSep      = `\s*(?:-|\x{2013}|\x{2014}|to|through|thru)\s*`
	rangeLabel    = `(?:policy\s+|coverage\s+)?(?:effective\s+dates?|period|term\s+dates?)`
	officeLabel   = `(?:office|agent|agency)\s*(?:phone|tel(?:ephone)?|ph\.?|number|#)?`
	plateLabel    = `license\s*plate(?:\s*(?:no\.?|number|#))?|plate\s*(?:no\.?|number|#)|tag\s*(?:no\.?|number|#)`
	vehicleLabel  = `(?:insured\s+)?vehicle(?:\s+description)?|year\s*/\s*make\s*/\s*model|year,?\s+make,?\s+(?:and\s+|&\s+)?model`
	vehicleValue  = `(?:19|20)\d{2}\s+[A-Za-z][A-Za-z0-9-]*(?:\s+[A-Za-z0-9-]+){0,3}`
	dobLabel      = `date\s+of\s+birth|d\.?o\.?b\.?|birth\s*date`
	policyTypeLbl = `policy\s+type|coverage\s+type|type\s+of\s+policy|plan\s+type`
	agentIDLabel  = `(?:agent|producer)\s*(?:id|code|no\.?|number|#)`
	agentLabel    = `(?:your\s+)?(?:agent|producer)(?:\s+name)?`
	issueLabel    = `issue(?:d)?\s*date|date\s+issued|issued(?:\s+on)?`
	renewalLabel  = `renewal\s*date|renews(?:\s+on)?|renewal`
	termLabel     = `(?:policy\s+)?term(?:\s+length)?`
	mileageLabel  = `annual\s+mileage|annual\s+miles|estimated\s+annual\s+miles|miles\s+per\s+year|mileage`
	garagingLabel = `garag(?:ing|e)\s*(?:zip|zip\s*code|postal\s*code|location)`
	bodyLabel     = `body\s*(?:type|style)`
	usageLabel    = `usage(?:\s+class)?|vehicle\s+use|primary\s+use`
	addressLabel  = `(?:mailing\s+|street\s+|home\s+)?address`
	nameLabel     = `(?:named\s+|primary\s+)?insured(?:\s+name)?|policy\s*holder(?:\s+name)?|customer(?:\s+name)?|full\s+name|name`

	addressValue = `\d{1,6}\s+[A-Za-z0-9][A-Za-z0-9.'#-]*(?:\s+[A-Za-z0-9][A-Za-z0-9.'#-]*)*`
	bareAddress  = `^(\d{1,6}\s+(?:[NSEW]\.?\s+)?[A-Z][A-Za-z0-9.'-]*(?:\s+[A-Z0-9][A-Za-z0-9.'#-]*)+)`
	cityStateZip = `[A-Z][A-Za-z.'-]*(?:\s+[A-Z][A-Za-z.'-]*)*,\s*[A-Z]{2}\.?\s+` + zipShape
)

var (
	addressRejectRe = regexp.MustCompile(`(?i)\b(?:months?|years?|miles|mileage|policy)\b|^(?:19|20)\d{2}\s+(?:` + vehicleMakes + `)\b`)
	officeLineRe    = regexp.MustCompile(`(?i)\b(?:office|agent|agency|fax)\b`)
)

// rules is evaluated in order for every line. Order is the tie-break: the
// first rule to fill a field wins.
var rules = []rule{
	{
		name:     "policy_number",
		fields:   []domain.FieldKey{domain.FieldPolicyNumber},
		sameLine: labeled(policyLabel, policyShape, false),
		label:    labelLine(policyLabel),
		next:     whole(policyShape, false),
	},
	{
		name:     "effective_dates",
		fields:   []domain.FieldKey{domain.FieldEffectiveStart, domain.FieldEffectiveEnd},
		sameLine: regexp.MustCompile(`(?i)(` + dateShape + `)` + rangeSep + `(` + dateShape + `)`),
		label:    labelLine(rangeLabel),
		next:     regexp.MustCompile(`(?i)^(` + dateShape + `)` + rangeSep + `(` + dateShape + `)$`),
	},
	{
		name:     "office_phone",
		fields:   []domain.FieldKey{domain.FieldOfficePhone},
		sameLine: labeled(officeLabel, phoneShape, false),
		label:    labelLine(officeLabel),
		next:     whole(phoneShape, false),
	},
	{
		name:      "phone",
		fields:    []domain.FieldKey{domain.FieldPhone},
		secondary: domain.FieldOfficePhone,
		sameLine:  regexp.MustCompile(phoneShape),
		exclude:   officeLineRe,
		multi:     true,
	},
	{
		name:     "email",
		fields:   []domain.FieldKey{domain.FieldEmail},
		sameLine: regexp.MustCompile(emailShape),
	},
	{
		name:     "vin",
		fields:   []domain.FieldKey{domain.FieldVIN},
		sameLine: regexp.MustCompile(vinShape),
		accept:   hasDigitAndLetter,
	},
	{
		name:     "license_plate",
		fields:   []domain.FieldKey{domain.FieldLicensePlate},
		sameLine: labeled(plateLabel, plateShape, false),
		label:    labelLine(plateLabel),
		next:     whole(plateShape, false),
		accept:   hasDigit,
	},
	{
		name:      "vehicle",
		fields:    []domain.FieldKey{domain.FieldVehicle},
		sameLine:  labeled(vehicleLabel, vehicleValue, false),
		label:     labelLine(vehicleLabel),
		next:      whole(vehicleValue, false),
		normalize: collapse,
	},
	{
		name:      "vehicle_bare",
		fields:    []domain.FieldKey{domain.FieldVehicle},
		sameLine:  regexp.MustCompile(`\b((?:19|20)\d{2}\s+(?i:` + vehicleMakes + `)(?:\s+[A-Z0-9][A-Za-z0-9-]*){1,2})\b`),
		normalize: collapse,
	},
	{
		name:     "dob",
		fields:   []domain.FieldKey{domain.FieldDOB},
		sameLine: labeled(dobLabel, dateShape, true),
		label:    labelLine(dobLabel),
		next:     whole(dateShape, true),
	},
	{
		name:      "gender",
		fields:    []domain.FieldKey{domain.FieldGender},
		sameLine:  labeled(`gender|sex`, `(?:`+genderValues+`)\b`, true),
		label:     labelLine(`gender|sex`),
		next:      whole(genderValues, true),
		normalize: normalizeGender,
	},
	{
		name:      "marital_status",
		fields:    []domain.FieldKey{domain.FieldMaritalStatus},
		sameLine:  labeled(`marital\s+status|marital`, `(?:`+maritalValues+`)\b`, true),
		label:     labelLine(`marital\s+status|marital`),
		next:      whole(maritalValues, true),
		normalize: titleCase,
	},
	{
		name:      "policy_type",
		fields:    []domain.FieldKey{domain.FieldPolicyType},
		sameLine:  labeled(policyTypeLbl, `(?:`+policyTypes+`)\b`, true),
		label:     labelLine(policyTypeLbl),
		next:      whole(policyTypes, true),
		normalize: titleCase,
	},
	{
		name:     "agent_id",
		fields:   []domain.FieldKey{domain.FieldAgentID},
		sameLine: labeled(agentIDLabel, idShape, false),
		label:    labelLine(agentIDLabel),
		next:     whole(idShape, false),
		accept:   hasDigit,
	},
	{
		name:      "agent",
		fields:    []domain.FieldKey{domain.FieldAgent},
		sameLine:  regexp.MustCompile(`^(?i:` + agentLabel + `)\s*:\s*(` + nameShape + `)`),
		label:     labelLine(agentLabel),
		next:      whole(nameShape, false),
		normalize: collapse,
	},
	{
		name:     "issue_date",
		fields:   []domain.FieldKey{domain.FieldIssueDate},
		sameLine: labeled(issueLabel, dateShape, true),
		label:    labelLine(issueLabel),
		next:     whole(dateShape, true),
	},
	{
		name:     "renewal_date",
		fields:   []domain.FieldKey{domain.FieldRenewalDate},
		sameLine: labeled(renewalLabel, dateShape, true),
		label:    labelLine(renewalLabel),
		next:     whole(dateShape, true),
	},
	{
		name:      "term_length",
		fields:    []domain.FieldKey{domain.FieldTermLength},
		sameLine:  labeled(termLabel, termShape, true),
		label:     labelLine(termLabel),
		next:      whole(termShape, true),
		normalize: normalizeTerm,
	},
	{
		name:     "annual_mileage",
		fields:   []domain.FieldKey{domain.FieldAnnualMileage},
		sameLine: labeled(mileageLabel, mileageVal, false),
		label:    labelLine(mileageLabel),
		next:     whole(mileageVal, false),
	},
	{
		name:     "garaging_zip",
		fields:   []domain.FieldKey{domain.FieldGaragingZip},
		sameLine: labeled(garagingLabel, zipShape, false),
		label:    labelLine(garagingLabel),
		next:     whole(zipShape, false),
	},
	{
		name:      "body_type",
		fields:    []domain.FieldKey{domain.FieldBodyType},
		sameLine:  labeled(bodyLabel, `(?:`+bodyTypes+`)\b`, true),
		label:     labelLine(bodyLabel),
		next:      whole(bodyTypes, true),
		normalize: normalizeBodyType,
	},
	{
		name:      "usage_class",
		fields:    []domain.FieldKey{domain.FieldUsageClass},
		sameLine:  labeled(usageLabel, `(?:`+usageValues+`)\b`, true),
		label:     labelLine(usageLabel),
		next:      whole(usageValues, true),
		normalize: titleCase,
	},
	{
		name:     "address",
		fields:   []domain.FieldKey{domain.FieldAddress},
		sameLine: labeled(addressLabel, addressValue, false),
		label:    labelLine(addressLabel),
		next:     regexp.MustCompile(bareAddress),
		accept:   notAddressNoise,
	},
	{
		name:          "address_bare",
		fields:        []domain.FieldKey{domain.FieldAddress},
		sameLine:      regexp.MustCompile(bareAddress),
		unclaimedOnly: true,
		accept:        notAddressNoise,
	},
	{
		name:     "city_state_zip",
		fields:   []domain.FieldKey{domain.FieldCityStateZip},
		sameLine: regexp.MustCompile(cityStateZip),
		passive:  true,
	},
	{
		name:      "full_name",
		fields:    []domain.FieldKey{domain.FieldFullName},
		sameLine:  regexp.MustCompile(`^(?i:` + nameLabel + `)\s*:\s*(` + nameShape + `)$`),
		label:     labelLine(nameLabel),
		next:      whole(nameShape, false),
		accept:    looksPersonal,
		normalize: collapse,
	},
	{
		// Bare capitalized lines are only taken as the policyholder's name
		// when the surrounding lines say so. Organizational text can still
		// slip through on unusual layouts.
		name:          "full_name_context",
		fields:        []domain.FieldKey{domain.FieldFullName},
		sameLine:      whole(nameShape, false),
		unclaimedOnly: true,
		accept:        looksPersonal,
		gate:          nameContext,
		normalize:     collapse,
	},
}

func hasDigit(s string) bool { return digitRe.MatchString(s) }

func hasDigitAndLetter(s string) bool {
	return digitRe.MatchString(s) && letterRe.MatchString(s)
}

func notAddressNoise(s string) bool {
	return !addressRejectRe.MatchString(s)
}

func looksPersonal(s string) bool {
	return !digitRe.MatchString(s) && !orgWordsRe.MatchString(s)
}

// nameContext accepts line i when the previous non-empty line introduces the
// insured, or when the next non-empty line starts with a street number.
func nameContext(lines []string, i int) bool {
	if p := prevNonEmpty(lines, i); p >= 0 && nameContextRe.MatchString(lines[p]) {
		return true
	}
	if n := nextNonEmpty(lines, i); n >= 0 && lines[n] != "" && lines[n][0] >= '0' && lines[n][0] <= '9' {
		return true
	}
	return false
}

func prevNonEmpty(lines []string, i int) int {
	for j := i - 1; j >= 0; j-- {
		if lines[j] != "" {
			return j
		}
	}
	return -1
}

func nextNonEmpty(lines []string, i int) int {
	for j := i + 1; j < len(lines); j++ {
		if lines[j] != "" {
			return j
		}
	}
	return -1
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func normalizeGender(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M":
		return "Male"
	case "F":
		return "Female"
	case "X":
		return "X"
	}
	return titleCase(s)
}

func normalizeBodyType(s string) string {
	if strings.EqualFold(s, "suv") {
		return "SUV"
	}
	return titleCase(s)
}

// normalizeTerm renders "6 mos", "6-month" or "1 yr" as "6 Months" / "1 Year".
func normalizeTerm(s string) string {
	s = strings.ToLower(collapse(s))
	digits := strings.TrimRight(s, "abcdefghijklmnopqrstuvwxyz. -")
	digits = strings.TrimSpace(strings.TrimRight(digits, "-"))
	n, err := strconv.Atoi(digits)
	if err != nil {
		return titleCase(s)
	}
	unit := "Month"
	if strings.Contains(s, "y") {
		unit = "Year"
	}
	if n != 1 {
		unit += "s"
	}
	return strconv.Itoa(n) + " " + unit
}
