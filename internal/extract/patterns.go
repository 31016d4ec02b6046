package extract

import (
	"regexp"
	"strings"
)

// Reusable value shapes. They are spliced into rule patterns below.
const (
	monthNames = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`

	monthDate   = monthNames + `\.?\s+\d{1,2},?\s+\d{4}`
	numericDate = `\d{1,2}[/-]\d{1,2}[/-](?:\d{4}|\d{2})`
	dateShape   = `(?:` + monthDate + `|` + numericDate + `)`

	phoneShape  = `(?:\(\d{3}\)\s?\d{3}[-.\s]\d{4}|\b\d{3}[-.]\d{3}[-.]\d{4}\b)`
	emailShape  = `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`
	vinShape    = `\b[A-HJ-NPR-Z0-9]{17}\b`
	zipShape    = `\d{5}(?:-\d{4})?`
	nameShape   = `[A-Z][A-Za-z'.-]+(?:\s+[A-Z][A-Za-z'.-]*){1,3}`
	plateShape  = `[A-Z0-9]{1,4}[- ]?[A-Z0-9]{1,4}`
	mileageVal  = `\d{1,3}(?:,\d{3})+|\d{3,6}`
	idShape     = `[A-Z0-9][A-Z0-9-]{2,14}`
	termShape   = `\d{1,2}\s*-?\s*(?:months?|mos?\.?|years?|yrs?)`
	labelSep    = `\s*[:#-]?\s*`
	policyShape = `[A-Z]{2}[- ]?\d{4,12}`

	genderValues  = `Male|Female|Non-binary|Nonbinary|M|F|X`
	maritalValues = `Single|Married|Divorced|Widowed|Separated|Domestic Partner|Civil Union`
	policyTypes   = `Personal Auto|Commercial Auto|Auto(?:mobile)?|Full Coverage|Liability(?: Only)?|Comprehensive|Collision|Homeowners?|Renters?|Motorcycle|Umbrella|Standard|Preferred|Non-Standard`
	bodyTypes     = `Sedan|Coupe|SUV|Sport Utility|Truck|Pickup|Van|Minivan|Wagon|Station Wagon|Hatchback|Convertible|Crossover|Motorcycle|4D Sedan|2D Coupe`
	usageValues   = `Pleasure|Commute|Commuting|Business|Farm|Personal|Work|Artisan|Rideshare`

	vehicleMakes = `Acura|Audi|BMW|Buick|Cadillac|Chevrolet|Chevy|Chrysler|Dodge|Fiat|Ford|GMC|Genesis|Honda|Hyundai|Infiniti|Jaguar|Jeep|Kia|Land Rover|Lexus|Lincoln|Mazda|Mercedes(?:-Benz)?|Mini|Mitsubishi|Nissan|Porsche|Ram|Subaru|Tesla|Toyota|Volkswagen|VW|Volvo`
)

var (
	dateTokenRe  = regexp.MustCompile(`(?i)` + dateShape)
	phoneTokenRe = regexp.MustCompile(phoneShape)
	digitRe      = regexp.MustCompile(`\d`)
	letterRe     = regexp.MustCompile(`[A-Z]`)
	spacesRe     = regexp.MustCompile(`\s+`)

	// orgWordsRe flags boilerplate that looks like a capitalized name.
	orgWordsRe = regexp.MustCompile(`(?i)\b(?:insurance|company|co\.|agency|group|inc\.?|llc|corp(?:oration)?|services|mutual|policy|declarations?|page|coverage|vehicle|auto|national|bank|department|information|details|summary|premium|total|discount|underwriters?|office|dear|thank)\b`)

	nameContextRe = regexp.MustCompile(`(?i)policyholder|named insured|insured|name`)

	issueKeywordRe   = regexp.MustCompile(`(?i)\bissue(?:d)?\b`)
	renewalKeywordRe = regexp.MustCompile(`(?i)\brenew(?:al|s|ed)?\b`)

	termKeywordRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*-?\s*(month|year)s?\s+(?:policy\s+)?term\b|\bterm\b[^\n\d]{0,20}(\d{1,2})\s*-?\s*(month|year)s?`)
	bareTermRe    = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(month|year)s?\b`)
)

// anchorWindow is how far from a keyword a date token may sit and still be
// attributed to it.
const anchorWindow = 80

func collapse(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

func trimValue(s string) string {
	return strings.Trim(collapse(s), " ,;:")
}
