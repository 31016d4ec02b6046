package extract

import (
	"regexp"
	"strings"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
)

// postPass resolves fields that need the whole text rather than one line.
func postPass(f *domain.FieldSet, text string) {
	if f.IssueDate == "" {
		f.IssueDate = anchoredDate(text, issueKeywordRe, f)
	}
	if f.RenewalDate == "" {
		f.RenewalDate = anchoredDate(text, renewalKeywordRe, f)
	}
	if f.TermLength == "" {
		f.TermLength = termFromText(text)
	}

	phones := distinct(phoneTokenRe.FindAllString(text, -1))
	if f.Phone == "" {
		for _, p := range phones {
			if p != f.OfficePhone {
				f.Phone = p
				break
			}
		}
	}
	if f.OfficePhone == "" {
		for _, p := range phones {
			if p != f.Phone {
				f.OfficePhone = p
				break
			}
		}
	}
}

// anchoredDate picks the date token nearest to a keyword: the closest one
// after it within anchorWindow, otherwise the closest one before it. Dates
// already used by the effective range or the date of birth are skipped.
func anchoredDate(text string, keyword *regexp.Regexp, f *domain.FieldSet) string {
	kws := keyword.FindAllStringIndex(text, -1)
	if len(kws) == 0 {
		return ""
	}
	dates := dateTokenRe.FindAllStringIndex(text, -1)
	used := map[string]bool{
		f.EffectiveStart: true,
		f.EffectiveEnd:   true,
		f.DOB:            true,
	}

	for _, kw := range kws {
		best, bestDist := "", anchorWindow+1
		for _, d := range dates {
			v := collapse(text[d[0]:d[1]])
			if used[v] {
				continue
			}
			if d[0] >= kw[1] && d[0]-kw[1] < bestDist {
				best, bestDist = v, d[0]-kw[1]
			}
		}
		if best != "" {
			return best
		}
		for _, d := range dates {
			v := collapse(text[d[0]:d[1]])
			if used[v] {
				continue
			}
			if d[1] <= kw[0] && kw[0]-d[1] < bestDist {
				best, bestDist = v, kw[0]-d[1]
			}
		}
		if best != "" {
			return best
		}
	}
	return ""
}

func termFromText(text string) string {
	if m := termKeywordRe.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			return normalizeTerm(m[1] + " " + m[2])
		}
		return normalizeTerm(m[3] + " " + m[4])
	}
	if m := bareTermRe.FindStringSubmatch(text); m != nil && strings.EqualFold(m[2], "month") {
		return normalizeTerm(m[1] + " " + m[2])
	}
	return ""
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = collapse(v)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
