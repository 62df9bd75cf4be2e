package entity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ocrNameFixes repairs letter substitutions OCR engines commonly make at
// the start of a name token, most often lowercase-L read for capital-I.
var ocrNameFixes = map[string]string{
	"lan":     "ian",
	"lvan":    "ivan",
	"lke":     "ike",
	"lsaac":   "isaac",
	"lsiah":   "isiah",
	"lchiro":  "ichiro",
	"lsrael":  "israel",
	"lgnacio": "ignacio",
}

// nameSuffixes are generational suffixes dropped when comparing names.
var nameSuffixes = map[string]struct{}{
	"jr": {}, "sr": {}, "ii": {}, "iii": {},
}

var diacriticsStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticsStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizePlayerName repairs known OCR misreads, lowercases, strips
// diacritics and punctuation, and collapses whitespace.
func NormalizePlayerName(raw string) string {
	lowered := strings.ToLower(stripDiacritics(raw))
	lowered = strings.NewReplacer(".", "", ",", "", "-", " ").Replace(lowered)

	fields := strings.Fields(lowered)
	for i, f := range fields {
		if fixed, ok := ocrNameFixes[f]; ok {
			fields[i] = fixed
		}
	}
	return strings.Join(fields, " ")
}

// stripNameSuffix removes one trailing generational suffix, if present.
func stripNameSuffix(normalized string) string {
	fields := strings.Fields(normalized)
	if len(fields) < 2 {
		return normalized
	}
	last := fields[len(fields)-1]
	if _, ok := nameSuffixes[last]; ok {
		return strings.Join(fields[:len(fields)-1], " ")
	}
	return normalized
}

// NameVariations generates the lookup forms tried when matching a player
// name against reference data: suffix-stripped and suffix-carrying forms,
// reversed word order, and initial forms in both directions.
func NameVariations(raw string) []string {
	base := NormalizePlayerName(raw)
	if base == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	add(base)
	stripped := stripNameSuffix(base)
	add(stripped)
	if stripped == base {
		add(base + " jr")
		add(base + " sr")
	}

	fields := strings.Fields(stripped)
	if len(fields) >= 2 {
		first := fields[0]
		last := fields[len(fields)-1]
		add(last + " " + first)
		add(first[:1] + " " + last)
		add(first + " " + last[:1])
	}
	return out
}

// NameSimilarity scores two player names in [0,1], tolerating suffix
// differences, initialisms, and OCR noise repaired by normalization.
func NameSimilarity(a, b string) float64 {
	na := NormalizePlayerName(a)
	nb := NormalizePlayerName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}

	sa := stripNameSuffix(na)
	sb := stripNameSuffix(nb)
	if sa == nb || sb == na || sa == sb {
		return 0.95
	}

	fieldsA := strings.Fields(sa)
	fieldsB := strings.Fields(sb)
	if len(fieldsA) >= 2 && len(fieldsB) >= 2 {
		firstA, lastA := fieldsA[0], fieldsA[len(fieldsA)-1]
		firstB, lastB := fieldsB[0], fieldsB[len(fieldsB)-1]

		if lastA == lastB {
			if firstA == firstB || singleLetterPrefix(firstA, firstB) {
				return 0.9
			}
			if firstA[0] == firstB[0] {
				return 0.8
			}
		}
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.6
	}
	return 0
}

// singleLetterPrefix reports whether one token is an initial of the other.
func singleLetterPrefix(a, b string) bool {
	if len(a) == 1 && strings.HasPrefix(b, a) {
		return true
	}
	return len(b) == 1 && strings.HasPrefix(a, b)
}
