package entity

import (
	"strings"
	"unicode"
)

// canonicalTeams maps every known city/nickname/abbreviation variant to the
// club's canonical full name. Keys are pre-normalized (lowercase, no
// punctuation, collapsed whitespace).
var canonicalTeams = buildTeamDictionary()

// teamEntries lists each club's canonical name followed by its variants.
var teamEntries = map[string][]string{
	"Arizona Diamondbacks":  {"arizona", "diamondbacks", "dbacks", "d backs", "ari", "az"},
	"Atlanta Braves":        {"atlanta", "braves", "atl"},
	"Baltimore Orioles":     {"baltimore", "orioles", "os", "bal"},
	"Boston Red Sox":        {"boston", "red sox", "bos"},
	"Chicago Cubs":          {"cubs", "chicago cubs", "chc"},
	"Chicago White Sox":     {"white sox", "chicago white sox", "cws", "chw"},
	"Cincinnati Reds":       {"cincinnati", "reds", "cin"},
	"Cleveland Guardians":   {"cleveland", "guardians", "cle"},
	"Colorado Rockies":      {"colorado", "rockies", "col"},
	"Detroit Tigers":        {"detroit", "tigers", "det"},
	"Houston Astros":        {"houston", "astros", "hou"},
	"Kansas City Royals":    {"kansas city", "royals", "kc", "kcr"},
	"Los Angeles Angels":    {"angels", "la angels", "laa", "anaheim"},
	"Los Angeles Dodgers":   {"dodgers", "la dodgers", "lad"},
	"Miami Marlins":         {"miami", "marlins", "mia"},
	"Milwaukee Brewers":     {"milwaukee", "brewers", "mil"},
	"Minnesota Twins":       {"minnesota", "twins", "min"},
	"New York Mets":         {"mets", "ny mets", "nym"},
	"New York Yankees":      {"yankees", "ny yankees", "nyy"},
	"Oakland Athletics":     {"oakland", "athletics", "as", "oak"},
	"Philadelphia Phillies": {"philadelphia", "phillies", "phi"},
	"Pittsburgh Pirates":    {"pittsburgh", "pirates", "pit"},
	"San Diego Padres":      {"san diego", "padres", "sd", "sdp"},
	"San Francisco Giants":  {"san francisco", "giants", "sf", "sfg"},
	"Seattle Mariners":      {"seattle", "mariners", "sea"},
	"St. Louis Cardinals":   {"st louis", "saint louis", "cardinals", "stl"},
	"Tampa Bay Rays":        {"tampa bay", "tampa", "rays", "tb", "tbr"},
	"Texas Rangers":         {"texas", "rangers", "tex"},
	"Toronto Blue Jays":     {"toronto", "blue jays", "jays", "tor"},
	"Washington Nationals":  {"washington", "nationals", "nats", "wsh", "was"},
}

// teamWords are identifying words that mark two strings as referring to the
// same club when they share one, even if everything else differs.
var teamWords = []string{
	"yankees", "mets", "dodgers", "angels", "giants", "padres", "mariners",
	"rangers", "astros", "athletics", "royals", "twins", "tigers",
	"guardians", "orioles", "rays", "jays", "braves", "marlins", "phillies",
	"nationals", "cubs", "reds", "brewers", "pirates", "cardinals",
	"diamondbacks", "rockies", "boston", "york", "angeles", "chicago",
	"houston", "seattle", "texas", "toronto", "atlanta", "miami",
	"milwaukee", "minnesota", "oakland", "philadelphia", "pittsburgh",
	"colorado", "arizona", "cincinnati", "cleveland", "detroit",
	"washington", "tampa", "louis", "francisco", "diego", "kansas",
}

func buildTeamDictionary() map[string]string {
	dict := make(map[string]string)
	for canonical, variants := range teamEntries {
		dict[cleanTeamText(canonical)] = canonical
		for _, v := range variants {
			dict[v] = canonical
		}
	}
	return dict
}

// cleanTeamText lowercases, strips punctuation, and collapses whitespace.
func cleanTeamText(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeTeamName canonicalizes a free-text team reference. Unknown names
// come back cleaned but otherwise untouched.
func NormalizeTeamName(raw string) string {
	cleaned := cleanTeamText(raw)
	if canonical, ok := canonicalTeams[cleaned]; ok {
		return canonical
	}
	return cleaned
}

// TeamSimilarity scores how likely two free-text team references name the
// same club, in [0,1]. Symmetric, and 1.0 for any pair that normalizes to
// the same canonical name.
func TeamSimilarity(a, b string) float64 {
	na := cleanTeamText(NormalizeTeamName(a))
	nb := cleanTeamText(NormalizeTeamName(b))
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}

	// Substring containment either direction.
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		shorter, longer := na, nb
		if len(nb) < len(na) {
			shorter, longer = nb, na
		}
		if len(shorter)*2 >= len(longer) {
			return 0.95
		}
		return 0.8
	}

	wordsA := strings.Fields(na)
	wordsB := strings.Fields(nb)
	setB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		setB[w] = struct{}{}
	}

	var shared []string
	for _, w := range wordsA {
		if len(w) <= 2 {
			continue
		}
		if _, ok := setB[w]; ok {
			shared = append(shared, w)
		}
	}
	if len(shared) == 0 {
		return 0
	}

	for _, w := range shared {
		for _, tw := range teamWords {
			if strings.Contains(w, tw) || strings.Contains(tw, w) {
				return 0.9
			}
		}
	}

	maxWords := len(wordsA)
	if len(wordsB) > maxWords {
		maxWords = len(wordsB)
	}
	return float64(len(shared)) / float64(maxWords)
}
