package extract

import (
	"fmt"
	"strings"
)

// extractionRules are the normative parsing instructions. They encode real
// betslip conventions, most importantly the strikeout line handling, and
// must stay in sync with the normalization pass in extractor.go.
const extractionRules = `Rules:
1. Extract EVERY selection (leg) on the slip, both player props and game-level bets (moneyline, spread, total), in one pass.
2. Parlay slips show one large aggregate price (e.g. +3200) for the whole ticket. NEVER assign the aggregate price to an individual leg. If a leg shows no individual odds of its own, set its "odds" to "N/A".
3. Strikeout markets are special:
   - "7+ Strikeouts" means line exactly 7. Keep the whole number.
   - "Over 6.5 Strikeouts" means line exactly 6.5. Keep the decimal.
   - NEVER convert between the two forms for strikeouts.
4. Every other player prop:
   - "Over 1.5 Hits" keeps line 1.5.
   - "2+ Hits" converts to line 1.5 (X+ becomes X - 0.5).
   - Binary props with no number ("To Hit A Home Run") use line 0.5.
5. Normalize market names to one canonical tag: Home_Runs, Doubles, Triples, Singles, Stolen_Bases, Hits, Strikeouts, Total_Bases, RBIs, Hits_Runs_RBIs, Runs, Outs_Recorded, Earned_Runs, Points, Rebounds, Assists, Goals, Shots, Moneyline, Spread, Total. Examples: "To Hit A Home Run" -> Home_Runs, "RUN LINE" -> Spread, "Ks" -> Strikeouts.
6. "betType" is one of "over", "under", "moneyline", "spread". Player props without an explicit Under are "over".
7. Spreads keep the printed line sign and the printed odds (e.g. "+1.5" with "-166").
8. Include away/home team names and the game date/time when the slip shows them, else omit them.`

const workedExample = `Example input:
  FanDuel
  3 leg parlay +650
  Aaron Judge 2+ Total Bases -120
  Over 6.5 Strikeouts Gerrit Cole
  Yankees ML

Example output:
[
  {"player": "Aaron Judge", "market": "Total_Bases", "line": 1.5, "betType": "over", "odds": "-120", "sport": "Baseball"},
  {"player": "Gerrit Cole", "market": "Strikeouts", "line": 6.5, "betType": "over", "odds": "N/A", "sport": "Baseball"},
  {"player": "New York Yankees", "market": "Moneyline", "line": null, "betType": "moneyline", "odds": "N/A", "sport": "Baseball"}
]`

// BuildExtractionPrompt assembles the full prompt for one slip.
func BuildExtractionPrompt(ocrText string) string {
	var b strings.Builder
	b.WriteString("You are a sportsbook betslip parser. The text below was produced by OCR on a photographed betslip and may contain recognition noise. Extract every bet selection into a JSON array.\n\n")
	b.WriteString(extractionRules)
	b.WriteString("\n\n")
	b.WriteString(workedExample)
	b.WriteString("\n\nReturn ONLY the JSON array, no prose and no code fences. Each object may include: player, market, line, betType, odds, sport, awayTeam, homeTeam, gameTime, gameDate.\n\n")
	fmt.Fprintf(&b, "Betslip text:\n%s\n", ocrText)
	return b.String()
}
