package parser

import (
	"context"
	"regexp"
	"strings"

	"SigPull/internal/domain/models"
	drepo "SigPull/internal/domain/repository"
)

// ResolutionState tags the outcome of instrument resolution.
type ResolutionState int

const (
	Unresolved ResolutionState = iota
	Resolved
	Ambiguous
)

// Resolution is the tagged result of resolving a token to an instrument.
// Only Resolved carries a usable symbol; Ambiguous lists the candidates
// so the caller can escalate instead of guessing.
type Resolution struct {
	State      ResolutionState
	Symbol     string
	Candidates []string
}

func resolved(sym string) Resolution  { return Resolution{State: Resolved, Symbol: sym} }
func ambiguous(c []string) Resolution { return Resolution{State: Ambiguous, Candidates: c} }

var tickerSuffixRe = regexp.MustCompile(`^([A-Za-z]{1,6})\.(NYSE|NAS)$`)

// static abbreviation table; lowercase token -> canonical symbol
var abbreviations = map[string]string{
	"au":     "AUDUSD",
	"eu":     "EURUSD",
	"gu":     "GBPUSD",
	"uj":     "USDJPY",
	"uc":     "USDCAD",
	"nu":     "NZDUSD",
	"gj":     "GBPJPY",
	"ej":     "EURJPY",
	"cable":  "GBPUSD",
	"gold":   "XAUUSD",
	"xau":    "XAUUSD",
	"silver": "XAGUSD",
	"xag":    "XAGUSD",
	"nas":    "NAS100USD",
	"nas100": "NAS100USD",
	"ndx":    "NAS100USD",
	"spx":    "SPX500USD",
	"sp500":  "SPX500USD",
	"us30":   "US30USD",
	"dow":    "US30USD",
	"dax":    "DE30EUR",
	"ger30":  "DE30EUR",
}

// crypto roots; suffixed with USDT on resolution
var cryptoRoots = map[string]bool{
	"btc": true, "eth": true, "sol": true, "xrp": true, "ada": true,
	"doge": true, "bnb": true, "ltc": true, "dot": true, "link": true,
	"avax": true, "matic": true, "trx": true, "atom": true, "near": true,
}

// Resolver maps raw text tokens to canonical instrument symbols. Equity
// company names go through the external symbol directory; everything else
// is table-driven and deterministic.
type Resolver struct {
	dir drepo.SymbolDirectory
}

// NewResolver builds a resolver. dir may be nil, which disables equity
// name lookup (resolution falls through to channel defaults).
func NewResolver(dir drepo.SymbolDirectory) *Resolver {
	return &Resolver{dir: dir}
}

// ResolveToken resolves a single token without touching the directory:
// explicit exchange suffix, abbreviation table, verbatim pair symbols,
// crypto roots. Returns Unresolved when the token means nothing.
func (r *Resolver) ResolveToken(token string, ch models.ChannelContext) Resolution {
	if m := tickerSuffixRe.FindStringSubmatch(token); m != nil {
		return resolved(strings.ToUpper(m[1]) + "." + m[2])
	}

	lower := strings.ToLower(token)
	if sym, ok := abbreviations[lower]; ok {
		return resolved(sym)
	}
	if cryptoRoots[lower] {
		return resolved(strings.ToUpper(lower) + "USDT")
	}
	if up := strings.ToUpper(token); isForexPair(up) {
		return resolved(up)
	}
	if up := strings.ToUpper(token); strings.HasSuffix(up, "USDT") && len(up) > 4 && isAlpha(lower) {
		return resolved(up)
	}
	// crypto channels treat short unknown alpha tokens as coin roots
	if ch.Type == models.ChannelCrypto && isAlpha(lower) && len(lower) >= 2 && len(lower) <= 5 {
		return resolved(strings.ToUpper(lower) + "USDT")
	}
	return Resolution{State: Unresolved}
}

// ResolveEquity queries the symbol directory for a ticker or company
// name. A single hit, or exactly one hit whose symbol or description
// equals the query case-insensitively, resolves; several plausible hits
// are Ambiguous and must be escalated, never guessed. Directory failures
// degrade to Unresolved.
func (r *Resolver) ResolveEquity(ctx context.Context, query string) Resolution {
	if r.dir == nil || query == "" {
		return Resolution{State: Unresolved}
	}
	matches, err := r.dir.Search(ctx, query)
	if err != nil || len(matches) == 0 {
		return Resolution{State: Unresolved}
	}
	if len(matches) == 1 {
		return resolved(matches[0].Symbol)
	}

	var exact []string
	for _, m := range matches {
		if strings.EqualFold(m.Symbol, query) || strings.EqualFold(m.Description, query) {
			exact = append(exact, m.Symbol)
		}
	}
	if len(exact) == 1 {
		return resolved(exact[0])
	}

	cands := make([]string, 0, len(matches))
	for _, m := range matches {
		cands = append(cands, m.Symbol)
	}
	return ambiguous(cands)
}

// ResolveOil picks the oil instrument: an "ic" mention selects XTIUSD,
// otherwise spot oil.
func ResolveOil(tokens []string) string {
	for _, t := range tokens {
		if strings.EqualFold(t, "ic") {
			return "XTIUSD"
		}
	}
	return "USOILSPOT"
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return len(s) > 0
}
