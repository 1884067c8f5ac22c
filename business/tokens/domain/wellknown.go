package domain

import "github.com/vaultic/shroff/internal/agent"

// Canonical mainnet ledgers. Metadata here is a fallback; the registry
// refreshes symbol, fee and decimals from the ledgers themselves.
var (
	ICP = Token{
		Ledger:   agent.MustPrincipal("ryjl3-tyaaa-aaaaa-aaaba-cai"),
		Symbol:   "ICP",
		Name:     "Internet Computer",
		Decimals: 8,
		Fee:      10_000,
	}

	CKBTC = Token{
		Ledger:   agent.MustPrincipal("mxzaz-hqaaa-aaaar-qaada-cai"),
		Symbol:   "ckBTC",
		Name:     "Chain-key Bitcoin",
		Decimals: 8,
		Fee:      10,
	}

	CKUSDC = Token{
		Ledger:   agent.MustPrincipal("xevnm-gaaaa-aaaar-qafnq-cai"),
		Symbol:   "ckUSDC",
		Name:     "Chain-key USDC",
		Decimals: 6,
		Fee:      10_000,
	}
)

// WellKnown lists the tokens bundled as registry seeds.
func WellKnown() []Token {
	return []Token{ICP, CKBTC, CKUSDC}
}
