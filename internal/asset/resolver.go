package asset

import (
	"fmt"
	"strings"
)

// Resolver normalizes user-facing symbols into the reference shape a backend
// expects. Native sentinels ("native" plus the ledger's gas symbol) resolve
// to a reference with no issuer regardless of the known-asset list.
type Resolver struct {
	nativeSymbols map[string]string // sentinel -> canonical code
}

// NewResolver builds a resolver for a ledger whose gas asset is gasSymbol.
// The literal "native" is always accepted as an alias for it.
func NewResolver(gasSymbol string, aliases ...string) *Resolver {
	gasSymbol = strings.ToUpper(strings.TrimSpace(gasSymbol))
	sentinels := map[string]string{
		"NATIVE": gasSymbol,
	}
	if gasSymbol != "" {
		sentinels[gasSymbol] = gasSymbol
	}
	for _, a := range aliases {
		a = strings.ToUpper(strings.TrimSpace(a))
		if a != "" {
			sentinels[a] = gasSymbol
		}
	}
	return &Resolver{nativeSymbols: sentinels}
}

// Resolve looks up symbol against the known asset list (the current balance
// list or a static catalog). When several issuers share the code the caller
// must disambiguate with ResolveWithIssuer; guessing is never acceptable.
func (r *Resolver) Resolve(symbol string, known []Reference) (Reference, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Reference{}, fmt.Errorf("%w: empty symbol", ErrUnknownAsset)
	}

	upper := strings.ToUpper(symbol)
	if code, ok := r.nativeSymbols[upper]; ok {
		return Native(code), nil
	}

	var matches []Reference
	for _, a := range known {
		if strings.EqualFold(a.Code, symbol) {
			matches = append(matches, a)
		}
	}

	switch len(matches) {
	case 0:
		return Reference{}, fmt.Errorf("%w: %q", ErrUnknownAsset, symbol)
	case 1:
		return matches[0], nil
	default:
		return Reference{}, fmt.Errorf("%w: %q has %d issuers", ErrAmbiguousAsset, symbol, len(matches))
	}
}

// ResolveWithIssuer resolves a symbol pinned to a specific issuer or mint.
func (r *Resolver) ResolveWithIssuer(symbol, issuer string, known []Reference) (Reference, error) {
	if strings.TrimSpace(issuer) == "" {
		return r.Resolve(symbol, known)
	}
	for _, a := range known {
		if strings.EqualFold(a.Code, symbol) && a.IssuerOrMint == issuer {
			return a, nil
		}
	}
	return Reference{}, fmt.Errorf("%w: %s issued by %s", ErrUnknownAsset, symbol, issuer)
}
