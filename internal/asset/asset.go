package asset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownAsset   = errors.New("unknown asset")
	ErrAmbiguousAsset = errors.New("ambiguous asset: multiple issuers share this code")
)

// Reference identifies a fungible asset on the underlying ledger.
// An empty IssuerOrMint means the chain's native asset. Two references with
// the same code but different issuers are distinct assets.
type Reference struct {
	Code         string `json:"code"`
	IssuerOrMint string `json:"issuer_or_mint,omitempty"`
	Decimals     uint8  `json:"decimals,omitempty"`
}

// Native returns a reference for the chain's native asset.
func Native(code string) Reference {
	return Reference{Code: strings.ToUpper(code)}
}

func (r Reference) IsNative() bool {
	return r.IssuerOrMint == ""
}

// Key returns the identity used for balance bookkeeping. Issuer participates
// so same-code assets from different issuers never collide.
func (r Reference) Key() string {
	if r.IssuerOrMint == "" {
		return strings.ToUpper(r.Code)
	}
	return strings.ToUpper(r.Code) + ":" + r.IssuerOrMint
}

func (r Reference) String() string {
	if r.IsNative() {
		return r.Code + " (native)"
	}
	return fmt.Sprintf("%s (%s)", r.Code, r.IssuerOrMint)
}

// Equal compares by identity, not display precision.
func (r Reference) Equal(other Reference) bool {
	return strings.EqualFold(r.Code, other.Code) && r.IssuerOrMint == other.IssuerOrMint
}
