package server

// ErrorResponse is the standardized error envelope for all endpoints
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK    bool   `json:"ok"`              // Service health status
	State string `json:"state,omitempty"` // Current swap state machine phase
}

// QuoteRequest asks for a fresh quote on a pair
type QuoteRequest struct {
	Source      string `json:"source"`                 // Source asset symbol, or "NATIVE"
	Dest        string `json:"dest"`                   // Destination asset symbol
	DestIssuer  string `json:"dest_issuer,omitempty"`  // Mint/issuer to disambiguate the destination
	SrcIssuer   string `json:"src_issuer,omitempty"`   // Mint/issuer to disambiguate the source
	Amount      string `json:"amount"`                 // Decimal string
	Direction   string `json:"direction,omitempty"`    // "ExactIn" (default) or "ExactOut"
	SlippageBps *uint16 `json:"slippage_bps,omitempty"` // Defaults to the configured slippage; 0 is a valid explicit value
}

// SwapCompleteRequest carries the externally-signed transaction envelope
type SwapCompleteRequest struct {
	SignedTransaction string `json:"signed_transaction"` // Base64 envelope from the external signer
}

// SwapExecuteRequest triggers the single-shot execution path
type SwapExecuteRequest struct {
	Secret      string `json:"secret,omitempty"`      // Optional one-shot unlock; keyring is used otherwise
	Destination string `json:"destination,omitempty"` // Optional alternate destination account
}

// BeginResponse returns the unsigned envelope for external signing
type BeginResponse struct {
	UnsignedTransaction string `json:"unsigned_transaction"`
	NetworkFee          string `json:"network_fee"`
	NetworkFeeAsset     string `json:"network_fee_asset,omitempty"`
}

// ExecuteResponse reports a settled swap
type ExecuteResponse struct {
	Signature    string         `json:"signature"`
	SourceSpent  string         `json:"source_spent"`
	DestReceived string         `json:"dest_received"`
	ExplorerLink string         `json:"explorer_link,omitempty"`
	Balances     []BalanceEntry `json:"balances"`
}

// BalanceEntry is one asset position in the session snapshot
type BalanceEntry struct {
	Code         string `json:"code"`
	IssuerOrMint string `json:"issuer_or_mint,omitempty"`
	Amount       string `json:"amount"`
}

// FlagUpsertRequest represents a request to create or update a feature flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`   // Flag key (must match regex pattern)
	Value bool   `json:"value"` // Flag value (true/false)
}

// FlagUpdateRequest represents a request to update an existing feature flag
type FlagUpdateRequest struct {
	Value bool `json:"value"` // New flag value
}
