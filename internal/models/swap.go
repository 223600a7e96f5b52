package models

import "time"

// SwapEvent records one completed swap execution. Amounts are decimal strings
// to preserve precision across the wire and storage.
type SwapEvent struct {
	Signature    string    `json:"signature"`
	Timestamp    time.Time `json:"timestamp"`
	Account      string    `json:"account"`
	Pair         string    `json:"pair"` // e.g. "SOL-USDT"
	SourceAsset  string    `json:"source_asset"`
	DestAsset    string    `json:"dest_asset"`
	SourceAmount string    `json:"source_amount"`
	DestAmount   string    `json:"dest_amount"`
	ImpliedPrice string    `json:"implied_price"`
	NetworkFee   string    `json:"network_fee"`
	SigningMode  string    `json:"signing_mode"` // "client_held_secret" or "external_signer"
	ExplorerLink string    `json:"explorer_link,omitempty"`
}
