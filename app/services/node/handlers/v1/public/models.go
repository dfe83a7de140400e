package public

import (
	"github.com/qoranet/qoranet/foundation/blockchain/database"
)

type tx struct {
	From     database.AccountID   `json:"from"`
	FromName string               `json:"from_name"`
	Kind     database.PayloadKind `json:"kind"`
	Nonce    uint64               `json:"nonce"`
	FeeQOR   uint64               `json:"fee_qor"`
	FeeUSD   float64              `json:"fee_usd"`
	Priority string               `json:"priority"`
	Sig      string               `json:"sig"`
}

type info struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance uint64             `json:"balance"`
	Nonce   uint64             `json:"nonce"`
}

type actInfo struct {
	LatestBlock string `json:"latest_block"`
	Uncommitted int    `json:"uncommitted"`
	Accounts    []info `json:"accounts"`
}

type block struct {
	PrevBlockHash  string             `json:"prev_block_hash"`
	Validator      database.AccountID `json:"validator"`
	ValidatorName  string             `json:"validator_name"`
	Number         uint64             `json:"number"`
	TimeStamp      uint64             `json:"timestamp"`
	TransRoot      string             `json:"trans_root"`
	TotalLiquidity uint64             `json:"total_liquidity"`
	ActiveApps     uint32             `json:"active_apps"`
	TotalFees      uint64             `json:"total_fees"`
	Transactions   []tx               `json:"txs"`
}
