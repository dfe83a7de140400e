package database

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/qoranet/qoranet/foundation/blockchain/fees"
	"github.com/qoranet/qoranet/foundation/blockchain/signature"
)

// PayloadKind identifies which payload variant a transaction carries.
type PayloadKind string

// Set of payload kinds.
const (
	KindTransfer         PayloadKind = "transfer"
	KindProvideLiquidity PayloadKind = "provide_liquidity"
	KindRegisterApp      PayloadKind = "register_app"
	KindReportMetrics    PayloadKind = "report_metrics"
	KindClaimRewards     PayloadKind = "claim_rewards"
)

// Transfer moves native balance between two accounts.
type Transfer struct {
	FromID AccountID `json:"from"`
	ToID   AccountID `json:"to"`
	Amount uint64    `json:"amount"`
}

// ProvideLiquidity records liquidity provided per pool token.
type ProvideLiquidity struct {
	ProviderID AccountID         `json:"provider"`
	LPTokens   map[string]uint64 `json:"lp_tokens"`
}

// AppResources declares the minimum resources an application needs.
type AppResources struct {
	MinCPUCores      uint32 `json:"min_cpu_cores"`
	MinMemoryGB      uint32 `json:"min_memory_gb"`
	MinDiskGB        uint32 `json:"min_disk_gb"`
	MinBandwidthMbps uint32 `json:"min_bandwidth_mbps"`
}

// RegisterApp registers a hosted application with the network.
type RegisterApp struct {
	OwnerID   AccountID    `json:"owner"`
	AppID     string       `json:"app_id"`
	AppType   string       `json:"app_type"`
	Resources AppResources `json:"resources"`
}

// AppMetrics holds the measurements a validator reports for an application.
type AppMetrics struct {
	CPUUsage       float64 `json:"cpu_usage"`
	MemoryUsageGB  float64 `json:"memory_usage_gb"`
	DiskUsageGB    float64 `json:"disk_usage_gb"`
	BandwidthMbps  float64 `json:"bandwidth_mbps"`
	UptimeSeconds  uint64  `json:"uptime_seconds"`
	ResponseTimeMS float64 `json:"response_time_ms"`
}

// ReportMetrics carries a validator's metric report for an application.
type ReportMetrics struct {
	ValidatorID AccountID  `json:"validator"`
	AppOwnerID  AccountID  `json:"app_owner"`
	AppID       string     `json:"app_id"`
	Metrics     AppMetrics `json:"metrics"`
}

// ClaimRewards claims accumulated liquidity and application rewards.
type ClaimRewards struct {
	ClaimantID AccountID `json:"claimant"`
	LPRewards  uint64    `json:"lp_rewards"`
	AppRewards uint64    `json:"app_rewards"`
}

// Payload is the tagged union of transaction payloads. Exactly the variant
// named by Kind is set.
type Payload struct {
	Kind             PayloadKind       `json:"kind"`
	Transfer         *Transfer         `json:"transfer,omitempty"`
	ProvideLiquidity *ProvideLiquidity `json:"provide_liquidity,omitempty"`
	RegisterApp      *RegisterApp      `json:"register_app,omitempty"`
	ReportMetrics    *ReportMetrics    `json:"report_metrics,omitempty"`
	ClaimRewards     *ClaimRewards     `json:"claim_rewards,omitempty"`
}

// Class maps the payload to its fee class.
func (p Payload) Class() fees.Class {
	switch p.Kind {
	case KindProvideLiquidity:
		return fees.ClassProvideLiquidity
	case KindRegisterApp:
		return fees.ClassRegisterApp
	case KindReportMetrics:
		return fees.ClassReportMetrics
	case KindClaimRewards:
		return fees.ClassClaimRewards
	default:
		return fees.ClassTransfer
	}
}

// validate performs the semantic checks for the payload variant.
func (p Payload) validate() error {
	switch p.Kind {
	case KindTransfer:
		if p.Transfer == nil {
			return errors.New("missing transfer payload")
		}
		if p.Transfer.Amount == 0 {
			return errors.New("transfer amount must not be zero")
		}

	case KindProvideLiquidity:
		if p.ProvideLiquidity == nil {
			return errors.New("missing provide liquidity payload")
		}
		if len(p.ProvideLiquidity.LPTokens) == 0 {
			return errors.New("no liquidity tokens provided")
		}
		for token, amount := range p.ProvideLiquidity.LPTokens {
			if amount == 0 {
				return fmt.Errorf("liquidity amount for %q must not be zero", token)
			}
		}

	case KindRegisterApp:
		if p.RegisterApp == nil {
			return errors.New("missing register app payload")
		}
		if p.RegisterApp.AppID == "" {
			return errors.New("app id must not be empty")
		}
		if p.RegisterApp.Resources.MinCPUCores == 0 {
			return errors.New("app must request at least one cpu core")
		}

	case KindReportMetrics:
		if p.ReportMetrics == nil {
			return errors.New("missing report metrics payload")
		}
		if p.ReportMetrics.Metrics.CPUUsage > 100 {
			return errors.New("cpu usage cannot exceed 100 percent")
		}

	case KindClaimRewards:
		if p.ClaimRewards == nil {
			return errors.New("missing claim rewards payload")
		}
		if p.ClaimRewards.LPRewards == 0 && p.ClaimRewards.AppRewards == 0 {
			return errors.New("no rewards to claim")
		}

	default:
		return fmt.Errorf("unknown payload kind %q", p.Kind)
	}

	return nil
}

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	Payload  Payload       `json:"payload"`
	Nonce    uint64        `json:"nonce"`
	FeeQOR   uint64        `json:"fee_qor"`
	FeeUSD   float64       `json:"fee_usd"`
	Priority fees.Priority `json:"priority"`
	FromID   AccountID     `json:"from_id"`
}

// NewTx constructs a new transaction.
func NewTx(from AccountID, nonce uint64, payload Payload, priority Priority, feeQOR uint64, feeUSD float64) (Tx, error) {
	if !from.IsAccountID() {
		return Tx{}, fmt.Errorf("from account is not properly formatted")
	}

	tx := Tx{
		Payload:  payload,
		Nonce:    nonce,
		FeeQOR:   feeQOR,
		FeeUSD:   feeUSD,
		Priority: priority,
		FromID:   from,
	}

	return tx, nil
}

// Priority is re-exported so callers constructing transactions don't need a
// second import for the common case.
type Priority = fees.Priority

// SigningMessage produces the canonical byte string that is signed. The
// payload is encoded as JSON followed by the nonce, the QOR fee, the raw
// bits of the USD fee (all little endian), the priority byte, and the raw
// signer public key.
func (tx Tx) SigningMessage() ([]byte, error) {
	payload, err := json.Marshal(tx.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	signer, err := tx.FromID.Bytes()
	if err != nil {
		return nil, fmt.Errorf("signer bytes: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(payload)
	binary.Write(&buf, binary.LittleEndian, tx.Nonce)
	binary.Write(&buf, binary.LittleEndian, tx.FeeQOR)
	binary.Write(&buf, binary.LittleEndian, math.Float64bits(tx.FeeUSD))
	buf.WriteByte(byte(tx.Priority))
	buf.Write(signer)

	return buf.Bytes(), nil
}

// Sign uses the specified private key to sign the transaction.
func (tx Tx) Sign(privateKey ed25519.PrivateKey) (SignedTx, error) {
	accountID := PublicKeyToAccountID(privateKey.Public().(ed25519.PublicKey))
	if accountID != tx.FromID {
		return SignedTx{}, errors.New("signing key does not match the from account")
	}

	message, err := tx.SigningMessage()
	if err != nil {
		return SignedTx{}, err
	}

	sig, err := signature.Sign(message, privateKey)
	if err != nil {
		return SignedTx{}, err
	}

	signedTx := SignedTx{
		Tx:        tx,
		Signature: sig,
	}

	return signedTx, nil
}

// =============================================================================

// SignedTx is a signed version of the transaction. This is how clients like
// a wallet provide transactions for inclusion into the blockchain.
type SignedTx struct {
	Tx
	Signature hexutil.Bytes `json:"signature"`
}

// Validate verifies the transaction has a proper signature, an acceptable
// fee for its class, and a semantically valid payload.
func (tx SignedTx) Validate(oracle *fees.Oracle) error {
	publicKey, err := tx.FromID.PublicKey()
	if err != nil {
		return fmt.Errorf("signer: %w", err)
	}

	message, err := tx.SigningMessage()
	if err != nil {
		return err
	}

	if !signature.Verify(message, tx.Signature, publicKey) {
		return errors.New("invalid signature")
	}

	if err := oracle.ValidateFee(tx.Payload.Class(), tx.FeeQOR); err != nil {
		return err
	}

	return tx.Payload.validate()
}

// Hash returns the unique hash for the transaction, covering both the
// signing message and the signature. It implements the merkle Hashable
// interface.
func (tx SignedTx) Hash() ([]byte, error) {
	message, err := tx.SigningMessage()
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256(append(message, tx.Signature...))
	return hash[:], nil
}

// HashString returns the transaction hash as a hex string.
func (tx SignedTx) HashString() string {
	hash, err := tx.Hash()
	if err != nil {
		return signature.ZeroHash
	}

	return hexutil.Encode(hash)
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTx) String() string {
	return fmt.Sprintf("%s:%d:%s", tx.FromID, tx.Nonce, tx.Payload.Kind)
}
