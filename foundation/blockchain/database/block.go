package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/qoranet/qoranet/foundation/blockchain/merkle"
	"github.com/qoranet/qoranet/foundation/blockchain/signature"
)

// blockVersion is the only block format currently produced.
const blockVersion = 1

// maxFutureDrift is how far into the future a block timestamp may sit
// before the block is rejected.
const maxFutureDrift = 300 * time.Second

// ErrChainForked is returned from validateNextBlock if another node's block
// implies a different chain than the one this node has.
var ErrChainForked = errors.New("blockchain forked, start resync")

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Number         uint64    `json:"number"`
	PrevBlockHash  string    `json:"prev_block_hash"`
	TimeStamp      uint64    `json:"timestamp"`
	Validator      AccountID `json:"validator"`
	TransRoot      string    `json:"trans_root"`
	TotalLiquidity uint64    `json:"total_liquidity"`
	ActiveApps     uint32    `json:"active_apps"`
	TotalFees      uint64    `json:"total_fees"`
	Version        uint32    `json:"version"`
	Nonce          uint64    `json:"nonce"`
}

// Block represents a group of transactions bundled together.
type Block struct {
	Header       BlockHeader `json:"header"`
	Transactions []SignedTx  `json:"transactions"`
}

// NewBlockArgs carries everything needed to construct a new block.
type NewBlockArgs struct {
	Validator      AccountID
	PrevBlock      Block
	Transactions   []SignedTx
	TotalLiquidity uint64
	ActiveApps     uint32
}

// NewBlock constructs the next block in the chain from the previous block
// and the selected transactions.
func NewBlock(args NewBlockArgs) (Block, error) {
	transRoot, err := merkle.RootHash(args.Transactions)
	if err != nil {
		return Block{}, fmt.Errorf("transactions root: %w", err)
	}

	prevBlockHash := signature.ZeroHash
	number := uint64(0)
	if args.PrevBlock.Header.TimeStamp != 0 || args.PrevBlock.Header.Number != 0 || args.PrevBlock.Header.Validator != "" {
		prevBlockHash = args.PrevBlock.Hash()
		number = args.PrevBlock.Header.Number + 1
	}

	var totalFees uint64
	for _, tx := range args.Transactions {
		totalFees += tx.FeeQOR
	}

	block := Block{
		Header: BlockHeader{
			Number:         number,
			PrevBlockHash:  prevBlockHash,
			TimeStamp:      uint64(time.Now().UTC().Unix()),
			Validator:      args.Validator,
			TransRoot:      transRoot,
			TotalLiquidity: args.TotalLiquidity,
			ActiveApps:     args.ActiveApps,
			TotalFees:      totalFees,
			Version:        blockVersion,
			Nonce:          0,
		},
		Transactions: args.Transactions,
	}

	return block, nil
}

// GenesisBlock constructs the first block in the chain. It has no
// transactions and a zero previous hash.
func GenesisBlock(validator AccountID) Block {
	return Block{
		Header: BlockHeader{
			Number:        0,
			PrevBlockHash: signature.ZeroHash,
			TimeStamp:     uint64(time.Now().UTC().Unix()),
			Validator:     validator,
			TransRoot:     signature.ZeroHash,
			Version:       blockVersion,
		},
	}
}

// Hash returns the unique hash for the block by hashing the header.
func (b Block) Hash() string {
	return signature.Hash(b.Header)
}

// ValidateBlock checks the block is the valid next block for the specified
// previous block.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: chain is not forked", b.Header.Number)

	// The node who sent this block has a chain that is two or more blocks
	// ahead of ours. This means there has been a fork and we are on the
	// wrong side.
	nextNumber := previousBlock.Header.Number + 1
	if b.Header.Number >= (nextNumber + 2) {
		return ErrChainForked
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.Header.Number)

	if b.Header.Number != nextNumber {
		return fmt.Errorf("this block is not the next number, got %d, exp %d", b.Header.Number, nextNumber)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: previous hash matches", b.Header.Number)

	if b.Header.PrevBlockHash != previousBlock.Hash() {
		return fmt.Errorf("previous block doesn't match our known previous, got %s, exp %s", b.Header.PrevBlockHash, previousBlock.Hash())
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: timestamp is not too far in the future", b.Header.Number)

	blockTime := time.Unix(int64(b.Header.TimeStamp), 0)
	if blockTime.After(time.Now().Add(maxFutureDrift)) {
		return fmt.Errorf("block timestamp %v is too far in the future", blockTime)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: transactions root matches", b.Header.Number)

	transRoot, err := merkle.RootHash(b.Transactions)
	if err != nil {
		return fmt.Errorf("transactions root: %w", err)
	}
	if b.Header.TransRoot != transRoot {
		return fmt.Errorf("transactions root doesn't match, got %s, exp %s", b.Header.TransRoot, transRoot)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: total fees match", b.Header.Number)

	var totalFees uint64
	for _, tx := range b.Transactions {
		totalFees += tx.FeeQOR
	}
	if b.Header.TotalFees != totalFees {
		return fmt.Errorf("total fees don't match, got %d, exp %d", b.Header.TotalFees, totalFees)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: transaction signatures verify", b.Header.Number)

	for _, tx := range b.Transactions {
		publicKey, err := tx.FromID.PublicKey()
		if err != nil {
			return fmt.Errorf("tx %s signer: %w", tx.HashString(), err)
		}

		message, err := tx.SigningMessage()
		if err != nil {
			return fmt.Errorf("tx %s message: %w", tx.HashString(), err)
		}

		if !signature.Verify(message, tx.Signature, publicKey) {
			return fmt.Errorf("tx %s has an invalid signature", tx.HashString())
		}
	}

	return nil
}

// =============================================================================

// blockIterator provides reading blocks from storage in height order.
type blockIterator struct {
	db      *Database
	current uint64
	latest  uint64
}

// Next returns the next block in height order.
func (bi *blockIterator) Next() (Block, error) {
	if bi.Done() {
		return Block{}, errors.New("no more blocks")
	}

	block, err := bi.db.GetBlockByNumber(bi.current)
	if err != nil {
		return Block{}, err
	}

	bi.current++
	return block, nil
}

// Done reports whether iteration is complete.
func (bi *blockIterator) Done() bool {
	return bi.current > bi.latest
}
