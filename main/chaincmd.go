package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/LemoFoundationLtd/lemochain-store/chain"
	"github.com/LemoFoundationLtd/lemochain-store/chain/types"
	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/LemoFoundationLtd/lemochain-store/common/crypto"
	"github.com/LemoFoundationLtd/lemochain-store/common/flag"
	"github.com/LemoFoundationLtd/lemochain-store/common/log"
	"github.com/LemoFoundationLtd/lemochain-store/main/node"
	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"
)

var (
	CountFlag = cli.IntFlag{
		Name:  "count",
		Usage: "Number of blocks to generate",
		Value: 100,
	}
	ForksFlag = cli.IntFlag{
		Name:  "forks",
		Usage: "Maximum number of branches growing at the same time",
		Value: 1,
	}
	TxsFlag = cli.IntFlag{
		Name:  "txs",
		Usage: "Number of transactions in each generated block",
		Value: 2,
	}
)

var (
	generateCommand = cli.Command{
		Action:   generateBlocks,
		Name:     "generate",
		Usage:    "Generate random blocks on top of local chain",
		Flags:    []cli.Flag{CountFlag, ForksFlag, TxsFlag},
		Category: "BLOCKCHAIN COMMANDS",
		Description: `
The generate command creates blocks with signed random transactions and inserts them into the chain.
With --forks larger than 1, some blocks extend the older branches, so forks appear.`,
	}
	importCommand = cli.Command{
		Action:    importChain,
		Name:      "import",
		Usage:     "Import blocks from a rlp file",
		ArgsUsage: "<filename>",
		Category:  "BLOCKCHAIN COMMANDS",
		Description: `
The import command inserts the blocks in file one by one. Blocks with invalid transactions are skipped.`,
	}
	exportCommand = cli.Command{
		Action:    exportChain,
		Name:      "export",
		Usage:     "Export all blocks into a rlp file",
		ArgsUsage: "<filename>",
		Category:  "BLOCKCHAIN COMMANDS",
		Description: `
The export command writes all blocks except genesis in the order they were inserted.`,
	}
	tipCommand = cli.Command{
		Action:   printTip,
		Name:     "tip",
		Usage:    "Print the head of the longest chain",
		Category: "BLOCKCHAIN COMMANDS",
	}
	ancestryCommand = cli.Command{
		Action:   printAncestry,
		Name:     "ancestry",
		Usage:    "Print the block hashes of the longest chain from genesis to head",
		Category: "BLOCKCHAIN COMMANDS",
	}
	forksCommand = cli.Command{
		Action:   printForks,
		Name:     "forks",
		Usage:    "Print the tree of all forks",
		Category: "BLOCKCHAIN COMMANDS",
	}
	blockCommand = cli.Command{
		Action:    printBlock,
		Name:      "block",
		Usage:     "Print the detail of a block",
		ArgsUsage: "<hash>",
		Category:  "BLOCKCHAIN COMMANDS",
	}
)

var (
	ErrNoFileName    = errors.New("must supply a file name")
	ErrNoBlockHash   = errors.New("must supply a block hash")
	ErrInvalidHash   = errors.New("block hash must be 32 bytes in hex")
	ErrBlockNotFound = errors.New("block not found")
)

func makeConfig(ctx *cli.Context) (*node.NodeConfig, error) {
	return node.MakeNodeConfig(flag.NewCmdFlags(ctx, node.GlobalFlags))
}

// openNode loads the chain in data directory. The caller should stop the node
func openNode(ctx *cli.Context) (*node.Node, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, err
	}
	node.SetupLog(cfg)
	return node.New(cfg)
}

func printf(ctx *cli.Context, format string, args ...interface{}) {
	fmt.Fprintf(ctx.App.Writer, format, args...)
}

func generateBlocks(ctx *cli.Context) error {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()

	signer, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	g := &blockGenerator{
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		signer: signer,
		txs:    ctx.Int(TxsFlag.Name),
	}
	count, err := g.generate(n.Chain(), ctx.Int(CountFlag.Name), ctx.Int(ForksFlag.Name))
	if err != nil {
		return err
	}
	printf(ctx, "generated %d blocks, current height: %d, current hash: %s\n", count, n.Chain().CurrentHeight(), n.Chain().Tip().Hex())
	return nil
}

type blockGenerator struct {
	rand   *rand.Rand
	signer *crypto.KeySigner
	txs    int
}

// generate inserts count blocks. Each block extends one of at most forks branches
func (g *blockGenerator) generate(bc *chain.BlockChain, count, forks int) (int, error) {
	if forks < 1 {
		forks = 1
	}
	heads := []*types.Block{bc.CurrentBlock()}
	for i := 0; i < count; i++ {
		idx := g.rand.Intn(len(heads))
		block, err := g.newBlock(heads[idx])
		if err != nil {
			return i, err
		}
		if err := bc.InsertBlock(block); err != nil {
			return i, err
		}
		if len(heads) < forks && g.rand.Intn(2) == 0 {
			heads = append(heads, block)
		} else {
			heads[idx] = block
		}
	}
	return count, nil
}

func (g *blockGenerator) newBlock(parent *types.Block) (*types.Block, error) {
	txs := make([]*types.Transaction, g.txs)
	for i := range txs {
		var prevTx, to common.Hash
		g.rand.Read(prevTx[:])
		g.rand.Read(to[:])
		tx := types.NewTransaction(
			[]*types.TxIn{{Address: g.signer.Address(), TxHash: prevTx}},
			[]*types.TxOut{{Address: common.BytesToAddress(to[:]), Amount: uint64(g.rand.Int63n(1000000))}},
		)
		signed, err := types.SignTx(tx, g.signer)
		if err != nil {
			return nil, err
		}
		txs[i] = signed
	}
	header := &types.Header{
		ParentHash: parent.Hash(),
		Nonce:      g.rand.Uint32(),
		Difficulty: parent.Header.Difficulty,
		Time:       parent.Time() + 1000,
		TxRoot:     types.DeriveTxsSha(txs),
	}
	return types.NewBlock(header, txs), nil
}

func importChain(ctx *cli.Context) error {
	fileName := ctx.Args().First()
	if len(fileName) == 0 {
		return ErrNoFileName
	}
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()

	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	imported, skipped, err := importBlocks(n.Chain(), file)
	if err != nil {
		return err
	}
	printf(ctx, "imported %d blocks, skipped %d blocks, orphans: %d, current height: %d, current hash: %s\n",
		imported, skipped, n.Chain().OrphanCount(), n.Chain().CurrentHeight(), n.Chain().Tip().Hex())
	return nil
}

// importBlocks reads rlp encoded blocks from r until EOF
func importBlocks(bc *chain.BlockChain, r io.Reader) (imported int, skipped int, err error) {
	stream := rlp.NewStream(r, 0)
	for {
		block := new(types.Block)
		if err := stream.Decode(block); err == io.EOF {
			return imported, skipped, nil
		} else if err != nil {
			return imported, skipped, fmt.Errorf("decode block %d fail: %w", imported+skipped, err)
		}
		if err := verifyTxs(block); err != nil {
			log.Warn("Skip block with invalid transaction", "hash", block.Hash().Prefix(), "err", err)
			skipped++
			continue
		}
		err := bc.InsertBlock(block)
		switch {
		case err == nil:
			imported++
		case errors.Is(err, chain.ErrOrphanBlock) || errors.Is(err, chain.ErrMalformedBlock):
			log.Warn("Skip block", "hash", block.Hash().Prefix(), "err", err)
			skipped++
		default:
			return imported, skipped, err
		}
	}
}

func verifyTxs(block *types.Block) error {
	for _, tx := range block.Txs {
		if err := types.VerifyTx(tx); err != nil {
			return err
		}
	}
	return nil
}

func exportChain(ctx *cli.Context) error {
	fileName := ctx.Args().First()
	if len(fileName) == 0 {
		return ErrNoFileName
	}
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()

	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	count := 0
	err = n.DB().IterateBlocks(func(seq uint64, block *types.Block) error {
		count++
		return rlp.Encode(file, block)
	})
	if err != nil {
		return err
	}
	printf(ctx, "exported %d blocks\n", count)
	return nil
}

func printTip(ctx *cli.Context) error {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()

	bc := n.Chain()
	printf(ctx, "height: %d\nhash: %s\nblocks: %d\n", bc.CurrentHeight(), bc.Tip().Hex(), bc.BlockCount())
	return nil
}

func printAncestry(ctx *cli.Context) error {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()

	printf(ctx, "%s\n", n.Chain().Genesis().Hash().Hex())
	for _, hash := range n.Chain().AncestryOfLongestChain() {
		printf(ctx, "%s\n", hash.Hex())
	}
	return nil
}

func printForks(ctx *cli.Context) error {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()

	printf(ctx, "%s\n", n.Chain().SerializeForks())
	return nil
}

func printBlock(ctx *cli.Context) error {
	hashStr := ctx.Args().First()
	if len(hashStr) == 0 {
		return ErrNoBlockHash
	}
	if !common.IsHexHash(hashStr) {
		return ErrInvalidHash
	}
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()

	hash := common.HexToHash(hashStr)
	block := n.Chain().GetBlockByHash(hash)
	if block == nil {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, hash.Hex())
	}
	height, _ := n.Chain().GetHeight(hash)
	title := color.New(color.FgGreen, color.Bold).SprintfFunc()
	printf(ctx, "%s\n", title("Block %d %s", height, hash.Hex()))
	printf(ctx, "%s", spew.Sdump(block.Header))
	for i, tx := range block.Txs {
		printf(ctx, "%s\n", color.CyanString("Tx %d: %s", i, tx.String()))
	}
	return nil
}
