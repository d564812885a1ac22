package chain

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/LemoFoundationLtd/lemochain-store/chain/types"
	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/LemoFoundationLtd/lemochain-store/common/log"
)

// The bytes length of prefix hash to show
const hashLength = 3

type forkNode struct {
	Hash   common.Hash
	Parent common.Hash
	Height uint32
}

type forkTable struct {
	// It's a fork path table. Every row is a fork, and every blocks in a column has same height. The first item in each row is the root block of the forks
	Rows [][]*forkNode
	// It is used to sort blocks in a column
	SortingColumn int
	// The width of block height string
	HeightWidth int
	// Hash of the head block of the current fork
	CurrentHeadHash common.Hash
}

// Dump forks into a table. Every row is a path from root to a leaf block
func newForkTable(leaves []*forkNode, nodes map[common.Hash]*forkNode, currentHash common.Hash) *forkTable {
	result := &forkTable{
		Rows:            make([][]*forkNode, len(leaves)),
		CurrentHeadHash: currentHash,
	}

	for i, leaf := range leaves {
		result.Rows[i] = collectToRoot(leaf, nodes)

		// find max height string width
		width := len(strconv.Itoa(int(leaf.Height)))
		if width > result.HeightWidth {
			result.HeightWidth = width
		}
	}
	result.cutCommonPrefix()
	return result
}

// collectToRoot returns the path from root to node
func collectToRoot(node *forkNode, nodes map[common.Hash]*forkNode) []*forkNode {
	path := make([]*forkNode, node.Height+1)
	for i := int(node.Height); i >= 0 && node != nil; i-- {
		path[i] = node
		node = nodes[node.Parent]
	}
	return path
}

// cutCommonPrefix drop the blocks which are shared by all forks, except the last one. So the root of table is the
// latest common ancestor
func (t *forkTable) cutCommonPrefix() {
	if len(t.Rows) == 0 {
		return
	}
	shared := len(t.Rows[0])
	for _, row := range t.Rows[1:] {
		i := 0
		for i < shared && i < len(row) && row[i] == t.Rows[0][i] {
			i++
		}
		shared = i
	}
	if shared == 0 {
		return
	}
	for i, row := range t.Rows {
		t.Rows[i] = row[shared-1:]
	}
}

func (t forkTable) Len() int {
	return len(t.Rows)
}

func (t forkTable) Less(i, j int) bool {
	iBlock := t.Rows[i][t.SortingColumn]
	jBlock := t.Rows[j][t.SortingColumn]
	if iBlock == nil || jBlock == nil {
		log.Warn("Sorting error block")
		return false
	}
	return bytes.Compare(iBlock.Hash[:], jBlock.Hash[:]) < 0
}

func (t forkTable) Swap(i, j int) {
	t.Rows[i], t.Rows[j] = t.Rows[j], t.Rows[i]
}

// Sort sort the fork from startRow to endRow (not include endRow) by hash dictionary order at sortingColumn.
func (t forkTable) Sort(startRow, endRow, sortingColumn int) {
	rowCount := endRow - startRow
	if rowCount <= 1 {
		return
	}

	// sort from start row to end row. The rows are sorted in place
	sortTarget := &forkTable{
		Rows:          t.Rows[startRow:endRow],
		SortingColumn: sortingColumn,
	}
	sort.Sort(sortTarget)

	// sort recursively
	mergeStart := 0
	for i := 0; i < rowCount-1; i++ {
		block := sortTarget.Rows[i][sortingColumn]
		nextBlock := sortTarget.Rows[i+1][sortingColumn]
		// merge same blocks on different rows
		if block != nextBlock {
			// sort next column
			sortTarget.Sort(mergeStart, i+1, sortingColumn+1)
			mergeStart = i + 1
		} else if i == rowCount-2 {
			sortTarget.Sort(mergeStart, rowCount, sortingColumn+1)
		}
	}
}

func isSameParent(rows [][]*forkNode, row1, row2, column int) bool {
	if row1 < 0 || row2 < 0 {
		return false
	}
	if len(rows[row1]) <= column || len(rows[row2]) <= column {
		return false
	}
	return rows[row1][column].Parent == rows[row2][column].Parent
}

func (t forkTable) String() string {
	type flagCell struct {
		connection int
		block      *forkNode
	}
	const (
		u = 0x1   // up
		d = 0x10  // down
		r = 0x100 // right
	)
	flagTable := make([][]flagCell, len(t.Rows))
	for i := 0; i < len(t.Rows); i++ {
		row := t.Rows[i]
		flagTable[i] = make([]flagCell, len(row))
		for j := 0; j < len(row); j++ {
			// only show every block once
			if i == 0 || len(t.Rows[i-1]) <= j || t.Rows[i-1][j] != t.Rows[i][j] {
				flagTable[i][j].connection = r
				flagTable[i][j].block = row[j]
			}

			// connect different up down neighbor if they had same parent
			if isSameParent(t.Rows, i-1, i, j) && t.Rows[i-1][j] != t.Rows[i][j] {
				flagTable[i-1][j].connection |= d
				flagTable[i][j].connection |= u
				// connect blocks in the column for the scene below
				// ├[101]1f5603┬[102]44ae7c
				// │           └[102]6490a0
				// └[101]29d8a5─[102]379da9
				startRow := i - 1
				for isSameParent(t.Rows, startRow-1, startRow, j) {
					flagTable[startRow-1][j].connection |= d
					flagTable[startRow][j].connection |= u
					startRow--
				}
			}
		}
	}

	format := fmt.Sprintf("[%%%dd]%%x", t.HeightWidth)
	var sb strings.Builder
	for _, row := range flagTable {
		for _, cell := range row {
			switch cell.connection {
			case 0x0:
				sb.WriteString(" ")
			case 0x11:
				sb.WriteString("│")
			case 0x100:
				sb.WriteString("─")
			case 0x101:
				sb.WriteString("└")
			case 0x110:
				sb.WriteString("┬")
			case 0x111:
				sb.WriteString("├")
			default:
				log.Warnf("unknown connection %x", cell.connection)
			}
			if cell.block != nil {
				sb.WriteString(fmt.Sprintf(format, cell.block.Height, cell.block.Hash[:hashLength]))
				if cell.block.Hash == t.CurrentHeadHash {
					sb.WriteString(" <-Current")
				}
			} else {
				sb.WriteString(strings.Repeat(" ", 2+t.HeightWidth+hashLength*2))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SerializeForks dumps the blocks tree into string. Only the forks after the latest common ancestor are printed
func SerializeForks(blocks map[common.Hash]*types.Block, heights map[common.Hash]uint32, currentHash common.Hash) string {
	nodes := make(map[common.Hash]*forkNode, len(blocks))
	hasChild := make(map[common.Hash]bool, len(blocks))
	for hash, block := range blocks {
		nodes[hash] = &forkNode{Hash: hash, Parent: block.ParentHash(), Height: heights[hash]}
		hasChild[block.ParentHash()] = true
	}
	leaves := make([]*forkNode, 0)
	for hash, node := range nodes {
		if !hasChild[hash] {
			leaves = append(leaves, node)
		}
	}
	if len(leaves) == 0 {
		return ""
	}

	table := newForkTable(leaves, nodes, currentHash)
	table.Sort(0, len(table.Rows), 0)
	return table.String()
}
