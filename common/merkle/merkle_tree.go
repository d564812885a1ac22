package merkle

import (
	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/LemoFoundationLtd/lemochain-store/common/crypto"
)

// EmptyRoot is the root of a tree without leaves
var EmptyRoot = crypto.Keccak256Hash(nil)

type MerkleTree struct {
	leafHashes []common.Hash // 叶子hash，外界传入
	nodes      []common.Hash // 所有节点hash，从叶子到root
}

// New 新建一个merkle tree
func New(leafHashes []common.Hash) *MerkleTree {
	return &MerkleTree{
		leafHashes: leafHashes,
	}
}

// Root 获取根Hash
func (m *MerkleTree) Root() common.Hash {
	if len(m.leafHashes) == 0 {
		return EmptyRoot
	}
	nodes := m.HashNodes()
	return nodes[len(nodes)-1]
}

// HashNodes 获取所有的hash，从叶子节点到根root. The last node of a level which has odd count is moved to the next level unchanged
func (m *MerkleTree) HashNodes() []common.Hash {
	if m.nodes == nil {
		m.calculateNodes()
	}
	return m.nodes
}

// calculateNodes 逐层计算中间节点
func (m *MerkleTree) calculateNodes() {
	m.nodes = make([]common.Hash, 0, len(m.leafHashes)*2)
	m.nodes = append(m.nodes, m.leafHashes...)
	level := m.leafHashes
	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				// odd node goes up unpaired, so [A,B,C] and [A,B,C,C] have different roots
				next = append(next, level[i])
				break
			}
			next = append(next, crypto.Keccak256Hash(level[i][:], level[i+1][:]))
		}
		m.nodes = append(m.nodes, next...)
		level = next
	}
}
