package merkle

import (
	"testing"

	"github.com/LemoFoundationLtd/lemochain-store/common"
	"github.com/LemoFoundationLtd/lemochain-store/common/crypto"
	"github.com/stretchr/testify/assert"
)

var src = []string{
	"0x5f30cc80133b9394156e24b233f0c4be32b24e44bb3381f02c7ba52619d0febc",
	"0xbdd637c523ed5c0eab792b986db18850c239a2e23802b36aff26bb68fb3fe008",
	"0x2ed873ae0dd2372777c57a685d907083ca97290e508f15478ca98bad3225ebbc",
	"0x1e4c3d286aada9b795029df6a2da044699943ea25a18adfa2995ad798dbb922b",
	"0x4b7471ea1795646eac817cf8a39e94a0f3a120e3affe4ad69240b97c74896c25",
}

func makeHashes(count int) []common.Hash {
	res := make([]common.Hash, 0, count)
	for _, s := range src[:count] {
		res = append(res, common.HexToHash(s))
	}
	return res
}

func pair(a, b common.Hash) common.Hash {
	return crypto.Keccak256Hash(a[:], b[:])
}

func TestMerkleTree_Root(t *testing.T) {
	h := makeHashes(5)

	// empty
	assert.Equal(t, EmptyRoot, New(nil).Root())
	// single leaf is the root
	assert.Equal(t, h[0], New(h[:1]).Root())
	// two leaves
	assert.Equal(t, pair(h[0], h[1]), New(h[:2]).Root())
	// three leaves, the last one goes up alone
	assert.Equal(t, pair(pair(h[0], h[1]), h[2]), New(h[:3]).Root())
	// five leaves
	l1 := []common.Hash{pair(h[0], h[1]), pair(h[2], h[3]), h[4]}
	l2 := []common.Hash{pair(l1[0], l1[1]), l1[2]}
	assert.Equal(t, pair(l2[0], l2[1]), New(h).Root())
}

func TestMerkleTree_HashNodes(t *testing.T) {
	h := makeHashes(5)
	nodes := New(h).HashNodes()
	// 5 leaves + 3 + 2 + 1
	assert.Equal(t, 11, len(nodes))
	assert.Equal(t, h, nodes[:5])

	// order matters
	reversed := []common.Hash{h[1], h[0]}
	assert.NotEqual(t, New(h[:2]).Root(), New(reversed).Root())
}

func TestMerkleTree_DuplicatedLastLeaf(t *testing.T) {
	h := makeHashes(3)
	withDup := append(makeHashes(3), h[2])
	assert.NotEqual(t, New(h).Root(), New(withDup).Root())

	h = makeHashes(5)
	withDup = append(makeHashes(5), h[4])
	assert.NotEqual(t, New(h).Root(), New(withDup).Root())
}
