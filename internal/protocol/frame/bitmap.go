package frame

import (
	"errors"
	"fmt"
)

// BitmapLen is the size of a DPA node bitmap: one bit per address 0..239.
const BitmapLen = 30

// MaxBitmapNode is the highest address a node bitmap can hold.
const MaxBitmapNode = BitmapLen*8 - 1

var ErrNodeAddr = errors.New("frame: node address outside bitmap")

// NodesToBitmap sets bit n%8 of byte n/8 for every node n. Duplicates are
// harmless.
func NodesToBitmap(nodes []uint8) ([]byte, error) {
	bitmap := make([]byte, BitmapLen)
	for _, n := range nodes {
		if int(n) > MaxBitmapNode {
			return nil, fmt.Errorf("%w: %d", ErrNodeAddr, n)
		}
		bitmap[n/8] |= 1 << (n % 8)
	}
	return bitmap, nil
}

// BitmapToNodes lists the set bits of bitmap in ascending order. With
// coordinatorShift the bit for address 0 is a placeholder and is skipped.
// Bits past address 255 are ignored.
func BitmapToNodes(bitmap []byte, coordinatorShift bool) []uint8 {
	start := 0
	if coordinatorShift {
		start = 1
	}
	end := min(len(bitmap)*8, 256)
	nodes := make([]uint8, 0)
	for i := start; i < end; i++ {
		if bitmap[i/8]&(1<<(i%8)) != 0 {
			nodes = append(nodes, uint8(i))
		}
	}
	return nodes
}
