package frame

import (
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/pcodec/internal/testutil/testlog"
)

func TestNodesToBitmap(t *testing.T) {
	testlog.Start(t)
	bitmap, err := NodesToBitmap([]uint8{0, 1, 9, 239, 9})
	if err != nil {
		t.Fatalf("nodes to bitmap: %v", err)
	}
	if len(bitmap) != BitmapLen {
		t.Fatalf("expected %d bytes, got %d", BitmapLen, len(bitmap))
	}
	if bitmap[0] != 0x03 || bitmap[1] != 0x02 || bitmap[29] != 0x80 {
		t.Fatalf("unexpected bitmap % x", bitmap)
	}
	if _, err := NodesToBitmap([]uint8{240}); !errors.Is(err, ErrNodeAddr) {
		t.Fatalf("expected ErrNodeAddr, got %v", err)
	}
}

func TestBitmapToNodes(t *testing.T) {
	testlog.Start(t)
	bitmap, err := NodesToBitmap([]uint8{239, 0, 17, 2})
	if err != nil {
		t.Fatalf("nodes to bitmap: %v", err)
	}
	if got, want := BitmapToNodes(bitmap, false), []uint8{0, 2, 17, 239}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got, want := BitmapToNodes(bitmap, true), []uint8{2, 17, 239}; !reflect.DeepEqual(got, want) {
		t.Fatalf("with coordinator shift got %v, want %v", got, want)
	}
	if got := BitmapToNodes(nil, false); len(got) != 0 {
		t.Fatalf("expected no nodes, got %v", got)
	}
	long := make([]byte, 40)
	long[31] = 0x80
	long[32] = 0x01
	if got := BitmapToNodes(long, false); !reflect.DeepEqual(got, []uint8{255}) {
		t.Fatalf("expected only node 255, got %v", got)
	}
}
