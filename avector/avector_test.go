package avector

import "testing"

func TestWidthFor(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{0, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{65536, 4},
		{1 << 20, 4},
	}
	for _, c := range cases {
		if got := WidthFor(c.n); got != c.want {
			t.Errorf("WidthFor(%d): got %d, want %d", c.n, got, c.want)
		}
	}
}

func TestVectorRoundTrip(t *testing.T) {
	for _, width := range []int{1, 2, 4} {
		v := New(width, 8)
		if v.Width() != width {
			t.Fatalf("width %d: Width() returned %d", width, v.Width())
		}
		if v.Len() != 8 {
			t.Fatalf("width %d: Len() returned %d", width, v.Len())
		}
		var max uint32
		switch width {
		case 1:
			max = 1<<8 - 1
		case 2:
			max = 1<<16 - 1
		case 4:
			max = 1<<32 - 1
		}
		for i := 0; i < 8; i++ {
			v.Set(i, max-uint32(i))
		}
		for i := 0; i < 8; i++ {
			if got := v.Get(i); got != max-uint32(i) {
				t.Errorf("width %d, row %d: got %d, want %d", width, i, got, max-uint32(i))
			}
		}
	}
}

func TestByteSize(t *testing.T) {
	v := New(2, 10)
	if v.ByteSize() != 20 {
		t.Errorf("got %d, want 20", v.ByteSize())
	}
}
