package chunk

import "testing"

func TestPalettedContainerShapeTransitions(t *testing.T) {
	const len16x16x16 = 4096
	c := NewPalettedContainer(len16x16x16, int32('A'))
	if c.Shape() != Single {
		t.Fatalf("fresh container shape = %v, want Single", c.Shape())
	}

	for i, v := range []int32{'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O', 'P', 'Q'} {
		c.Set(i, v)
	}
	if c.Shape() != Indirect {
		t.Fatalf("after 16 distinct writes shape = %v, want Indirect", c.Shape())
	}
	if got := c.Get(0); got != 'B' {
		t.Fatalf("Get(0) = %c, want B", got)
	}

	c.Set(16, 'R')
	if c.Shape() != Direct {
		t.Fatalf("after 17th distinct value shape = %v, want Direct", c.Shape())
	}
	if got := c.Get(16); got != 'R' {
		t.Fatalf("Get(16) = %c, want R", got)
	}

	c.Fill('A')
	c.Optimise()
	if c.Shape() != Single {
		t.Fatalf("after fill+optimise shape = %v, want Single", c.Shape())
	}
	if got := c.Get(4095); got != 'A' {
		t.Fatalf("Get(4095) = %c, want A", got)
	}
}

func TestPalettedContainerSetReturnsOldAndPreservesShapeOnNoop(t *testing.T) {
	c := NewPalettedContainer(64, int32(1))
	c.Set(0, 2)
	if c.Shape() != Indirect {
		t.Fatalf("shape = %v, want Indirect", c.Shape())
	}
	old := c.Set(0, 2)
	if old != 2 {
		t.Fatalf("Set with unchanged value returned %d, want 2", old)
	}
	if c.Shape() != Indirect {
		t.Fatalf("shape after unchanged Set = %v, want Indirect", c.Shape())
	}
	if got := c.Get(0); got != 2 {
		t.Fatalf("Get(0) = %d, want 2", got)
	}
}

func TestPalettedContainerOptimiseIdempotent(t *testing.T) {
	c := NewPalettedContainer(64, int32(0))
	c.Set(1, 9)
	c.Set(2, 9)
	c.Optimise()
	shape := c.Shape()
	c.Optimise()
	if c.Shape() != shape {
		t.Fatalf("second Optimise changed shape from %v to %v", shape, c.Shape())
	}
}

func TestPalettedContainerOutOfBoundsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-bounds index")
		}
	}()
	c := NewPalettedContainer(16, int32(0))
	c.Get(16)
}

func TestPalettedContainerDirectIndependentOfPalette(t *testing.T) {
	c := NewPalettedContainer(32, int32(0))
	for i := 0; i < 17; i++ {
		c.Set(i, int32(i))
	}
	if c.Shape() != Direct {
		t.Fatalf("shape = %v, want Direct", c.Shape())
	}
	for i := 0; i < 17; i++ {
		if got := c.Get(i); got != int32(i) {
			t.Fatalf("Get(%d) = %d, want %d", i, got, i)
		}
	}
}
