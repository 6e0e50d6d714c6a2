package game

import "testing"

func TestSnapshotPoolReadBeforePublish(t *testing.T) {
	p := NewSnapshotPool(8)
	if _, ok := p.AcquireRead(); ok {
		t.Error("AcquireRead succeeded before any publish")
	}
}

func TestSnapshotPoolReturnsPrivateCopy(t *testing.T) {
	p := NewSnapshotPool(8)

	w := p.AcquireWrite()
	w.RoundScore = 3
	w.Circles = append(w.Circles, CircleSnapshot{X: 1, Y: 2, Radius: 8})
	p.PublishWrite()

	a, ok := p.AcquireRead()
	if !ok || a.RoundScore != 3 || len(a.Circles) != 1 {
		t.Fatalf("read = %+v, %v", a, ok)
	}
	a.Circles[0].X = 999

	b, _ := p.AcquireRead()
	if b.Circles[0].X != 1 {
		t.Error("mutating a read copy changed the pool")
	}
}

func TestSnapshotPoolSequenceAdvances(t *testing.T) {
	p := NewSnapshotPool(0)
	var last uint64
	for i := 0; i < 10; i++ {
		p.AcquireWrite()
		p.PublishWrite()
		snap, _ := p.AcquireRead()
		if snap.Sequence <= last {
			t.Fatalf("sequence %d did not advance past %d", snap.Sequence, last)
		}
		last = snap.Sequence
	}
}
