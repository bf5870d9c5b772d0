package core

import (
	"errors"
	"testing"
)

func TestCellNotComputed(t *testing.T) {
	var c Cell[int]
	if c.Ready() {
		t.Fatal("fresh cell should not be ready")
	}
	if _, err := c.Get(); !errors.Is(err, ErrNotComputed) {
		t.Fatalf("got %v, want ErrNotComputed", err)
	}
}

func TestCellProducerRunsOnce(t *testing.T) {
	calls := 0
	var c Cell[int]
	c.SetProducer(func() (int, error) {
		calls++
		return 42, nil
	})
	if !c.HasProducer() {
		t.Fatal("expected HasProducer after SetProducer")
	}
	for i := 0; i < 3; i++ {
		v, err := c.Get()
		if err != nil {
			t.Fatal(err)
		}
		if v != 42 {
			t.Fatalf("got %d, want 42", v)
		}
	}
	if calls != 1 {
		t.Fatalf("producer ran %d times, want 1", calls)
	}
	if !c.Ready() {
		t.Fatal("cell should be Ready after first Get")
	}
}

func TestCellSetValueSkipsProducer(t *testing.T) {
	var c Cell[string]
	c.SetValue("direct")
	if _, ok := c.Peek(); !ok {
		t.Fatal("expected Peek to find the directly-set value")
	}
	v, err := c.Get()
	if err != nil || v != "direct" {
		t.Fatalf("got (%q, %v), want (\"direct\", nil)", v, err)
	}
}
