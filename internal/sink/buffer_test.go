package sink

import (
	"sync"
	"testing"
	"time"
)

func TestBuffer_FIFO(t *testing.T) {
	buf := NewBuffer[int](4)
	for i := 0; i < 50; i++ {
		if !buf.Send(i) {
			t.Fatalf("Send(%d) returned false", i)
		}
	}

	if st := buf.Stats(); st.Resizes < 3 {
		t.Errorf("Resizes = %d, expected at least 3", st.Resizes)
	}

	for i := 0; i < 50; i++ {
		got, ok := buf.TryReceive()
		if !ok {
			t.Fatalf("TryReceive() returned false for item %d", i)
		}
		if got != i {
			t.Errorf("received %d, want %d", got, i)
		}
	}
	if _, ok := buf.TryReceive(); ok {
		t.Error("TryReceive() on empty buffer returned true")
	}
}

func TestBuffer_GrowsAtThreshold(t *testing.T) {
	buf := NewBuffer[int](10)
	for i := 0; i < 6; i++ {
		buf.Send(i)
	}
	if st := buf.Stats(); st.Cap != 10 || st.Resizes != 0 {
		t.Fatalf("after 6 sends: %+v, want cap 10 and no resize", st)
	}

	buf.Send(6)
	if st := buf.Stats(); st.Cap != 20 || st.Resizes != 1 {
		t.Errorf("after 7 sends: %+v, want cap 20 and one resize", st)
	}
}

func TestBuffer_GrowWhileWrapped(t *testing.T) {
	buf := NewBuffer[int](8)
	for i := 1; i <= 4; i++ {
		buf.Send(i)
	}
	buf.TryReceive()
	buf.TryReceive()
	for i := 5; i <= 12; i++ {
		buf.Send(i)
	}

	for want := 3; want <= 12; want++ {
		got, ok := buf.TryReceive()
		if !ok || got != want {
			t.Fatalf("TryReceive() = %d, %v; want %d, true", got, ok, want)
		}
	}
}

func TestBuffer_DrainTo(t *testing.T) {
	buf := NewBuffer[int](10)
	if got := buf.DrainTo(5); got != nil {
		t.Errorf("DrainTo on empty buffer = %v, want nil", got)
	}

	for i := 0; i < 8; i++ {
		buf.Send(i)
	}

	first := buf.DrainTo(3)
	if len(first) != 3 || first[0] != 0 || first[2] != 2 {
		t.Errorf("DrainTo(3) = %v, want [0 1 2]", first)
	}

	rest := buf.DrainTo(0)
	if len(rest) != 5 || rest[0] != 3 || rest[4] != 7 {
		t.Errorf("DrainTo(0) = %v, want [3 4 5 6 7]", rest)
	}
	if buf.Len() != 0 {
		t.Errorf("Len() = %d, want 0", buf.Len())
	}

	st := buf.Stats()
	if st.Sent != 8 || st.Received != 8 {
		t.Errorf("Stats() = %+v, want 8 sent and 8 received", st)
	}
}

func TestBuffer_CloseKeepsPendingItems(t *testing.T) {
	buf := NewBuffer[string](4)
	buf.Send("a")
	buf.Close()

	if buf.Send("b") {
		t.Error("Send should return false after Close")
	}
	got, ok := buf.Receive()
	if !ok || got != "a" {
		t.Errorf("Receive() = %q, %v; want a, true", got, ok)
	}
	if _, ok := buf.Receive(); ok {
		t.Error("Receive should return false when closed and empty")
	}
}

func TestBuffer_CloseUnblocksReceive(t *testing.T) {
	buf := NewBuffer[int](4)

	done := make(chan bool, 1)
	go func() {
		_, ok := buf.Receive()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	buf.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("Receive should return false when closed and empty")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock Receive")
	}
}

func TestBuffer_ConcurrentProducers(t *testing.T) {
	const (
		producers = 8
		perWorker = 250
	)
	buf := NewBuffer[int](2)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				buf.Send(p*perWorker + i)
			}
		}(p)
	}

	seen := make(map[int]bool)
	for len(seen) < producers*perWorker {
		v, ok := buf.Receive()
		if !ok {
			t.Fatal("Receive returned false before all items arrived")
		}
		if seen[v] {
			t.Fatalf("duplicate item %d", v)
		}
		seen[v] = true
	}
	wg.Wait()
}

func TestNewBuffer_MinCapacity(t *testing.T) {
	for _, c := range []int{0, -5} {
		if got := NewBuffer[int](c).Stats().Cap; got != 1 {
			t.Errorf("NewBuffer(%d) cap = %d, want 1", c, got)
		}
	}
}
