package registry

import (
	"sync"
	"testing"
)

type stubConn struct {
	id string
}

func (c *stubConn) ID() string             { return c.id }
func (c *stubConn) Send(data []byte) error { return nil }

func TestRegisterAndMembers(t *testing.T) {
	reg := New()
	a := &stubConn{id: "a"}
	b := &stubConn{id: "b"}

	reg.Register(1, a)
	reg.Register(1, b)
	reg.Register(2, &stubConn{id: "c"})

	if got := len(reg.Members(1)); got != 2 {
		t.Fatalf("expected 2 members in room 1, got %d", got)
	}
	if got := len(reg.Members(2)); got != 1 {
		t.Fatalf("expected 1 member in room 2, got %d", got)
	}
	if rooms, conns := reg.Stats(); rooms != 2 || conns != 3 {
		t.Fatalf("expected 2 rooms / 3 conns, got %d / %d", rooms, conns)
	}
}

func TestUnregisterIdempotent(t *testing.T) {
	reg := New()
	a := &stubConn{id: "a"}

	reg.Register(1, a)
	reg.Unregister(a)
	reg.Unregister(a)
	reg.Unregister(&stubConn{id: "never-registered"})

	if got := len(reg.Members(1)); got != 0 {
		t.Fatalf("expected empty room, got %d members", got)
	}
	if rooms, conns := reg.Stats(); rooms != 0 || conns != 0 {
		t.Fatalf("expected empty registry, got %d rooms / %d conns", rooms, conns)
	}
}

func TestReregisterMovesRooms(t *testing.T) {
	reg := New()
	a := &stubConn{id: "a"}

	reg.Register(1, a)
	reg.Register(2, a)

	if got := len(reg.Members(1)); got != 0 {
		t.Fatalf("expected conn moved out of room 1, got %d members", got)
	}
	if got := len(reg.Members(2)); got != 1 {
		t.Fatalf("expected conn in room 2, got %d members", got)
	}
}

func TestConcurrentRegisterUnregister(t *testing.T) {
	reg := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			conn := &stubConn{id: string(rune('a' + n%26))}
			reg.Register(int64(n%5), conn)
			reg.Members(int64(n % 5))
			reg.Unregister(conn)
		}(i)
	}
	wg.Wait()

	if rooms, conns := reg.Stats(); rooms != 0 || conns != 0 {
		t.Fatalf("expected empty registry after churn, got %d rooms / %d conns", rooms, conns)
	}
}
