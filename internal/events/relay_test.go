package events

import (
	"context"
	"errors"
	"testing"

	"beecommerce/internal/repos"
)

type fakePublisher struct {
	got    []string
	failAt int
}

func (f *fakePublisher) Publish(_ context.Context, eventType, key string, payload []byte) error {
	if f.failAt > 0 && len(f.got)+1 == f.failAt {
		return errors.New("broker down")
	}
	f.got = append(f.got, eventType+":"+key)
	return nil
}

func TestRelayTick(t *testing.T) {
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()
	outbox := repos.NewOutboxRepo(db)

	for _, id := range []string{"o-1", "o-2", "o-3"} {
		ev := New(OrderCreated, id, map[string]any{"n": 1})
		if err := outbox.Insert(ctx, ev.EventID, ev.Type, id, ev); err != nil {
			t.Fatal(err)
		}
	}

	pub := &fakePublisher{failAt: 2}
	r := NewRelay(outbox, pub, 0)
	n, err := r.Tick(ctx)
	if err == nil || n != 1 {
		t.Fatalf("want stop after first failure, got n=%d err=%v", n, err)
	}

	pub.failAt = 0
	n, err = r.Tick(ctx)
	if err != nil || n != 2 {
		t.Fatalf("retry: n=%d err=%v", n, err)
	}
	want := []string{"order.created:o-1", "order.created:o-2", "order.created:o-3"}
	for i, w := range want {
		if pub.got[i] != w {
			t.Fatalf("publish order: got %v", pub.got)
		}
	}
	if n, _ := r.Tick(ctx); n != 0 {
		t.Fatal("sent rows republished")
	}
}

func TestNewClientParsesBrokers(t *testing.T) {
	if NewClient(" ").Enabled() {
		t.Fatal("blank broker list must disable kafka")
	}
	c := NewClient("a:9092, b:9092,")
	if !c.Enabled() || len(c.Brokers) != 2 || c.Brokers[1] != "b:9092" {
		t.Fatalf("brokers: %v", c.Brokers)
	}
}
