package bus

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestPublishDeliversInOrder(t *testing.T) {
	b := New()
	var got []any
	b.Subscribe("test", "topic", func(msg any) { got = append(got, msg) })

	for i := range 5 {
		b.Publish("topic", i)
	}

	if len(got) != 5 {
		t.Fatalf("delivered %d messages, want 5", len(got))
	}
	for i, msg := range got {
		if msg != i {
			t.Fatalf("got[%d] = %v, want %d", i, msg, i)
		}
	}
}

func TestPublishIgnoresOtherTopics(t *testing.T) {
	b := New()
	calls := 0
	b.Subscribe("test", "a", func(any) { calls++ })
	b.Publish("b", "ignored")
	if calls != 0 {
		t.Fatalf("handler for topic a called %d times for topic b", calls)
	}
}

func TestReentrantPublishIsQueuedAfterCurrentMessage(t *testing.T) {
	b := New()
	var order []string
	b.Subscribe("first", "topic", func(msg any) {
		order = append(order, "first:"+msg.(string))
		if msg == "outer" {
			b.Publish("topic", "inner")
		}
	})
	b.Subscribe("second", "topic", func(msg any) {
		order = append(order, "second:"+msg.(string))
	})

	b.Publish("topic", "outer")

	want := []string{"first:outer", "second:outer", "first:inner", "second:inner"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Fatalf("delivery order = %v, want %v", order, want)
	}
}

func TestUnsubscribeAllRemovesOnlyOwner(t *testing.T) {
	b := New()
	var mine, theirs int
	b.Subscribe("mine", "topic", func(any) { mine++ })
	b.Subscribe("mine", "other", func(any) { mine++ })
	b.Subscribe("theirs", "topic", func(any) { theirs++ })

	b.UnsubscribeAll("mine")
	b.Publish("topic", nil)
	b.Publish("other", nil)

	if mine != 0 {
		t.Fatalf("unsubscribed owner received %d messages", mine)
	}
	if theirs != 1 {
		t.Fatalf("remaining subscriber received %d messages, want 1", theirs)
	}
	if n := b.SubscriberCount("topic"); n != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", n)
	}
}

func TestUnsubscribeSingle(t *testing.T) {
	b := New()
	calls := 0
	id := b.Subscribe("owner", "topic", func(any) { calls++ })
	b.Unsubscribe(id)
	b.Unsubscribe(id + 100)
	b.Publish("topic", nil)
	if calls != 0 {
		t.Fatalf("handler called %d times after Unsubscribe", calls)
	}
}

func TestSubscribeNilHandlerIsIgnored(t *testing.T) {
	b := New()
	if id := b.Subscribe("owner", "topic", nil); id != 0 {
		t.Fatalf("Subscribe(nil) = %d, want 0", id)
	}
	if n := b.SubscriberCount("topic"); n != 0 {
		t.Fatalf("SubscriberCount = %d, want 0", n)
	}
}

func TestHandlerPanicIsReportedAndDeliveryContinues(t *testing.T) {
	b := New()
	var errOut bytes.Buffer
	b.errOut = &errOut

	delivered := 0
	b.Subscribe("bad", "topic", func(any) { panic("boom") })
	b.Subscribe("good", "topic", func(any) { delivered++ })

	b.Publish("topic", nil)
	b.Publish("topic", nil)

	if delivered != 2 {
		t.Fatalf("good handler received %d messages, want 2", delivered)
	}
	if !strings.Contains(errOut.String(), "boom") || !strings.Contains(errOut.String(), "owner=bad") {
		t.Fatalf("panic report missing details: %q", errOut.String())
	}
}

func TestConcurrentPublishDeliversEverything(t *testing.T) {
	b := New()
	var mu sync.Mutex
	count := 0
	b.Subscribe("counter", "topic", func(any) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 100 {
				b.Publish("topic", nil)
			}
		})
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if count != 800 {
		t.Fatalf("delivered %d messages, want 800", count)
	}
}
