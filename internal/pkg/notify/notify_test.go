package notify

import "testing"

func TestInboxDrain(t *testing.T) {
	inbox := NewInbox(10)
	inbox.Success("Laptop added to cart")
	inbox.Error("Could not update quantity")

	got := inbox.Drain()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].Level != LevelSuccess || got[1].Level != LevelError {
		t.Fatalf("unexpected order/levels: %+v", got)
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Fatal("notifications need distinct ids")
	}
	if inbox.Len() != 0 {
		t.Fatal("drain must empty the inbox")
	}
	if drained := inbox.Drain(); drained == nil || len(drained) != 0 {
		t.Fatalf("empty drain should return an empty slice, got %#v", drained)
	}
}

func TestInboxDropsOldest(t *testing.T) {
	inbox := NewInbox(2)
	inbox.Success("one")
	inbox.Success("two")
	inbox.Success("three")

	got := inbox.Drain()
	if len(got) != 2 || got[0].Message != "two" || got[1].Message != "three" {
		t.Fatalf("unexpected contents: %+v", got)
	}
}

func TestMulti(t *testing.T) {
	a, b := NewInbox(5), NewInbox(5)
	Multi{a, b, Discard{}}.Error("boom")
	if a.Len() != 1 || b.Len() != 1 {
		t.Fatal("every notifier should receive the message")
	}
}
