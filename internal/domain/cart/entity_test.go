package cart

import (
	"encoding/json"
	"testing"
)

func TestServerCartDecodesLineShapes(t *testing.T) {
	raw := `{"_id":"cart-1","items":[
		{"_id":"l1","productId":"A","quantity":2,"price":"10"},
		{"_id":"l2","product":{"_id":"B","name":"RGB Keyboard","price":7.5},"quantity":1,"price":7.5},
		{"_id":"l3","product":"C","quantity":3},
		{"_id":"l4","product":null,"quantity":1}
	]}`

	var sc ServerCart
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		t.Fatal(err)
	}

	want := []struct {
		id  string
		qty int
	}{{"A", 2}, {"B", 1}, {"C", 3}, {"", 1}}
	if len(sc.Items) != len(want) {
		t.Fatalf("got %d lines", len(sc.Items))
	}
	for i, w := range want {
		if sc.Items[i].ProductID != w.id || sc.Items[i].Quantity != w.qty {
			t.Errorf("line %d: got %+v, want product %q qty %d", i, sc.Items[i], w.id, w.qty)
		}
	}
	if !sc.Items[1].Price.Equal(price("7.5")) || !sc.Items[2].Price.IsZero() {
		t.Fatalf("prices decoded wrong: %+v", sc.Items)
	}
}

func TestServerCartWithoutItemsKeepsNil(t *testing.T) {
	var sc ServerCart
	if err := json.Unmarshal([]byte(`{"_id":"cart-1"}`), &sc); err != nil {
		t.Fatal(err)
	}
	if sc.Items != nil {
		t.Fatalf("expected nil items, got %#v", sc.Items)
	}
}
