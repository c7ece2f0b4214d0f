package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReloadFinished(t *testing.T) {
	m := New()
	m.ReloadFinished("ok", 20*time.Millisecond)
	m.ReloadFinished("ok", 30*time.Millisecond)
	m.ReloadFinished("error", time.Millisecond)

	if got := testutil.ToFloat64(m.CartReloads.WithLabelValues("ok")); got != 2 {
		t.Fatalf("expected 2 ok reloads, got %v", got)
	}
	if got := testutil.ToFloat64(m.CartReloads.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected 1 failed reload, got %v", got)
	}
}

func TestHandlerExposesCartMetrics(t *testing.T) {
	m := New()
	m.Enriched("dropped")
	m.SessionOpened()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`storefront_cart_enrichment_total{result="dropped"} 1`,
		`storefront_session_active 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNewIsolatedRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	_ = New()
	_ = New()
}
