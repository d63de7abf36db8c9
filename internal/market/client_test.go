package market

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newSnapshotClient(t *testing.T, goldBody, forexBody string) *Client {
	t.Helper()
	gold := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(goldBody))
	}))
	t.Cleanup(gold.Close)
	forex := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forexBody))
	}))
	t.Cleanup(forex.Close)
	return NewClient(gold.URL, forex.URL, "http://unused.invalid", "AED", 5*time.Second)
}

func TestSnapshot_DerivedPrices(t *testing.T) {
	client := newSnapshotClient(t,
		`{"name":"Gold","price":2000.0}`,
		`{"result":"success","rates":{"AED":3.6725,"EUR":0.92}}`)

	snap, err := client.Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Currency != "AED" {
		t.Fatalf("expected default currency AED, got %q", snap.Currency)
	}
	wantOunce := 2000.0 * 3.6725
	if math.Abs(snap.OuncePrice-wantOunce) > 1e-9 {
		t.Fatalf("expected ounce price %v, got %v", wantOunce, snap.OuncePrice)
	}
	wantGram := wantOunce / GramsPerTroyOunce
	if math.Abs(snap.GramPrice-wantGram) > 1e-9 {
		t.Fatalf("expected gram price %v, got %v", wantGram, snap.GramPrice)
	}
	if math.Abs(snap.KilogramPrice-wantGram*1000) > 1e-6 {
		t.Fatalf("expected kilo price %v, got %v", wantGram*1000, snap.KilogramPrice)
	}
}

func TestSnapshot_UnsupportedCurrency(t *testing.T) {
	client := newSnapshotClient(t,
		`{"price":2000.0}`,
		`{"rates":{"AED":3.6725}}`)
	if _, err := client.Snapshot(context.Background(), "xyz"); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
}

func TestSnapshot_MalformedGold(t *testing.T) {
	client := newSnapshotClient(t, `{"name":"Gold"}`, `{"rates":{"AED":3.6725}}`)
	if _, err := client.Snapshot(context.Background(), "AED"); !errors.Is(err, ErrMarketData) {
		t.Fatalf("expected ErrMarketData, got %v", err)
	}
}

func TestSnapshot_ConnectionFailure(t *testing.T) {
	gold := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	gold.Close() // immediately unreachable
	client := NewClient(gold.URL, gold.URL, gold.URL, "AED", time.Second)
	if _, err := client.Snapshot(context.Background(), "AED"); !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}

func TestClampDays(t *testing.T) {
	cases := []struct{ in, want int }{
		{1, 7}, {6, 7}, {7, 7}, {15, 15}, {30, 30}, {31, 30}, {100, 30}, {-4, 7},
	}
	for _, tc := range cases {
		if got := ClampDays(tc.in); got != tc.want {
			t.Fatalf("ClampDays(%d): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

// historyServer serves one [ts, price] pair per day for the past `days` days.
func historyServer(t *testing.T, days int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC().Truncate(24 * time.Hour)
		body := `{"prices":[`
		for i := days - 1; i >= 0; i-- {
			ts := now.AddDate(0, 0, -i).UnixMilli()
			if i != days-1 {
				body += ","
			}
			body += fmt.Sprintf("[%d,%f]", ts, 2000.0+float64(i))
		}
		body += `]}`
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHistory_TrimsToWindow(t *testing.T) {
	srv := historyServer(t, 40)
	client := NewClient("http://unused.invalid", "http://unused.invalid", srv.URL, "AED", 5*time.Second)

	hist, err := client.History(context.Background(), 100)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist.Labels) != 30 || len(hist.Prices) != 30 {
		t.Fatalf("expected 30 points, got %d labels / %d prices", len(hist.Labels), len(hist.Prices))
	}

	hist, err = client.History(context.Background(), 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist.Labels) != 7 || len(hist.Prices) != 7 {
		t.Fatalf("expected 7 points, got %d labels / %d prices", len(hist.Labels), len(hist.Prices))
	}
}

func TestHistory_CollapsesIntradaySamples(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
		body := fmt.Sprintf(`{"prices":[[%d,2000],[%d,2010],[%d,2020]]}`,
			day.UnixMilli(),
			day.Add(6*time.Hour).UnixMilli(),
			day.AddDate(0, 0, 1).UnixMilli())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()
	client := NewClient("http://unused.invalid", "http://unused.invalid", srv.URL, "AED", 5*time.Second)

	hist, err := client.History(context.Background(), 7)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist.Prices) != 2 {
		t.Fatalf("expected 2 daily points, got %d", len(hist.Prices))
	}
	if hist.Prices[0] != 2010 {
		t.Fatalf("expected last intraday sample 2010, got %v", hist.Prices[0])
	}
}

func TestHistory_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prices":[]}`))
	}))
	defer srv.Close()
	client := NewClient("http://unused.invalid", "http://unused.invalid", srv.URL, "AED", 5*time.Second)
	if _, err := client.History(context.Background(), 14); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
