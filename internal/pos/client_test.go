package pos

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brewcost/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(config.POSConfig{
		BaseURL:     srv.URL,
		AccessToken: "test-token-1234567890",
		LocationID:  "LOC1",
		CacheDir:    t.TempDir(),
		CacheTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestStatusReportsLocationName(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/locations", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token-1234567890" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"locations":[
			{"id":"LOC1","name":"Main Street","status":"ACTIVE","currency":"USD"},
			{"id":"LOC2","name":"Warehouse","status":"ACTIVE","currency":"USD"}
		]}`))
	})

	client := newTestClient(t, mux)
	status := client.Status(context.Background())

	if !status.Connected {
		t.Fatalf("Connected = false, error %q", status.Error)
	}
	if status.LocationName != "Main Street" {
		t.Fatalf("LocationName = %q, want Main Street", status.LocationName)
	}
}

func TestStatusSurfacesAPIError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/locations", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"category":"AUTHENTICATION_ERROR","code":"UNAUTHORIZED","detail":"bad token"}]}`))
	})

	client := newTestClient(t, mux)
	status := client.Status(context.Background())

	if status.Connected {
		t.Fatal("Connected = true for unauthorized token")
	}
	if status.Error == "" {
		t.Fatal("expected error detail in status")
	}
}

func TestTeamListsMembersAndJobs(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/team-members/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"team_members":[
			{"id":"TM1","given_name":"Ana","family_name":"Ruiz","email_address":"ana@example.com","status":"ACTIVE"},
			{"id":"TM2","given_name":"Ben","family_name":"","status":"ACTIVE"}
		]}`))
	})
	mux.HandleFunc("GET /v2/team/jobs", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jobs":[
			{"id":"JOB1","title":"Barista","hourly_rate":{"amount":1850,"currency":"USD"}},
			{"id":"JOB2","title":"Shift Lead"}
		]}`))
	})

	client := newTestClient(t, mux)
	report, err := client.Team(context.Background())
	if err != nil {
		t.Fatalf("Team: %v", err)
	}

	if len(report.TeamMembers) != 2 {
		t.Fatalf("TeamMembers count = %d, want 2", len(report.TeamMembers))
	}
	ana := report.TeamMembers[0]
	if ana.Name != "Ana Ruiz" || ana.Email != "ana@example.com" || ana.Status != "ACTIVE" {
		t.Fatalf("unexpected first member %+v", ana)
	}
	if report.TeamMembers[1].Name != "Ben" {
		t.Fatalf("single-name member = %q, want Ben", report.TeamMembers[1].Name)
	}

	if len(report.Jobs) != 2 {
		t.Fatalf("Jobs count = %d, want 2", len(report.Jobs))
	}
	barista := report.Jobs[0]
	if barista.Title != "Barista" || barista.HourlyRate == nil || *barista.HourlyRate != 18.50 {
		t.Fatalf("unexpected first job %+v", barista)
	}
	if report.Jobs[1].HourlyRate != nil {
		t.Fatal("job without a wage should have no hourly rate")
	}
}

func TestLaborSummarySubtractsUnpaidBreaks(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/labor/timecards/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"timecards":[
			{
				"id":"TC1","team_member_id":"TM1",
				"start_at":"2026-03-02T09:00:00Z","end_at":"2026-03-02T17:30:00Z",
				"wage":{"title":"Barista","hourly_rate":{"amount":2000,"currency":"USD"}},
				"breaks":[
					{"start_at":"2026-03-02T12:00:00Z","end_at":"2026-03-02T12:30:00Z","is_paid":false},
					{"start_at":"2026-03-02T15:00:00Z","end_at":"2026-03-02T15:15:00Z","is_paid":true}
				]
			},
			{
				"id":"TC2","team_member_id":"TM2",
				"start_at":"2026-03-02T08:00:00Z","end_at":"2026-03-02T12:00:00Z",
				"wage":{"title":"Cook","hourly_rate":{"amount":2500,"currency":"USD"}},
				"breaks":[]
			}
		]}`))
	})
	mux.HandleFunc("POST /v2/team-members/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"team_members":[
			{"id":"TM1","given_name":"Ana","family_name":"Ruiz"},
			{"id":"TM2","given_name":"Ben","family_name":""}
		]}`))
	})

	client := newTestClient(t, mux)
	report, err := client.LaborSummary(context.Background(), 7)
	if err != nil {
		t.Fatalf("LaborSummary: %v", err)
	}

	// TC1 spans 8.5h minus a 0.5h unpaid break; the paid break stays in.
	if report.TotalHours != 12.0 {
		t.Fatalf("TotalHours = %v, want 12.0", report.TotalHours)
	}
	if report.TotalCost != 260.0 {
		t.Fatalf("TotalCost = %v, want 260.0", report.TotalCost)
	}
	if len(report.ByEmployee) != 2 {
		t.Fatalf("ByEmployee count = %d", len(report.ByEmployee))
	}
	if report.ByEmployee[0].Name != "Ana Ruiz" || report.ByEmployee[0].LaborCost != 160.0 {
		t.Fatalf("top employee = %+v", report.ByEmployee[0])
	}
	if report.ByJob[0].Title != "Barista" {
		t.Fatalf("top job = %+v", report.ByJob[0])
	}
}

func TestProductMixAggregatesItemsAndCategories(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/orders/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orders":[
			{
				"id":"O1","created_at":"2026-03-02T10:00:00Z","state":"COMPLETED",
				"total_money":{"amount":1200,"currency":"USD"},
				"line_items":[
					{"name":"Latte","quantity":"2","gross_sales_money":{"amount":900,"currency":"USD"}},
					{"name":"Croissant","quantity":"1","gross_sales_money":{"amount":300,"currency":"USD"}}
				]
			},
			{
				"id":"O2","created_at":"2026-03-03T11:00:00Z","state":"COMPLETED",
				"total_money":{"amount":450,"currency":"USD"},
				"line_items":[
					{"name":"Latte","quantity":"1","gross_sales_money":{"amount":450,"currency":"USD"}}
				]
			}
		]}`))
	})
	mux.HandleFunc("GET /v2/catalog/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"objects":[
			{"id":"CAT1","type":"CATEGORY","category_data":{"name":"Drinks"}},
			{"id":"ITEM1","type":"ITEM","item_data":{"name":"Latte","category_id":"CAT1"}}
		]}`))
	})

	client := newTestClient(t, mux)
	report, err := client.ProductMix(context.Background(), 30)
	if err != nil {
		t.Fatalf("ProductMix: %v", err)
	}

	if report.OrderCount != 2 || report.TotalRevenue != 16.50 {
		t.Fatalf("report = %+v", report)
	}
	if report.AvgTicket != 8.25 {
		t.Fatalf("AvgTicket = %v, want 8.25", report.AvgTicket)
	}

	if report.Items[0].Name != "Latte" {
		t.Fatalf("top item = %+v", report.Items[0])
	}
	if report.Items[0].Quantity != 3 || report.Items[0].Revenue != 13.50 {
		t.Fatalf("latte row = %+v", report.Items[0])
	}
	if report.Items[0].Category != "Drinks" {
		t.Fatalf("latte category = %q", report.Items[0].Category)
	}
	if report.Items[1].Category != "Uncategorized" {
		t.Fatalf("croissant category = %q", report.Items[1].Category)
	}

	if report.Categories[0].Category != "Drinks" || report.Categories[0].PctOfRevenue != 81.8 {
		t.Fatalf("top category = %+v", report.Categories[0])
	}
}

func TestSalesByPeriodGroupsByWeek(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/orders/search", func(w http.ResponseWriter, r *http.Request) {
		// Mon Mar 2 and Sun Mar 8 share a week; Mon Mar 9 starts the next.
		w.Write([]byte(`{"orders":[
			{"id":"O1","created_at":"2026-03-02T10:00:00Z","total_money":{"amount":1000,"currency":"USD"}},
			{"id":"O2","created_at":"2026-03-08T10:00:00Z","total_money":{"amount":500,"currency":"USD"}},
			{"id":"O3","created_at":"2026-03-09T10:00:00Z","total_money":{"amount":2000,"currency":"USD"}}
		]}`))
	})

	client := newTestClient(t, mux)
	report, err := client.SalesByPeriod(context.Background(), 30, "week")
	if err != nil {
		t.Fatalf("SalesByPeriod: %v", err)
	}

	if len(report.Periods) != 2 {
		t.Fatalf("Periods = %+v", report.Periods)
	}
	first := report.Periods[0]
	if first.Period != "2026-03-02" || first.OrderCount != 2 || first.Revenue != 15.0 {
		t.Fatalf("first period = %+v", first)
	}
	second := report.Periods[1]
	if second.Period != "2026-03-09" || second.Revenue != 20.0 {
		t.Fatalf("second period = %+v", second)
	}
}

func TestOrdersFollowPaginationCursor(t *testing.T) {
	t.Parallel()

	page := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/orders/search", func(w http.ResponseWriter, r *http.Request) {
		page++
		if page == 1 {
			w.Write([]byte(`{"orders":[{"id":"O1","created_at":"2026-03-02T10:00:00Z","total_money":{"amount":100,"currency":"USD"}}],"cursor":"next"}`))
			return
		}
		w.Write([]byte(`{"orders":[{"id":"O2","created_at":"2026-03-03T10:00:00Z","total_money":{"amount":200,"currency":"USD"}}]}`))
	})

	client := newTestClient(t, mux)
	orders, err := client.orders(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if page != 2 {
		t.Fatalf("served %d pages, want 2", page)
	}
}

func TestPeriodLabel(t *testing.T) {
	t.Parallel()

	wednesday := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		groupBy string
		want    string
	}{
		{"day", "2026-03-04"},
		{"week", "2026-03-02"},
		{"month", "2026-03"},
	}
	for _, tt := range tests {
		if got := periodLabel(wednesday, tt.groupBy); got != tt.want {
			t.Errorf("periodLabel(%q) = %q, want %q", tt.groupBy, got, tt.want)
		}
	}
}
