package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Status summarises POS connectivity for the dashboard header.
type Status struct {
	Connected    bool   `json:"connected"`
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Status verifies the access token by listing locations. Failures are
// reported in the payload rather than as an error so the dashboard can
// render a disconnected state.
func (c *Client) Status(ctx context.Context) Status {
	locations, err := c.Locations(ctx)
	if err != nil {
		return Status{Connected: false, LocationID: c.locationID, Error: err.Error()}
	}
	status := Status{Connected: true, LocationID: c.locationID}
	for _, loc := range locations {
		if loc.ID == c.locationID {
			status.LocationName = loc.Name
			break
		}
	}
	return status
}

// EmployeeHours is one row of the labor report.
type EmployeeHours struct {
	Name      string  `json:"name"`
	Hours     float64 `json:"hours"`
	LaborCost float64 `json:"labor_cost"`
	Shifts    int     `json:"shifts"`
}

// JobHours aggregates labor by wage title.
type JobHours struct {
	Title     string  `json:"title"`
	Hours     float64 `json:"hours"`
	LaborCost float64 `json:"labor_cost"`
}

// LaborReport covers a trailing window of closed timecards.
type LaborReport struct {
	Days       int             `json:"days"`
	TotalHours float64         `json:"total_hours"`
	TotalCost  float64         `json:"total_labor_cost"`
	ByEmployee []EmployeeHours `json:"by_employee"`
	ByJob      []JobHours      `json:"by_job"`
}

// LaborSummary reports worked hours and labor cost for the last days days.
// Unpaid breaks are subtracted from the shift span before costing.
func (c *Client) LaborSummary(ctx context.Context, days int) (*LaborReport, error) {
	key := fmt.Sprintf("labor:%d:%s", days, time.Now().UTC().Format("2006-01-02"))
	raw, err := c.cache.Fetch(key, func() ([]byte, error) {
		report, err := c.buildLaborReport(ctx, days)
		if err != nil {
			return nil, err
		}
		return json.Marshal(report)
	})
	if err != nil {
		return nil, err
	}
	var report LaborReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode cached labor report: %w", err)
	}
	return &report, nil
}

func (c *Client) buildLaborReport(ctx context.Context, days int) (*LaborReport, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	cards, err := c.timecards(ctx, start, end)
	if err != nil {
		return nil, err
	}

	members, err := c.teamMembers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.DisplayName()
	}

	report := &LaborReport{Days: days}
	byEmployee := make(map[string]*EmployeeHours)
	byJob := make(map[string]*JobHours)

	for _, card := range cards {
		hours := cardHours(card)
		if hours <= 0 {
			continue
		}
		cost := hours * card.Wage.HourlyRate.dollars()

		report.TotalHours += hours
		report.TotalCost += cost

		name := names[card.TeamMemberID]
		if name == "" {
			name = card.TeamMemberID
		}
		emp := byEmployee[name]
		if emp == nil {
			emp = &EmployeeHours{Name: name}
			byEmployee[name] = emp
		}
		emp.Hours += hours
		emp.LaborCost += cost
		emp.Shifts++

		title := card.Wage.Title
		if title == "" {
			title = "Unassigned"
		}
		job := byJob[title]
		if job == nil {
			job = &JobHours{Title: title}
			byJob[title] = job
		}
		job.Hours += hours
		job.LaborCost += cost
	}

	for _, emp := range byEmployee {
		emp.Hours = round2(emp.Hours)
		emp.LaborCost = round2(emp.LaborCost)
		report.ByEmployee = append(report.ByEmployee, *emp)
	}
	for _, job := range byJob {
		job.Hours = round2(job.Hours)
		job.LaborCost = round2(job.LaborCost)
		report.ByJob = append(report.ByJob, *job)
	}
	sort.Slice(report.ByEmployee, func(i, j int) bool {
		return report.ByEmployee[i].LaborCost > report.ByEmployee[j].LaborCost
	})
	sort.Slice(report.ByJob, func(i, j int) bool {
		return report.ByJob[i].LaborCost > report.ByJob[j].LaborCost
	})
	report.TotalHours = round2(report.TotalHours)
	report.TotalCost = round2(report.TotalCost)

	return report, nil
}

// cardHours computes worked hours for one timecard, net of unpaid breaks.
func cardHours(card timecard) float64 {
	start, err := time.Parse(time.RFC3339, card.Start)
	if err != nil {
		return 0
	}
	end, err := time.Parse(time.RFC3339, card.End)
	if err != nil {
		return 0
	}
	worked := end.Sub(start)
	for _, br := range card.Breaks {
		if br.Paid {
			continue
		}
		bs, err := time.Parse(time.RFC3339, br.Start)
		if err != nil {
			continue
		}
		be, err := time.Parse(time.RFC3339, br.End)
		if err != nil {
			continue
		}
		worked -= be.Sub(bs)
	}
	if worked < 0 {
		return 0
	}
	return worked.Hours()
}

// TeamMemberRow is one active employee in the team report.
type TeamMemberRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Status string `json:"status"`
}

// JobRow is one configured role. HourlyRate is absent for roles without a
// default wage.
type JobRow struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	HourlyRate *float64 `json:"hourly_rate"`
}

// TeamReport lists the account's active staff and role definitions.
type TeamReport struct {
	TeamMembers []TeamMemberRow `json:"team_members"`
	Jobs        []JobRow        `json:"jobs"`
}

// Team reports active team members and job definitions.
func (c *Client) Team(ctx context.Context) (*TeamReport, error) {
	key := "team:" + time.Now().UTC().Format("2006-01-02")
	raw, err := c.cache.Fetch(key, func() ([]byte, error) {
		report, err := c.buildTeamReport(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(report)
	})
	if err != nil {
		return nil, err
	}
	var report TeamReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode cached team report: %w", err)
	}
	return &report, nil
}

func (c *Client) buildTeamReport(ctx context.Context) (*TeamReport, error) {
	members, err := c.teamMembers(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := c.jobs(ctx)
	if err != nil {
		return nil, err
	}

	report := &TeamReport{
		TeamMembers: make([]TeamMemberRow, 0, len(members)),
		Jobs:        make([]JobRow, 0, len(jobs)),
	}
	for _, m := range members {
		report.TeamMembers = append(report.TeamMembers, TeamMemberRow{
			ID:     m.ID,
			Name:   m.DisplayName(),
			Email:  m.Email,
			Status: m.Status,
		})
	}
	for _, j := range jobs {
		row := JobRow{ID: j.ID, Title: j.Title}
		if row.Title == "" {
			row.Title = "Unknown"
		}
		if j.HourlyRate != nil {
			rate := j.HourlyRate.dollars()
			row.HourlyRate = &rate
		}
		report.Jobs = append(report.Jobs, row)
	}
	return report, nil
}

// ProductRow is one item in the product mix report.
type ProductRow struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Quantity     float64 `json:"quantity"`
	Revenue      float64 `json:"revenue"`
	PctOfRevenue float64 `json:"pct_of_revenue"`
}

// CategoryRow aggregates items by catalog category.
type CategoryRow struct {
	Category     string  `json:"category"`
	Quantity     float64 `json:"quantity"`
	Revenue      float64 `json:"revenue"`
	PctOfRevenue float64 `json:"pct_of_revenue"`
}

// ProductMixReport lists what sold over the window, best sellers first.
type ProductMixReport struct {
	Days         int           `json:"days"`
	TotalRevenue float64       `json:"total_revenue"`
	OrderCount   int           `json:"order_count"`
	AvgTicket    float64       `json:"avg_ticket"`
	Items        []ProductRow  `json:"items"`
	Categories   []CategoryRow `json:"categories"`
}

// ProductMix reports item and category sales for the last days days. Item
// rows are capped at the top 50 by revenue.
func (c *Client) ProductMix(ctx context.Context, days int) (*ProductMixReport, error) {
	key := fmt.Sprintf("mix:%d:%s", days, time.Now().UTC().Format("2006-01-02"))
	raw, err := c.cache.Fetch(key, func() ([]byte, error) {
		report, err := c.buildProductMix(ctx, days)
		if err != nil {
			return nil, err
		}
		return json.Marshal(report)
	})
	if err != nil {
		return nil, err
	}
	var report ProductMixReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode cached product mix: %w", err)
	}
	return &report, nil
}

func (c *Client) buildProductMix(ctx context.Context, days int) (*ProductMixReport, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	orders, err := c.orders(ctx, start, end)
	if err != nil {
		return nil, err
	}

	// Category names are best effort; a catalog failure leaves items
	// grouped under Uncategorized.
	itemCategory := make(map[string]string)
	categoryName := make(map[string]string)
	if objects, err := c.catalogObjects(ctx); err == nil {
		for _, obj := range objects {
			if obj.Type == "CATEGORY" {
				categoryName[obj.ID] = obj.CategoryData.Name
			}
		}
		for _, obj := range objects {
			if obj.Type == "ITEM" {
				itemCategory[obj.ItemData.Name] = categoryName[obj.ItemData.CategoryID]
			}
		}
	}

	report := &ProductMixReport{Days: days, OrderCount: len(orders)}
	items := make(map[string]*ProductRow)

	for _, ord := range orders {
		report.TotalRevenue += ord.Total.dollars()
		for _, line := range ord.LineItems {
			qty, err := strconv.ParseFloat(line.Quantity, 64)
			if err != nil {
				qty = 1
			}
			row := items[line.Name]
			if row == nil {
				category := itemCategory[line.Name]
				if category == "" {
					category = "Uncategorized"
				}
				row = &ProductRow{Name: line.Name, Category: category}
				items[line.Name] = row
			}
			row.Quantity += qty
			row.Revenue += line.GrossSales.dollars()
		}
	}

	categories := make(map[string]*CategoryRow)
	for _, row := range items {
		row.Revenue = round2(row.Revenue)
		if report.TotalRevenue > 0 {
			row.PctOfRevenue = round1(row.Revenue / report.TotalRevenue * 100)
		}
		report.Items = append(report.Items, *row)

		cat := categories[row.Category]
		if cat == nil {
			cat = &CategoryRow{Category: row.Category}
			categories[row.Category] = cat
		}
		cat.Quantity += row.Quantity
		cat.Revenue += row.Revenue
	}
	for _, cat := range categories {
		cat.Revenue = round2(cat.Revenue)
		if report.TotalRevenue > 0 {
			cat.PctOfRevenue = round1(cat.Revenue / report.TotalRevenue * 100)
		}
		report.Categories = append(report.Categories, *cat)
	}

	sort.Slice(report.Items, func(i, j int) bool {
		return report.Items[i].Revenue > report.Items[j].Revenue
	})
	if len(report.Items) > 50 {
		report.Items = report.Items[:50]
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Revenue > report.Categories[j].Revenue
	})

	report.TotalRevenue = round2(report.TotalRevenue)
	if report.OrderCount > 0 {
		report.AvgTicket = round2(report.TotalRevenue / float64(report.OrderCount))
	}

	return report, nil
}

// SalesPeriod is one bucket of the sales time series.
type SalesPeriod struct {
	Period     string  `json:"period"`
	OrderCount int     `json:"order_count"`
	Revenue    float64 `json:"revenue"`
	AvgTicket  float64 `json:"avg_ticket"`
}

// SalesReport is a revenue time series bucketed by day, week, or month.
type SalesReport struct {
	Days    int           `json:"days"`
	GroupBy string        `json:"group_by"`
	Periods []SalesPeriod `json:"periods"`
}

// SalesByPeriod buckets completed orders for the last days days. groupBy
// must be day, week, or month; weeks start on Monday.
func (c *Client) SalesByPeriod(ctx context.Context, days int, groupBy string) (*SalesReport, error) {
	key := fmt.Sprintf("sales:%d:%s:%s", days, groupBy, time.Now().UTC().Format("2006-01-02"))
	raw, err := c.cache.Fetch(key, func() ([]byte, error) {
		report, err := c.buildSalesReport(ctx, days, groupBy)
		if err != nil {
			return nil, err
		}
		return json.Marshal(report)
	})
	if err != nil {
		return nil, err
	}
	var report SalesReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode cached sales report: %w", err)
	}
	return &report, nil
}

func (c *Client) buildSalesReport(ctx context.Context, days int, groupBy string) (*SalesReport, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	orders, err := c.orders(ctx, start, end)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*SalesPeriod)
	for _, ord := range orders {
		created, err := time.Parse(time.RFC3339, ord.CreatedAt)
		if err != nil {
			continue
		}
		label := periodLabel(created.UTC(), groupBy)
		bucket := buckets[label]
		if bucket == nil {
			bucket = &SalesPeriod{Period: label}
			buckets[label] = bucket
		}
		bucket.OrderCount++
		bucket.Revenue += ord.Total.dollars()
	}

	report := &SalesReport{Days: days, GroupBy: groupBy}
	for _, bucket := range buckets {
		bucket.Revenue = round2(bucket.Revenue)
		if bucket.OrderCount > 0 {
			bucket.AvgTicket = round2(bucket.Revenue / float64(bucket.OrderCount))
		}
		report.Periods = append(report.Periods, *bucket)
	}
	sort.Slice(report.Periods, func(i, j int) bool {
		return report.Periods[i].Period < report.Periods[j].Period
	})

	return report, nil
}

func periodLabel(t time.Time, groupBy string) string {
	switch groupBy {
	case "week":
		// Roll back to Monday.
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset).Format("2006-01-02")
	case "month":
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
