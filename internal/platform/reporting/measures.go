package reporting

import (
	"context"
	"fmt"
)

// Measure is a single dashboard count.
type Measure struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	SQL   string `json:"-"`
}

// MeasureResult is a computed Measure.
type MeasureResult struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value int64  `json:"value"`
}

var DashboardMeasures = []Measure{
	{
		ID:    "residents",
		Label: "Total Residents",
		SQL:   `SELECT count(*) FROM residents WHERE deleted_at IS NULL`,
	},
	{
		ID:    "active-residents",
		Label: "Active Residents",
		SQL:   `SELECT count(*) FROM residents WHERE deleted_at IS NULL AND status = 'active'`,
	},
	{
		ID:    "seniors",
		Label: "Senior Citizens",
		SQL: `SELECT count(*) FROM residents
			WHERE deleted_at IS NULL AND status = 'active'
			  AND date_of_birth <= CURRENT_DATE - INTERVAL '60 years'`,
	},
	{
		ID:    "pwd",
		Label: "Persons with Disability",
		SQL:   `SELECT count(*) FROM residents WHERE deleted_at IS NULL AND status = 'active' AND is_pwd`,
	},
	{
		ID:    "4ps",
		Label: "4Ps Beneficiaries",
		SQL:   `SELECT count(*) FROM residents WHERE deleted_at IS NULL AND status = 'active' AND is_4ps`,
	},
	{
		ID:    "voters",
		Label: "Registered Voters",
		SQL:   `SELECT count(*) FROM residents WHERE deleted_at IS NULL AND status = 'active' AND is_registered_voter`,
	},
	{
		ID:    "households",
		Label: "Households",
		SQL:   `SELECT count(*) FROM households WHERE deleted_at IS NULL`,
	},
	{
		ID:    "deaths-this-year",
		Label: "Deaths This Year",
		SQL: `SELECT count(*) FROM deaths
			WHERE deleted_at IS NULL
			  AND date_of_death >= date_trunc('year', CURRENT_DATE)`,
	},
	{
		ID:    "ongoing-pregnancies",
		Label: "Ongoing Pregnancies",
		SQL:   `SELECT count(*) FROM maternal_health_records WHERE deleted_at IS NULL AND delivery_date IS NULL`,
	},
	{
		ID:    "immunizations-this-month",
		Label: "Immunizations This Month",
		SQL: `SELECT count(*) FROM child_immunizations
			WHERE deleted_at IS NULL
			  AND date_given >= date_trunc('month', CURRENT_DATE)`,
	},
}

// FindMeasure looks up a dashboard measure by id.
func FindMeasure(id string) *Measure {
	for i := range DashboardMeasures {
		if DashboardMeasures[i].ID == id {
			return &DashboardMeasures[i]
		}
	}
	return nil
}

// Dashboard computes every measure in order. The first failure aborts.
func Dashboard(ctx context.Context, src Source) ([]MeasureResult, error) {
	results := make([]MeasureResult, 0, len(DashboardMeasures))
	for _, m := range DashboardMeasures {
		n, err := src.Count(ctx, m.SQL)
		if err != nil {
			return nil, fmt.Errorf("measure %s: %w", m.ID, err)
		}
		results = append(results, MeasureResult{ID: m.ID, Label: m.Label, Value: n})
	}
	return results, nil
}
