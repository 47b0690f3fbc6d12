package commands

import (
	"context"
	"sort"
)

// TableLister reports the backend's database tables.
type TableLister interface {
	ListTables(ctx context.Context) ([]string, error)
}

// TablesResult lists the tables the backend reports, plus any expected
// tables that are missing.
type TablesResult struct {
	Tables  []string
	Missing []string
}

// Tables lists backend tables and checks them against expected.
func Tables(ctx context.Context, client TableLister, expected ...string) (*TablesResult, error) {
	tables, err := client.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(tables)

	present := make(map[string]bool, len(tables))
	for _, t := range tables {
		present[t] = true
	}
	res := &TablesResult{Tables: tables}
	for _, t := range expected {
		if !present[t] {
			res.Missing = append(res.Missing, t)
		}
	}
	return res, nil
}
