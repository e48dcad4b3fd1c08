package db

import (
	"strings"
	"testing"
)

func TestSelectQuery_Basic(t *testing.T) {
	q := NewSelectQuery("residents", "id, first_name").
		Archived("", false).
		Where("purok = ?", "Purok 1").
		OrderBy("last_name")

	countSQL, countArgs := q.CountSQL()
	want := "SELECT COUNT(*) FROM residents WHERE deleted_at IS NULL AND purok = $1"
	if countSQL != want {
		t.Errorf("count SQL:\n got %s\nwant %s", countSQL, want)
	}
	if len(countArgs) != 1 || countArgs[0] != "Purok 1" {
		t.Errorf("unexpected count args: %v", countArgs)
	}

	pageSQL, pageArgs := q.PageSQL(20, 40)
	if !strings.HasSuffix(pageSQL, "ORDER BY last_name LIMIT $2 OFFSET $3") {
		t.Errorf("unexpected page SQL: %s", pageSQL)
	}
	if len(pageArgs) != 3 || pageArgs[1] != 20 || pageArgs[2] != 40 {
		t.Errorf("unexpected page args: %v", pageArgs)
	}
	if len(countArgs) != 1 {
		t.Error("PageSQL must not mutate the count args")
	}
}

func TestSelectQuery_Search(t *testing.T) {
	q := NewSelectQuery("residents r", "r.id").
		Archived("r", true).
		Search("%cruz%", "r.first_name", "r.last_name").
		Where("r.gender = ?", "female")

	sql, args := q.CountSQL()
	want := "SELECT COUNT(*) FROM residents r WHERE r.deleted_at IS NOT NULL AND " +
		"(r.first_name ILIKE $1 OR r.last_name ILIKE $2) AND r.gender = $3"
	if sql != want {
		t.Errorf("count SQL:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 3 || args[2] != "female" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestSelectQuery_EmptySearchAndNoWhere(t *testing.T) {
	q := NewSelectQuery("households", "id").Search("", "head_name")
	sql, args := q.AllSQL()
	if sql != "SELECT id FROM households" || len(args) != 0 {
		t.Errorf("unexpected query: %s %v", sql, args)
	}
}
