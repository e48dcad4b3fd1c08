package death

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandler_Create(t *testing.T) {
	svc, residents := newTestService()
	rid := residents.add("Pedro", "Santos", "1940-02-11")
	h := NewHandler(svc)

	body := `{"resident_id":"` + rid.String() + `","date_of_death":"2024-03-02","cause_of_death":"Old age"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Create(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"resident_name":"Pedro Santos"`) {
		t.Errorf("expected resident name in body, got %s", rec.Body.String())
	}
}

func TestHandler_List_BadYear(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/deaths?year=abc", nil), httptest.NewRecorder())

	var he *echo.HTTPError
	if err := h.List(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_List_Year(t *testing.T) {
	svc, residents := newTestService()
	h := NewHandler(svc)
	for _, date := range []string{"2023-05-01", "2024-02-01"} {
		rid := residents.add("A", "B", "1950-01-01")
		if err := svc.Create(context.Background(), &DeathRecord{ResidentID: rid, DateOfDeath: date}); err != nil {
			t.Fatal(err)
		}
	}

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/deaths?year=2024", nil), rec)
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("expected one record for 2024, got %s", rec.Body.String())
	}
}
