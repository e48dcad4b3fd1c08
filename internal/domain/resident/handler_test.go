package resident

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *Service, *echo.Echo) {
	svc, _, _ := newTestService()
	return NewHandler(svc), svc, echo.New()
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

const createBody = `{"first_name":"Juan","middle_name":"Santos","last_name":"Dela Cruz","gender":"male","date_of_birth":"1990-05-12","purok":"Purok 1"}`

func TestHandler_Create(t *testing.T) {
	h, _, e := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", createBody), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var body struct {
		Success bool     `json:"success"`
		Data    Resident `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data.ID == uuid.Nil {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_Create_Duplicate(t *testing.T) {
	h, _, e := newTestHandler()
	if err := h.Create(e.NewContext(jsonRequest(http.MethodPost, "/", createBody), httptest.NewRecorder())); err != nil {
		t.Fatalf("first create: %v", err)
	}

	err := h.Create(e.NewContext(jsonRequest(http.MethodPost, "/", strings.Replace(createBody, "Juan", "JUAN", 1)), httptest.NewRecorder()))
	if code := httpStatus(t, err); code != http.StatusConflict {
		t.Errorf("expected 409, got %d", code)
	}
}

func TestHandler_Create_BadRequest(t *testing.T) {
	h, _, e := newTestHandler()
	err := h.Create(e.NewContext(jsonRequest(http.MethodPost, "/", `{"first_name":"Juan"}`), httptest.NewRecorder()))
	if code := httpStatus(t, err); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_Get(t *testing.T) {
	h, svc, e := newTestHandler()
	r := mustCreate(t, svc, validResident())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	if code := httpStatus(t, h.Get(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandler_List(t *testing.T) {
	h, svc, e := newTestHandler()
	mustCreate(t, svc, validResident())
	pwd := validResident()
	pwd.FirstName, pwd.IsPWD = "Rosa", true
	mustCreate(t, svc, pwd)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/residents?pwd=true", nil), rec)
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body struct {
		Success bool        `json:"success"`
		Data    []*Resident `json:"data"`
		Total   int         `json:"total"`
		HasMore bool        `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Total != 1 || body.Data[0].FirstName != "Rosa" {
		t.Errorf("unexpected list: %s", rec.Body.String())
	}
}

func TestHandler_List_BadFilter(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/residents?senior=perhaps", nil), httptest.NewRecorder())
	if code := httpStatus(t, h.List(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_Deactivate(t *testing.T) {
	h, svc, e := newTestHandler()
	r := mustCreate(t, svc, validResident())

	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())
	if code := httpStatus(t, h.Deactivate(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400 without new_address, got %d", code)
	}

	rec := httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/", `{"new_address":"Cebu City"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())
	if err := h.Deactivate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"status":"inactive"`) {
		t.Errorf("expected inactive status, got %s", rec.Body.String())
	}
}

func TestHandler_UploadPhoto(t *testing.T) {
	h, svc, e := newTestHandler()
	r := mustCreate(t, svc, validResident())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("photo", "me.png")
	fw.Write(pngHeader)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())
	if err := h.UploadPhoto(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "/uploads/residents/"+r.ID.String()+".png") {
		t.Errorf("expected photo path in response, got %s", rec.Body.String())
	}
}

func TestHandler_UploadPhoto_MissingFile(t *testing.T) {
	h, svc, e := newTestHandler()
	r := mustCreate(t, svc, validResident())

	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())
	if code := httpStatus(t, h.UploadPhoto(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_CheckDuplicate(t *testing.T) {
	h, svc, e := newTestHandler()
	mustCreate(t, svc, validResident())

	rec := httptest.NewRecorder()
	body := `{"first_name":"JUAN","middle_name":"santos","last_name":"dela cruz","date_of_birth":"05-12-1990"}`
	if err := h.CheckDuplicate(e.NewContext(jsonRequest(http.MethodPost, "/", body), rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"duplicate":true`) {
		t.Errorf("expected duplicate=true, got %s", rec.Body.String())
	}
}
