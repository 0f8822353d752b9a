package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONError(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONError(rr, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"limit": "out_of_range"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	want := `{"error":"validation_failed","details":{"limit":"out_of_range"}}`
	if rr.Body.String() != want {
		t.Fatalf("body = %s, want %s", rr.Body.String(), want)
	}
}

func TestJSONErrorDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONErrorDetail(rr, http.StatusNotFound, "not_found", "Nenhum PI encontrado")
	want := `{"error":"not_found","detail":"Nenhum PI encontrado"}`
	if rr.Body.String() != want {
		t.Fatalf("body = %s, want %s", rr.Body.String(), want)
	}
}

func TestJSON_Unencodable(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusOK, map[string]any{"ch": make(chan int)})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		A string `json:"a"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"x","b":1}`))
	if err := DecodeJSON(r, &dst); err != nil || dst.A != "x" {
		t.Fatalf("decode = %v, %q", err, dst.A)
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"x"} {"a":"y"}`))
	if err := DecodeJSON(r, &dst); err == nil {
		t.Fatal("expected error for trailing data")
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":`))
	if err := DecodeJSON(r, &dst); err == nil {
		t.Fatal("expected error for truncated body")
	}
}
