package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"donorops_backend/platform/logger"
)

func TestSearchPaginatesUntilHitCount(t *testing.T) {
	var requests []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search2" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req struct {
			Keyword   string `json:"keyword"`
			StartRecN int    `json:"startRecordNum"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Keyword != "digital equity" {
			t.Errorf("keyword: got %q", req.Keyword)
		}
		requests = append(requests, req.StartRecN)

		hits := `[{"id":1001,"number":"DE-FOA-0001","title":"A","agencyName":"DOE","closeDate":"09/30/2030"},
			{"id":1002,"number":"DE-FOA-0002","title":"B","agencyName":"DOE","closeDate":"10/31/2030"}]`
		if req.StartRecN >= 2 {
			hits = `[{"id":1003,"number":"DE-FOA-0003","title":"C","agencyName":"DOE","closeDate":"11/30/2030"}]`
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"data":{"hitCount":3,"oppHits":` + hits + `}}`)); err != nil {
			t.Fatalf("write response: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 2, 100, logger.New("development"))
	opps, err := c.Search(context.Background(), "digital equity")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if len(opps) != 3 {
		t.Fatalf("got %d opportunities, want 3", len(opps))
	}
	if opps[0].ID != "1001" || opps[0].Number != "DE-FOA-0001" {
		t.Errorf("first hit decoded wrong: %+v", opps[0])
	}
	if opps[2].ID != "1003" {
		t.Errorf("last hit decoded wrong: %+v", opps[2])
	}
	if len(requests) != 2 || requests[0] != 0 || requests[1] != 2 {
		t.Errorf("pagination offsets: got %v, want [0 2]", requests)
	}
}

func TestSearchSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, 25, 100, logger.New("development"))
	if _, err := c.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected an error for a 502 response")
	}
}
