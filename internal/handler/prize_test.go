package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/iliyamo/shop-lottery/internal/model"
)

var prizeIDPattern = regexp.MustCompile(`^carol-[0-9A-F]{6}$`)

func TestPrizeEndpoints(t *testing.T) {
	f := newShopFixture()
	f.ensureAccount(t, "uid-carol", "carol@example.com")

	t.Run("uninitialized account", func(t *testing.T) {
		c, rec := f.request(http.MethodPost, "/v1/prizes", `{"name":"Mug","quantity":3}`, "uid-ghost")
		if err := f.prizeH.Create(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("name required", func(t *testing.T) {
		c, rec := f.request(http.MethodPost, "/v1/prizes", `{"quantity":3}`, "uid-carol")
		if err := f.prizeH.Create(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("quantity out of range", func(t *testing.T) {
		for _, q := range []string{"-1", "1000"} {
			c, rec := f.request(http.MethodPost, "/v1/prizes", `{"name":"Mug","quantity":`+q+`}`, "uid-carol")
			if err := f.prizeH.Create(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("quantity %s: status = %d, want 400", q, rec.Code)
			}
		}
	})

	var created model.PrizeEntry
	t.Run("creates both halves", func(t *testing.T) {
		c, rec := f.request(http.MethodPost, "/v1/prizes", `{"name":"Tea Set","description":"hand painted","quantity":7,"image":"https://img.example/tea.png"}`, "uid-carol")
		if err := f.prizeH.Create(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatal(err)
		}
		if !prizeIDPattern.MatchString(created.ID) {
			t.Fatalf("prize id %q does not match shop pattern", created.ID)
		}
		if created.Info.Name != "Tea Set" || created.Meta.Quantity != 7 {
			t.Fatalf("created entry wrong: %+v", created)
		}
		if created.Meta.CreatorUID != "uid-carol" {
			t.Fatalf("creator uid = %q", created.Meta.CreatorUID)
		}
	})

	t.Run("lists the catalog", func(t *testing.T) {
		c, rec := f.request(http.MethodGet, "/v1/prizes", "", "uid-carol")
		if err := f.prizeH.List(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var listed struct {
			Prizes []model.PrizeEntry `json:"prizes"`
			Count  int                `json:"count"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
			t.Fatal(err)
		}
		if listed.Count != 1 || listed.Prizes[0].ID != created.ID {
			t.Fatalf("list = %+v", listed)
		}
	})

	deleteReq := func(uid, id string) *http.Response {
		c, rec := f.request(http.MethodDelete, "/v1/prizes/"+id, "", uid)
		c.SetParamNames("id")
		c.SetParamValues(id)
		if err := f.prizeH.Delete(c); err != nil {
			t.Fatal(err)
		}
		return rec.Result()
	}

	t.Run("delete by another owner is forbidden", func(t *testing.T) {
		if res := deleteReq("uid-mallory", created.ID); res.StatusCode != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", res.StatusCode)
		}
	})

	t.Run("delete unknown prize", func(t *testing.T) {
		if res := deleteReq("uid-carol", "carol-ZZZZZZ"); res.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", res.StatusCode)
		}
	})

	t.Run("delete removes both halves and refreshes the listing", func(t *testing.T) {
		if res := deleteReq("uid-carol", created.ID); res.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", res.StatusCode)
		}
		c, rec := f.request(http.MethodGet, "/v1/prizes", "", "uid-carol")
		if err := f.prizeH.List(c); err != nil {
			t.Fatal(err)
		}
		var listed struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
			t.Fatal(err)
		}
		if listed.Count != 0 {
			t.Fatalf("count after delete = %d, want 0", listed.Count)
		}
	})
}
