package billz

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

const testShop = "shop-1"

func loginOK(w http.ResponseWriter) {
	json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{
			"access_token": "test-token",
			"expires_in":   3600,
		},
	})
}

func makeProducts(n int, prefix string) []Product {
	products := make([]Product, n)
	for i := range products {
		products[i] = Product{
			ID:   fmt.Sprintf("%s-%d", prefix, i),
			Name: fmt.Sprintf("Product %d", i),
			ShopPrices: []ShopPrice{
				{ShopID: testShop, RetailPrice: 100},
			},
			ShopMeasurementValues: []ShopMeasurement{
				{ShopID: testShop, ActiveMeasurementValue: 5},
			},
		}
	}
	return products
}

func TestFetchAllPaginates(t *testing.T) {
	pages := map[int]int{1: 100, 2: 100, 3: 40}
	var calls []int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/auth/login" {
			loginOK(w)
			return
		}

		page := 0
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		calls = append(calls, page)
		json.NewEncoder(w).Encode(ProductsResponse{
			Products: makeProducts(pages[page], fmt.Sprintf("page%d", page)),
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", 100, nil, zerolog.Nop())

	products, err := client.FetchAll(testShop)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	if len(calls) != 3 {
		t.Fatalf("expected 3 page requests, got %d (%v)", len(calls), calls)
	}
	if len(products) != 240 {
		t.Fatalf("expected 240 products, got %d", len(products))
	}
}

func TestFetchAllFiltersByShop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/auth/login" {
			loginOK(w)
			return
		}

		json.NewEncoder(w).Encode(ProductsResponse{
			Products: []Product{
				{
					ID:         "priced",
					ShopPrices: []ShopPrice{{ShopID: testShop, RetailPrice: 150}},
					ShopMeasurementValues: []ShopMeasurement{
						{ShopID: "other-shop", ActiveMeasurementValue: 99},
						{ShopID: testShop, ActiveMeasurementValue: 7},
					},
				},
				{
					ID:         "other-shop-only",
					ShopPrices: []ShopPrice{{ShopID: "other-shop", RetailPrice: 90}},
				},
				{
					ID:         "no-measurement",
					ShopPrices: []ShopPrice{{ShopID: testShop, RetailPrice: 30}},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", 100, nil, zerolog.Nop())

	products, err := client.FetchAll(testShop)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	if len(products) != 2 {
		t.Fatalf("expected 2 products after shop filter, got %d", len(products))
	}
	if products[0].ID != "priced" || products[0].Price != 150 || products[0].Qty != 7 {
		t.Errorf("unexpected first product: %+v", products[0])
	}
	if products[1].ID != "no-measurement" || products[1].Qty != 0 {
		t.Errorf("missing measurement should mean qty 0, got %+v", products[1])
	}
}

func TestFetchAllRetriesOnce(t *testing.T) {
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/auth/login" {
			loginOK(w)
			return
		}

		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ProductsResponse{Products: makeProducts(1, "p")})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", 100, nil, zerolog.Nop())

	products, err := client.FetchAll(testShop)
	if err != nil {
		t.Fatalf("FetchAll should survive one failed request: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if len(products) != 1 {
		t.Errorf("expected 1 product, got %d", len(products))
	}
}

func TestFetchAllFailsAfterSecondError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/auth/login" {
			loginOK(w)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", 100, nil, zerolog.Nop())

	if _, err := client.FetchAll(testShop); err == nil {
		t.Fatal("expected error when every request fails")
	}
}

func TestTokenCachedAcrossRequests(t *testing.T) {
	logins := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/auth/login" {
			logins++
			loginOK(w)
			return
		}

		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		page := 0
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		n := 100
		if page > 1 {
			n = 0
		}
		json.NewEncoder(w).Encode(ProductsResponse{Products: makeProducts(n, "p")})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", 100, nil, zerolog.Nop())

	if _, err := client.FetchAll(testShop); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if logins != 1 {
		t.Errorf("expected a single login, got %d", logins)
	}
}
