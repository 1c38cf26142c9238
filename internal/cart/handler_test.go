package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dastkala/dastkala-api/internal/auth"
	"github.com/dastkala/dastkala-api/internal/product"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type stubCartRepo struct {
	cart  Cart
	items map[string]*Item // by item id
}

func newStubCartRepo(userID string) *stubCartRepo {
	return &stubCartRepo{
		cart:  Cart{ID: uuid.NewString(), UserID: userID},
		items: make(map[string]*Item),
	}
}

func (r *stubCartRepo) GetOrCreate(_ context.Context, userID string) (*Cart, error) {
	c := r.cart
	c.UserID = userID
	return &c, nil
}

func (r *stubCartRepo) Items(_ context.Context, cartID string) ([]ItemView, error) {
	var out []ItemView
	for _, it := range r.items {
		if it.CartID == cartID {
			out = append(out, ItemView{Item: *it})
		}
	}
	return out, nil
}

func (r *stubCartRepo) AddItem(_ context.Context, cartID, productID string, quantity int) (*Item, error) {
	for _, it := range r.items {
		if it.CartID == cartID && it.ProductID == productID {
			it.Quantity += quantity
			cp := *it
			return &cp, nil
		}
	}
	it := &Item{ID: uuid.NewString(), CartID: cartID, ProductID: productID, Quantity: quantity}
	r.items[it.ID] = it
	cp := *it
	return &cp, nil
}

func (r *stubCartRepo) UpdateItemQuantity(_ context.Context, cartID, itemID string, quantity int) error {
	it, ok := r.items[itemID]
	if !ok || it.CartID != cartID {
		return ErrItemNotFound
	}
	it.Quantity = quantity
	return nil
}

func (r *stubCartRepo) RemoveItem(_ context.Context, cartID, itemID string) (bool, error) {
	it, ok := r.items[itemID]
	if !ok || it.CartID != cartID {
		return false, nil
	}
	delete(r.items, itemID)
	return true, nil
}

// stubProducts only serves GetByID; the embedded interface covers the rest.
type stubProducts struct {
	product.Repository
	byID map[string]*product.Product
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.CtxUserID, userID)
		c.Next()
	}
}

func addItemBody(t *testing.T, productID string, qty int) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(AddItemRequest{ProductID: productID, Quantity: qty})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewBuffer(b)
}

func catalogWith(p *product.Product) *stubProducts {
	return &stubProducts{byID: map[string]*product.Product{p.ID: p}}
}

func testProduct(stock int, active bool) *product.Product {
	price, _ := decimal.NewFromString("450000")
	return &product.Product{
		ID: uuid.NewString(), Title: "گلدان", Slug: "goldan",
		PriceToman: price, Stock: stock, Active: active,
	}
}

func TestAddItemHandler_Created(t *testing.T) {
	user := uuid.NewString()
	p := testProduct(5, true)
	repo := newStubCartRepo(user)

	r := gin.New()
	r.POST("/cart/items", asUser(user), AddItemHandler(repo, catalogWith(p)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", addItemBody(t, p.ID, 2))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var it Item
	if err := json.Unmarshal(w.Body.Bytes(), &it); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if it.ProductID != p.ID || it.Quantity != 2 {
		t.Fatalf("item=%+v", it)
	}
}

// Adding the same product twice accumulates quantity on one line.
func TestAddItemHandler_RepeatAddAccumulates(t *testing.T) {
	user := uuid.NewString()
	p := testProduct(10, true)
	repo := newStubCartRepo(user)

	r := gin.New()
	r.POST("/cart/items", asUser(user), AddItemHandler(repo, catalogWith(p)))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/cart/items", addItemBody(t, p.ID, 3))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	}

	if len(repo.items) != 1 {
		t.Fatalf("lines=%d, expected a single accumulated line", len(repo.items))
	}
	for _, it := range repo.items {
		if it.Quantity != 6 {
			t.Fatalf("quantity=%d, expected 6", it.Quantity)
		}
	}
}

func TestAddItemHandler_Rejections(t *testing.T) {
	user := uuid.NewString()

	cases := []struct {
		name    string
		product *product.Product
		qty     int
		want    int
	}{
		{"insufficient stock", testProduct(1, true), 2, http.StatusConflict},
		{"inactive product", testProduct(5, false), 1, http.StatusNotFound},
		{"zero quantity", testProduct(5, true), 0, http.StatusBadRequest},
		{"negative quantity", testProduct(5, true), -3, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubCartRepo(user)
			r := gin.New()
			r.POST("/cart/items", asUser(user), AddItemHandler(repo, catalogWith(tc.product)))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/cart/items", addItemBody(t, tc.product.ID, tc.qty))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("status=%d body=%s, expected %d", w.Code, w.Body.String(), tc.want)
			}
			if len(repo.items) != 0 {
				t.Fatalf("rejected add must not create a cart line")
			}
		})
	}
}

func TestAddItemHandler_UnknownProduct(t *testing.T) {
	user := uuid.NewString()
	repo := newStubCartRepo(user)

	r := gin.New()
	r.POST("/cart/items", asUser(user), AddItemHandler(repo, &stubProducts{byID: map[string]*product.Product{}}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", addItemBody(t, uuid.NewString(), 1))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, expected 404", w.Code)
	}
}

func TestUpdateItemHandler(t *testing.T) {
	user := uuid.NewString()
	repo := newStubCartRepo(user)
	it, _ := repo.AddItem(context.Background(), repo.cart.ID, uuid.NewString(), 1)

	r := gin.New()
	r.PUT("/cart/items/:id", asUser(user), UpdateItemHandler(repo))

	body, _ := json.Marshal(UpdateItemRequest{Quantity: 4})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/cart/items/"+it.ID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if repo.items[it.ID].Quantity != 4 {
		t.Fatalf("quantity=%d, expected 4", repo.items[it.ID].Quantity)
	}

	// unknown item is 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/cart/items/"+uuid.NewString(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, expected 404", w.Code)
	}
}

func TestRemoveItemHandler(t *testing.T) {
	user := uuid.NewString()
	repo := newStubCartRepo(user)
	it, _ := repo.AddItem(context.Background(), repo.cart.ID, uuid.NewString(), 1)

	r := gin.New()
	r.DELETE("/cart/items/:id", asUser(user), RemoveItemHandler(repo))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart/items/"+it.ID, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if len(repo.items) != 0 {
		t.Fatalf("item not removed")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart/items/"+it.ID, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, expected 404 for missing item", w.Code)
	}
}
