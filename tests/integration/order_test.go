//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/ovenside/pizza-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderResponse struct {
	ID          int64  `json:"id"`
	Reference   string `json:"reference"`
	FranchiseID int64  `json:"franchiseId"`
	StoreID     int64  `json:"storeId"`
	UserID      int64  `json:"userId"`
	Items       []struct {
		MenuID      int64   `json:"menuId"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
	} `json:"items"`
}

type orderPageResponse struct {
	Orders []orderResponse `json:"orders"`
	Page   int             `json:"page"`
	Total  int             `json:"total"`
}

func TestMenu_PubliclyReadable(t *testing.T) {
	admin := adminClient(t)
	item := addMenuItem(t, admin, testutil.RandomName("margherita"), 0.0038)

	// No token at all
	client := newTestClient(t)
	resp, err := client.GET("/api/v1/menu")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []menuItemResponse `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	var found bool
	for _, m := range result.Data {
		if m.ID == item.ID {
			found = true
			assert.InDelta(t, 0.0038, m.Price, 1e-9)
		}
	}
	assert.True(t, found)
}

func TestMenu_AddRequiresAdmin(t *testing.T) {
	diner, _ := registerUser(t, newTestClient(t), "menudiner")
	client := newTestClientWithoutValidation().WithToken(diner.Token)

	resp, err := client.PUT("/api/v1/menu", map[string]interface{}{
		"title": testutil.RandomName("forbidden-pizza"),
		"price": 0.005,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestOrder_Create_PricesFromMenuNotClient(t *testing.T) {
	admin := adminClient(t)
	franchise := createFranchise(t, admin)
	store := createStore(t, admin, franchise.ID)
	item := addMenuItem(t, admin, testutil.RandomName("veggie"), 0.0038)

	diner, _ := registerUser(t, newTestClient(t), "hungry")
	client := newTestClient(t).WithToken(diner.Token)

	// The client-side price is not part of the contract and gets ignored
	resp, err := client.POST("/api/v1/orders", map[string]interface{}{
		"franchiseId": franchise.ID,
		"storeId":     store.ID,
		"items": []map[string]interface{}{
			{"menuId": item.ID, "price": 0.0001},
		},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data orderResponse `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	assert.Equal(t, diner.User.ID, result.Data.UserID)
	require.Len(t, result.Data.Items, 1)
	assert.InDelta(t, 0.0038, result.Data.Items[0].Price, 1e-9)

	_, err = uuid.Parse(result.Data.Reference)
	assert.NoError(t, err, "order reference must be a UUID")
}

func TestOrder_Create_StoreMustBelongToFranchise(t *testing.T) {
	admin := adminClient(t)
	first := createFranchise(t, admin)
	second := createFranchise(t, admin)
	foreignStore := createStore(t, admin, second.ID)
	item := addMenuItem(t, admin, testutil.RandomName("mismatch"), 0.004)

	diner, _ := registerUser(t, newTestClient(t), "confused")
	client := newTestClientWithoutValidation().WithToken(diner.Token)

	resp, err := client.POST("/api/v1/orders", map[string]interface{}{
		"franchiseId": first.ID,
		"storeId":     foreignStore.ID,
		"items":       []map[string]interface{}{{"menuId": item.ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestOrder_Create_UnknownMenuItem(t *testing.T) {
	admin := adminClient(t)
	franchise := createFranchise(t, admin)
	store := createStore(t, admin, franchise.ID)

	diner, _ := registerUser(t, newTestClient(t), "optimist")
	client := newTestClientWithoutValidation().WithToken(diner.Token)

	resp, err := client.POST("/api/v1/orders", map[string]interface{}{
		"franchiseId": franchise.ID,
		"storeId":     store.ID,
		"items":       []map[string]interface{}{{"menuId": 999999}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestOrder_Create_EmptyItemsRejected(t *testing.T) {
	admin := adminClient(t)
	franchise := createFranchise(t, admin)
	store := createStore(t, admin, franchise.ID)

	diner, _ := registerUser(t, newTestClient(t), "ascetic")
	client := newTestClientWithoutValidation().WithToken(diner.Token)

	resp, err := client.POST("/api/v1/orders", map[string]interface{}{
		"franchiseId": franchise.ID,
		"storeId":     store.ID,
		"items":       []map[string]interface{}{},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestOrder_History_ScopedToUserAndPaged(t *testing.T) {
	admin := adminClient(t)
	franchise := createFranchise(t, admin)
	store := createStore(t, admin, franchise.ID)
	item := addMenuItem(t, admin, testutil.RandomName("paged"), 0.004)

	first, _ := registerUser(t, newTestClient(t), "regular")
	second, _ := registerUser(t, newTestClient(t), "bystander")

	firstClient := newTestClient(t).WithToken(first.Token)
	for i := 0; i < 12; i++ {
		resp, err := firstClient.POST("/api/v1/orders", map[string]interface{}{
			"franchiseId": franchise.ID,
			"storeId":     store.ID,
			"items":       []map[string]interface{}{{"menuId": item.ID}},
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	// First page of 10
	resp, err := firstClient.GET("/api/v1/orders?page=1&pageSize=10")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Data orderPageResponse `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &page)
	assert.Len(t, page.Data.Orders, 10)
	assert.Equal(t, 12, page.Data.Total)
	assert.Equal(t, 1, page.Data.Page)

	// Second page carries the remainder
	resp, err = firstClient.GET("/api/v1/orders?page=2&pageSize=10")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &page)
	assert.Len(t, page.Data.Orders, 2)

	// The other user sees none of it
	secondClient := newTestClient(t).WithToken(second.Token)
	resp, err = secondClient.GET("/api/v1/orders")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &page)
	assert.Empty(t, page.Data.Orders)
	assert.Equal(t, 0, page.Data.Total)
}

func TestOrder_HistorySurvivesFranchiseDelete(t *testing.T) {
	admin := adminClient(t)
	franchise := createFranchise(t, admin)
	store := createStore(t, admin, franchise.ID)
	item := addMenuItem(t, admin, testutil.RandomName("keepsake"), 0.004)

	diner, _ := registerUser(t, newTestClient(t), "nostalgic")
	client := newTestClient(t).WithToken(diner.Token)

	resp, err := client.POST("/api/v1/orders", map[string]interface{}{
		"franchiseId": franchise.ID,
		"storeId":     store.ID,
		"items":       []map[string]interface{}{{"menuId": item.ID}},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = admin.DELETE(franchisePath(franchise.ID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The order history still lists the purchase
	resp, err = client.GET("/api/v1/orders")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Data orderPageResponse `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &page)
	require.Len(t, page.Data.Orders, 1)
	assert.Equal(t, franchise.ID, page.Data.Orders[0].FranchiseID)
}
