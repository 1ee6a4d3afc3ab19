//go:build integration

package integration

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/ovenside/pizza-service/internal/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// userResponse mirrors the user shape in API responses.
type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []struct {
		Role     string `json:"role"`
		ObjectID int64  `json:"objectId"`
	} `json:"roles"`
}

type authResult struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// registerUser registers a fresh diner and returns the auth result plus the
// password used.
func registerUser(t *testing.T, client *testutil.Client, namePrefix string) (authResult, string) {
	t.Helper()

	password := "pw-" + testutil.RandomName("secret")
	resp, err := client.POST("/api/v1/auth/register", map[string]string{
		"name":     testutil.RandomName(namePrefix),
		"email":    testutil.RandomEmail(namePrefix),
		"password": password,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data authResult `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.NotEmpty(t, result.Data.Token)

	return result.Data, password
}

// seedAdmin inserts an admin user directly into the database and returns
// its credentials. Admins cannot be created through the public API.
func seedAdmin(t *testing.T) (email, password string) {
	t.Helper()

	email = testutil.RandomEmail("admin")
	password = "admin-" + testutil.RandomName("secret")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	ctx := context.Background()
	var userID int64
	err = testDB.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
		"Test Admin", email, string(hash),
	).Scan(&userID)
	require.NoError(t, err)

	_, err = testDB.Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, 'admin')`,
		userID,
	)
	require.NoError(t, err)

	return email, password
}

// adminClient returns a validated client logged in as a fresh admin.
func adminClient(t *testing.T) *testutil.Client {
	t.Helper()

	email, password := seedAdmin(t)
	client := newTestClient(t)
	client.LoginAs(t, email, password)
	return client
}

type franchiseResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Admins []struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"admins"`
	Stores []storeResponse `json:"stores"`
}

type storeResponse struct {
	ID          int64  `json:"id"`
	FranchiseID int64  `json:"franchiseId"`
	Name        string `json:"name"`
}

// createFranchise creates a franchise with the given admin emails.
func createFranchise(t *testing.T, admin *testutil.Client, adminEmails ...string) franchiseResponse {
	t.Helper()

	admins := make([]map[string]string, 0, len(adminEmails))
	for _, email := range adminEmails {
		admins = append(admins, map[string]string{"email": email})
	}

	resp, err := admin.POST("/api/v1/franchises", map[string]interface{}{
		"name":   testutil.RandomName("franchise"),
		"admins": admins,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data franchiseResponse `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

// createStore creates a store under the franchise.
func createStore(t *testing.T, client *testutil.Client, franchiseID int64) storeResponse {
	t.Helper()

	resp, err := client.POST(franchisePath(franchiseID)+"/stores", map[string]string{
		"name": testutil.RandomName("store"),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data storeResponse `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

type menuItemResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// addMenuItem adds a menu item as admin.
func addMenuItem(t *testing.T, admin *testutil.Client, title string, price float64) menuItemResponse {
	t.Helper()

	resp, err := admin.PUT("/api/v1/menu", map[string]interface{}{
		"title":       title,
		"description": "test item",
		"image":       "pizza.png",
		"price":       price,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data menuItemResponse `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

func franchisePath(id int64) string {
	return "/api/v1/franchises/" + strconv.FormatInt(id, 10)
}
