package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmesh/internal/models"
)

func TestCreateUser(t *testing.T) {
	resp, raw := doJSON(t, http.MethodPost, "/api/users", fiber.Map{
		"name":   "Handler Alice",
		"skills": []string{"React", "Node.js"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var user models.User
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, "Handler Alice", user.Name)
	assert.Zero(t, user.Score)
	assert.NotZero(t, user.ID)
	assert.Empty(t, user.Connections)
}

func TestCreateUser_EmptyName(t *testing.T) {
	resp, raw := doJSON(t, http.MethodPost, "/api/users", fiber.Map{"name": "   "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, models.CodeValidation, errResp.Code)
}

func TestGetUser(t *testing.T) {
	created := createTestUser(t, "Handler Bob", 15, []string{"Express", "MongoDB"})

	resp, raw := doJSON(t, http.MethodGet, "/api/users/"+itoa(created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var user models.User
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "Handler Bob", user.Name)
	assert.InDelta(t, 15.0, user.Score, 1e-9)
}

func TestGetUser_NotFound(t *testing.T) {
	resp, raw := doJSON(t, http.MethodGet, "/api/users/999999", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, models.CodeNotFound, errResp.Code)
}

func TestGetUser_InvalidID(t *testing.T) {
	resp, _ := doJSON(t, http.MethodGet, "/api/users/abc", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateUser_ProfileOnly(t *testing.T) {
	created := createTestUser(t, "Handler Carol", 12, []string{"HTML", "CSS"})

	resp, raw := doJSON(t, http.MethodPut, "/api/users/"+itoa(created.ID), fiber.Map{
		"name":   "Caroline",
		"skills": []string{"HTML", "CSS", "Sass"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var user models.User
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, "Caroline", user.Name)
	assert.Equal(t, []string{"HTML", "CSS", "Sass"}, user.Skills)
	// Score is not client-writable.
	assert.InDelta(t, 12.0, user.Score, 1e-9)
}

func TestBulkCreateUsers(t *testing.T) {
	resp, raw := doJSON(t, http.MethodPost, "/api/users/bulk", fiber.Map{
		"users": []fiber.Map{
			{"name": "Bulk One", "score": 8, "skills": []string{"Python"}},
			{"name": "Bulk Two", "score": 18, "skills": []string{"JavaScript"}},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var parsed struct {
		Users []models.User `json:"users"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, 2, parsed.Count)
	require.Len(t, parsed.Users, 2)
	assert.InDelta(t, 8.0, parsed.Users[0].Score, 1e-9)
}

func TestBulkCreateUsers_EmptyBatch(t *testing.T) {
	resp, _ := doJSON(t, http.MethodPost, "/api/users/bulk", fiber.Map{"users": []fiber.Map{}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetAllUsers(t *testing.T) {
	createTestUser(t, "Handler Dave", 18, []string{"JavaScript", "Node.js"})

	resp, raw := doJSON(t, http.MethodGet, "/api/users?limit=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var parsed struct {
		Users []models.User `json:"users"`
		Limit int           `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, 5, parsed.Limit)
	assert.NotEmpty(t, parsed.Users)
	assert.LessOrEqual(t, len(parsed.Users), 5)
}
