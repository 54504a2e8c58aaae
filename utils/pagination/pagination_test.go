package pagination

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationParams(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		params := ParsePaginationParams(c)
		if err := ValidatePaginationParams(params); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		return c.JSON(NewPaginatedResponse(c, []int{1, 2}, 25, params))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items?page=2&page_size=10&search=silva", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body PaginatedResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, 2, body.Pagination.CurrentPage)
	assert.Equal(t, 3, body.Pagination.TotalPages)
	assert.EqualValues(t, 25, body.Pagination.TotalItems)
	require.NotNil(t, body.Pagination.NextPage)
	require.NotNil(t, body.Pagination.PrevPage)
	assert.Contains(t, *body.Pagination.NextPage, "page=3")
	assert.Contains(t, *body.Pagination.NextPage, "search=silva")
	assert.Contains(t, *body.Pagination.PrevPage, "page=1")

	for _, q := range []string{"page=0", "page_size=0", "page_size=101"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/items?"+q, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, PaginationParams{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 20, PaginationParams{Page: 3, PageSize: 10}.Offset())
}
