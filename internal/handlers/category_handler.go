package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatherly/gatherly/internal/helpers"
)

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=2"`
	Description string `json:"description"`
}

func CreateCategory(c *gin.Context) {
	svc, ok := categoryService(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	category, storeErr := svc.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if storeErr != nil {
		helpers.RespondWithError(c, helpers.StatusForStoreError(storeErr), "Failed to create category.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Category created successfully.",
		"category": category,
	})
}

func ListCategories(c *gin.Context) {
	svc, ok := categoryService(c)
	if !ok {
		return
	}

	categories, storeErr := svc.GetCategories(c.Request.Context(), helpers.ParseBool(c.Query("include_counts")))
	response := gin.H{"categories": categories}
	if storeErr != nil {
		response["error"] = storeErr
	}
	c.JSON(http.StatusOK, response)
}

func TopCategories(c *gin.Context) {
	svc, ok := categoryService(c)
	if !ok {
		return
	}

	limit := 5
	if n, err := helpers.StringToInt(c.DefaultQuery("limit", "5")); err == nil {
		limit = n
	}

	categories, storeErr := svc.GetTopCategories(c.Request.Context(), limit)
	if storeErr != nil {
		helpers.RespondWithError(c, helpers.StatusForStoreError(storeErr), storeErr.Message)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
