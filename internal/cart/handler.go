package cart

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dastkala/dastkala-api/internal/auth"
	"github.com/dastkala/dastkala-api/internal/product"
)

func GetHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ct, err := repo.GetOrCreate(c.Request.Context(), auth.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart error"})
			return
		}
		items, err := repo.Items(c.Request.Context(), ct.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart error"})
			return
		}
		if items == nil {
			items = []ItemView{}
		}
		c.JSON(http.StatusOK, gin.H{"cart": ct, "items": items})
	}
}

func AddItemHandler(repo Repository, products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
			return
		}

		p, err := products.GetByID(c.Request.Context(), req.ProductID)
		if err != nil || !p.Active {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if p.Stock < req.Quantity {
			c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock"})
			return
		}

		ct, err := repo.GetOrCreate(c.Request.Context(), auth.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart error"})
			return
		}
		it, err := repo.AddItem(c.Request.Context(), ct.ID, req.ProductID, req.Quantity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart error"})
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

func UpdateItemHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
			return
		}
		ct, err := repo.GetOrCreate(c.Request.Context(), auth.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart error"})
			return
		}
		if err := repo.UpdateItemQuantity(c.Request.Context(), ct.ID, c.Param("id"), req.Quantity); err != nil {
			if err == ErrItemNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart error"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func RemoveItemHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ct, err := repo.GetOrCreate(c.Request.Context(), auth.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart error"})
			return
		}
		ok, err := repo.RemoveItem(c.Request.Context(), ct.ID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart error"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
