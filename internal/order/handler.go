package order

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dastkala/dastkala-api/internal/auth"
)

// CheckoutHandler places an order from the buyer's current cart.
func CheckoutHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		o, err := svc.Checkout(c.Request.Context(), auth.UserID(c), req.ShippingInfo)
		if err != nil {
			var stockErr *InsufficientStockError
			var unavailErr *ProductUnavailableError
			switch {
			case errors.Is(err, ErrEmptyCart):
				c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
			case errors.As(err, &stockErr), errors.As(err, &unavailErr):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.Is(err, ErrTransaction):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

func GetHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, items, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if o.UserID != auth.UserID(c) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if items == nil {
			items = []Item{}
		}
		c.JSON(http.StatusOK, gin.H{"order": o, "items": items})
	}
}

func ListHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		offset, _ := strconv.Atoi(c.Query("offset"))
		out, err := repo.ListByUser(c.Request.Context(), auth.UserID(c), limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list error"})
			return
		}
		if out == nil {
			out = []Order{}
		}
		c.JSON(http.StatusOK, gin.H{"items": out})
	}
}

func SellerListHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		offset, _ := strconv.Atoi(c.Query("offset"))
		out, err := repo.ListBySeller(c.Request.Context(), auth.UserID(c), limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list error"})
			return
		}
		if out == nil {
			out = []Order{}
		}
		c.JSON(http.StatusOK, gin.H{"items": out})
	}
}

func UpdateStatusHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		status := strings.ToUpper(req.Status)
		if _, ok := validTransitions[status]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), auth.UserID(c), status)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			case errors.Is(err, ErrBadTransition):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "update error"})
			}
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
