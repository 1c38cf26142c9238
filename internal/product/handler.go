package product

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dastkala/dastkala-api/internal/auth"
)

// Enricher receives a detached notification after a product's text is set or
// changed. Implementations must never block the caller.
type Enricher interface {
	ProductChanged(productID, title, description, categorySlug string)
}

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
)

var suspiciousContent = regexp.MustCompile(`(?i)<script|https?://|viagra|casino|bet`)

func validateListing(title, description string) (string, bool) {
	if title == "" {
		return "title is required", false
	}
	if len(title) > maxTitleLen || len(description) > maxDescriptionLen {
		return "input too long", false
	}
	if suspiciousContent.MatchString(description) {
		return "content not allowed", false
	}
	return "", true
}

// ListHandler serves the public catalog.
func ListHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		offset, _ := strconv.Atoi(c.Query("offset"))
		q := Query{
			Q:        c.Query("search"),
			Category: c.Query("category"),
			Sort:     c.DefaultQuery("sort", "newest"),
			Locale:   c.Query("locale"),
			Limit:    limit,
			Offset:   offset,
		}
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list error"})
			return
		}
		if items == nil {
			items = []Product{}
		}
		c.JSON(http.StatusOK, ListResponse{
			Q: q.Q, Category: q.Category, Limit: q.Limit, Offset: q.Offset, Items: items,
		})
	}
}

func GetBySlugHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetBySlug(c.Request.Context(), c.Param("slug"), c.Query("locale"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func SellerListHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		items, err := repo.ListBySeller(c.Request.Context(), auth.UserID(c), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list error"})
			return
		}
		if items == nil {
			items = []Product{}
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

func CreateHandler(repo Repository, enricher Enricher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		if msg, ok := validateListing(req.Title, req.Description); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		price, err := decimal.NewFromString(req.PriceToman)
		if err != nil || price.IsNegative() || price.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}
		if req.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be non-negative"})
			return
		}

		var categoryID *string
		categorySlug := ""
		if req.Category != "" {
			if cat, err := repo.CategoryBySlug(c.Request.Context(), req.Category); err == nil {
				categoryID = &cat.ID
				categorySlug = cat.Slug
			}
		}

		id := uuid.NewString()
		slug := req.Slug
		if slug == "" {
			slug = GenerateSlug(req.Title)
		}
		if slug == "" {
			slug = id
		}

		p := &Product{
			ID:                id,
			SellerID:          auth.UserID(c),
			CategoryID:        categoryID,
			Title:             req.Title,
			Description:       req.Description,
			Slug:              slug,
			PriceToman:        price,
			Stock:             req.Stock,
			Active:            true,
			EligibilityStatus: EligibilityPending,
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create error"})
			return
		}

		if enricher != nil {
			enricher.ProductChanged(p.ID, p.Title, p.Description, categorySlug)
		}
		c.JSON(http.StatusCreated, p)
	}
}

func UpdateHandler(repo Repository, enricher Enricher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		current, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if current.SellerID != auth.UserID(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your product"})
			return
		}

		title := strings.TrimSpace(req.Title)
		if title == "" {
			title = current.Title
		}
		description := req.Description
		if description == "" {
			description = current.Description
		}
		if msg, ok := validateListing(title, description); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		updatePrice := false
		price := current.PriceToman
		if req.PriceToman != "" {
			price, err = decimal.NewFromString(req.PriceToman)
			if err != nil || price.IsNegative() || price.IsZero() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
				return
			}
			updatePrice = true
		}

		stock := current.Stock
		if req.Stock != nil {
			if *req.Stock < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be non-negative"})
				return
			}
			stock = *req.Stock
		}
		active := current.Active
		if req.Active != nil {
			active = *req.Active
		}

		categoryID := current.CategoryID
		categorySlug := ""
		if req.Category != "" {
			if cat, err := repo.CategoryBySlug(c.Request.Context(), req.Category); err == nil {
				categoryID = &cat.ID
				categorySlug = cat.Slug
			}
		}

		p := &Product{
			ID:          current.ID,
			Title:       title,
			Description: description,
			CategoryID:  categoryID,
			PriceToman:  price,
			Stock:       stock,
			Active:      active,
		}
		if err := repo.Update(c.Request.Context(), p, updatePrice); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update error"})
			return
		}

		textChanged := title != current.Title || description != current.Description
		if enricher != nil && textChanged {
			enricher.ProductChanged(current.ID, title, description, categorySlug)
		}

		out, err := repo.GetByID(c.Request.Context(), current.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "refetch error"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func DeleteHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"), auth.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete error"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
