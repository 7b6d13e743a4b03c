package handlers

import (
	"net/http"

	"tabletrack/internal/repository"
	"tabletrack/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService services.ProductService
	log            *zap.Logger
}

func NewProductHandler(productService services.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, log: log}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Category:   c.Query("category"),
		Name:       c.Query("name"),
		ActiveOnly: c.Query("active") == "true",
	}

	products, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}
