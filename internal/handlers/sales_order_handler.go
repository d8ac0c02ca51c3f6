package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dealdesk/internal/services"
)

type SalesOrderHandler struct {
	Service *services.SalesOrderService
}

func NewSalesOrderHandler(service *services.SalesOrderService) *SalesOrderHandler {
	return &SalesOrderHandler{Service: service}
}

type finalizeRequest struct {
	PONumber  string `json:"po_number" binding:"required"`
	OrderDate string `json:"order_date"` // YYYY-MM-DD; пусто — сегодня
}

// @Summary      Закрытие сделки в won
// @Description  Создаёт заказ с уникальным номером, считает контрактную стоимость и переводит сделку в won одной транзакцией
// @Tags         SalesOrders
// @Accept       json
// @Produce      json
// @Param        id       path      int              true  "ID сделки"
// @Param        request  body      finalizeRequest  true  "PO покупателя и дата заказа"
// @Success      201      {object}  models.SalesOrder
// @Failure      404      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Failure      422      {object}  map[string]string
// @Router       /deals/{id}/win [post]
func (h *SalesOrderHandler) Finalize(c *gin.Context) {
	dealID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	orderDate := time.Now()
	if req.OrderDate != "" {
		orderDate, err = time.Parse("2006-01-02", req.OrderDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order_date, want YYYY-MM-DD"})
			return
		}
	}

	order, err := h.Service.FinalizeAsWon(dealID, req.PONumber, orderDate, getPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *SalesOrderHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	order, err := h.Service.GetByID(id, getPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *SalesOrderHandler) GetByDeal(c *gin.Context) {
	dealID, err := strconv.Atoi(c.Param("dealid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deal id"})
		return
	}
	order, err := h.Service.GetByDealID(dealID, getPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
