package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"dealdesk/internal/models"
	"dealdesk/internal/services"
)

type EstimationHandler struct {
	Service  *services.EstimationService
	Discount *services.DiscountService
}

func NewEstimationHandler(service *services.EstimationService, discount *services.DiscountService) *EstimationHandler {
	return &EstimationHandler{Service: service, Discount: discount}
}

type createEstimationRequest struct {
	DealID int `json:"deal_id" binding:"required"`
	Items  []struct {
		ItemID    int             `json:"item_id"`
		ItemKind  string          `json:"item_kind"`
		Quantity  decimal.Decimal `json:"quantity"`
		UnitPrice decimal.Decimal `json:"unit_price"`
	} `json:"items" binding:"required"`
}

func (h *EstimationHandler) Create(c *gin.Context) {
	var req createEstimationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items := make([]models.EstimationItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.EstimationItem{
			ItemID:    it.ItemID,
			ItemKind:  it.ItemKind,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	est, err := h.Service.Create(req.DealID, items, getPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, est)
}

func (h *EstimationHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	est, err := h.Service.GetByID(id, getPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

func (h *EstimationHandler) LatestByDeal(c *gin.Context) {
	dealID, err := strconv.Atoi(c.Param("dealid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deal id"})
		return
	}
	est, err := h.Service.LatestByDeal(dealID, getPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

func (h *EstimationHandler) Approve(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	est, err := h.Service.Approve(id, getPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

// --- discount workflow ---

type discountRequest struct {
	RequestedPct decimal.Decimal `json:"requested_pct" binding:"required"`
}

// @Summary      Запрос согласования скидки
// @Description  Сверяет запрошенный процент с политикой роли и ставит смету в ожидание решения
// @Tags         Estimations
// @Accept       json
// @Produce      json
// @Param        id       path      int              true  "ID сметы"
// @Param        request  body      discountRequest  true  "Запрошенный процент"
// @Success      200      {object}  models.Estimation
// @Failure      404      {object}  map[string]string
// @Failure      422      {object}  map[string]string
// @Router       /estimations/{id}/discount/request [post]
func (h *EstimationHandler) RequestDiscount(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req discountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	est, err := h.Discount.RequestApproval(id, getPrincipal(c), req.RequestedPct)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        est.Status,
		"requested_pct": est.RequestedDiscount,
	})
}

type discountDecisionRequest struct {
	Decision string `json:"decision" binding:"required"` // APPROVED | REJECTED
}

func (h *EstimationHandler) DecideDiscount(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req discountDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var approve bool
	switch strings.ToUpper(req.Decision) {
	case "APPROVED":
		approve = true
	case "REJECTED":
		approve = false
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be APPROVED or REJECTED"})
		return
	}

	est, err := h.Discount.Decide(id, getPrincipal(c), approve)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       est.Status,
		"approved_pct": est.ApprovedDiscount,
	})
}
