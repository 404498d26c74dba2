package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/bakery_backend/middlewares"
	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/workflow"
)

// Register mounts the posting API on r.
func Register(r gin.IRouter, engine *workflow.Engine) {
	v := validator.New()
	g := r.Group("/api", middlewares.SessionMiddleware())

	mount(g, "/sales", engine.Sales, engine.DB, v)
	mount(g, "/stock-transfers", engine.StockTransfers, engine.DB, v)
	mount(g, "/kitchen-issues", engine.KitchenIssues, engine.DB, v)
	mount(g, "/kitchen-productions", engine.KitchenProductions, engine.DB, v)
	mount(g, "/recipes", engine.Recipes, engine.DB, v)
	mount(g, "/journals", engine.Journals, engine.DB, v)
	orders := mount(g, "/orders", engine.Orders, engine.DB, v)

	h := &handlers{engine: engine, validate: v}
	orders.POST("/:id/convert", h.convertOrder)
	g.POST("/production-transfers", h.produceAndTransfer)
	g.POST("/stock/rebuild", h.rebuildStock)
	g.GET("/stock/closing", h.closingStock)
}

type handlers struct {
	engine   *workflow.Engine
	validate *validator.Validate
}

func (h *handlers) convertOrder(c *gin.Context) {
	orderId, ok := pathId(c)
	if !ok {
		return
	}
	req, ok := bind[*models.Sale, *models.SaleDetail](c, h.validate)
	if !ok {
		return
	}
	id, err := h.engine.ConvertOrder(c.Request.Context(), orderId, req.Header, req.Lines)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "transaction_no": req.Header.TransactionNo})
}

type produceAndTransferRequest struct {
	Production TransactionRequest[*models.KitchenProduction, *models.KitchenProductionDetail] `json:"production"`
	Transfer   TransactionRequest[*models.StockTransfer, *models.StockTransferDetail]         `json:"transfer"`
}

func (h *handlers) produceAndTransfer(c *gin.Context) {
	var req produceAndTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	if req.Production.ApplyCart {
		req.Production.Header.ApplyCart(req.Production.Lines)
	}
	if req.Transfer.ApplyCart {
		req.Transfer.Header.ApplyCart(req.Transfer.Lines)
	}
	err := h.engine.ProduceAndTransfer(c.Request.Context(),
		req.Production.Header, req.Production.Lines,
		req.Transfer.Header, req.Transfer.Lines)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"production_id": req.Production.Header.ID,
		"production_no": req.Production.Header.TransactionNo,
		"transfer_id":   req.Transfer.Header.ID,
		"transfer_no":   req.Transfer.Header.TransactionNo,
	})
}

func (h *handlers) rebuildStock(c *gin.Context) {
	n, err := h.engine.RebuildStock(c.Request.Context(), c.Query("kind"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rebuilt": n})
}

func (h *handlers) closingStock(c *gin.Context) {
	itemId, err := strconv.Atoi(c.Query("item_id"))
	if err != nil {
		abortBadRequest(c, err)
		return
	}
	locationId, err := strconv.Atoi(c.Query("location_id"))
	if err != nil {
		abortBadRequest(c, err)
		return
	}
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		if at, err = time.Parse(time.RFC3339, raw); err != nil {
			abortBadRequest(c, err)
			return
		}
	}
	qty, err := models.StockLedgerStore{}.ClosingStock(h.engine.DB.Reader(c.Request.Context()), itemId, locationId, at)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item_id": itemId, "location_id": locationId, "quantity": qty})
}
