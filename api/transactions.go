package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/workflow"
)

// TransactionRequest is the body of a save: the header and its full line cart.
// With ApplyCart set the server prices the cart and fills the header totals.
type TransactionRequest[H any, L any] struct {
	Header    H    `json:"header" validate:"required"`
	Lines     []L  `json:"lines" validate:"required,min=1,dive,required"`
	ApplyCart bool `json:"apply_cart"`
}

type TransactionResponse[H any, L any] struct {
	Header H   `json:"header"`
	Lines  []L `json:"lines"`
}

type cartApplier[L any] interface {
	ApplyCart(lines []L)
}

// resource exposes one coordinator over HTTP.
type resource[H models.TransactionHeader, L models.TransactionLine] struct {
	coordinator *workflow.Coordinator[H, L]
	db          *models.Database
	validate    *validator.Validate
}

func mount[H models.TransactionHeader, L models.TransactionLine](g *gin.RouterGroup, path string, c *workflow.Coordinator[H, L], db *models.Database, v *validator.Validate) *gin.RouterGroup {
	r := &resource[H, L]{coordinator: c, db: db, validate: v}
	group := g.Group(path)
	group.POST("", r.save)
	group.GET("/:id", r.get)
	group.DELETE("/:id", r.delete)
	group.POST("/:id/recover", r.recover)
	return group
}

// bind decodes and validates a transaction request, applying the cart when asked.
func bind[H any, L any](c *gin.Context, v *validator.Validate) (*TransactionRequest[H, L], bool) {
	var req TransactionRequest[H, L]
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return nil, false
	}
	if err := v.Struct(&req); err != nil {
		abortBadRequest(c, err)
		return nil, false
	}
	if req.ApplyCart {
		if applier, ok := any(req.Header).(cartApplier[L]); ok {
			applier.ApplyCart(req.Lines)
		}
	}
	return &req, true
}

func (r *resource[H, L]) save(c *gin.Context) {
	req, ok := bind[H, L](c, r.validate)
	if !ok {
		return
	}
	id, err := r.coordinator.Save(c.Request.Context(), req.Header, req.Lines)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "transaction_no": req.Header.GetTransactionNo()})
}

func (r *resource[H, L]) get(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	reader := r.db.Reader(c.Request.Context())
	h, err := r.coordinator.Load(reader, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	lines, err := r.coordinator.ActiveLines(reader, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, TransactionResponse[H, L]{Header: h, Lines: lines})
}

func (r *resource[H, L]) delete(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := r.coordinator.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *resource[H, L]) recover(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := r.coordinator.Recover(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
