package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/bakery_backend/config"
	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Definition describes one transaction kind to the coordinator: how it is numbered,
// validated, linked, and which stock and accounting rows it derives.
type Definition[H models.TransactionHeader, L models.TransactionLine] interface {
	Kind() string
	NewHeader() H
	NewLine() L
	NumberScope(h H) NumberScope
	// Prepare validates kind-specific rules inside the unit, after the period checks.
	Prepare(uow models.UnitOfWork, h H, lines []L) error
	// IsLinked reports whether a downstream transaction consumes h.
	IsLinked(uow models.UnitOfWork, h H) (bool, error)
	StockTypes() []models.StockType
	StockSets(uow models.UnitOfWork, h H, lines []L) ([]StockSet, error)
	// PostingKey and Posting return nil for kinds without a derived accounting entry.
	PostingKey(uow models.UnitOfWork, h H) (*PostingKey, error)
	Posting(uow models.UnitOfWork, h H, lines []L) (*PostingOverview, error)
}

// Dependencies are shared by every coordinator of an engine.
type Dependencies struct {
	DB       *models.Database
	Guard    *PeriodGuard
	Numbers  NumberGenerator
	Stock    *StockLedgerProjector
	Poster   *AccountingPoster
	Notifier Notifier
	Exporter Exporter
	Locker   PostingLocker
	Clock    func() time.Time
	Logger   *logrus.Logger
}

// Coordinator runs Save/Delete/Recover of one transaction kind. The plain methods open
// and commit their own unit and notify afterwards; the ...In variants run against a
// unit owned by the caller and never commit or notify.
type Coordinator[H models.TransactionHeader, L models.TransactionLine] struct {
	Dependencies
	def     Definition[H, L]
	headers models.HeaderStore[H]
	lines   models.LineStore[L]
	tracer  trace.Tracer
}

func NewCoordinator[H models.TransactionHeader, L models.TransactionLine](def Definition[H, L], deps Dependencies) *Coordinator[H, L] {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = config.GetLogger()
	}
	return &Coordinator[H, L]{
		Dependencies: deps,
		def:          def,
		headers:      models.NewHeaderStore(def.NewHeader),
		lines:        models.NewLineStore(def.NewLine),
		tracer:       otel.Tracer("github.com/mmdatafocus/bakery_backend/workflow"),
	}
}

func (c *Coordinator[H, L]) Kind() string { return c.def.Kind() }

type saveOptions struct {
	notify bool
}

type SaveOption func(*saveOptions)

// WithoutNotify commits without publishing the post-commit event.
func WithoutNotify() SaveOption {
	return func(o *saveOptions) { o.notify = false }
}

func buildOptions(opts []SaveOption) saveOptions {
	o := saveOptions{notify: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load returns a stored header within uow.
func (c *Coordinator[H, L]) Load(uow models.UnitOfWork, id int) (H, error) {
	return c.headers.Load(uow, id)
}

// ActiveLines returns the current line set of a header within uow.
func (c *Coordinator[H, L]) ActiveLines(uow models.UnitOfWork, id int) ([]L, error) {
	return c.lines.ActiveLines(uow, id)
}

// Save creates (Id 0) or updates h with the given line cart in one atomic unit.
func (c *Coordinator[H, L]) Save(ctx context.Context, h H, lines []L, opts ...SaveOption) (int, error) {
	o := buildOptions(opts)
	ctx, span := c.tracer.Start(ctx, c.def.Kind()+".Save")
	defer span.End()

	isUpdate := h.GetId() > 0
	span.SetAttributes(attribute.Int("transaction.id", h.GetId()), attribute.Bool("transaction.update", isUpdate))

	if err := c.preValidate(ctx, h.GetTransactionDateTime(), h, lines); err != nil {
		return 0, c.fail(span, "Save", h.GetId(), err)
	}

	var previous []byte
	if isUpdate {
		release, err := c.lock(ctx, h.GetId())
		if err != nil {
			return 0, c.fail(span, "Save", h.GetId(), err)
		}
		defer release()
		previous = c.capture(ctx, h.GetId())
	}

	err := c.DB.Atomic(ctx, func(uow models.UnitOfWork) error {
		return c.SaveIn(uow, h, lines)
	})
	if err != nil {
		if !isUpdate {
			h.SetId(0)
			h.SetTransactionNo("")
		}
		return 0, c.fail(span, "Save", h.GetId(), err)
	}

	if o.notify {
		action := ActionCreated
		if isUpdate {
			action = ActionUpdated
		}
		c.notify(ctx, h, action, previous)
	}
	return h.GetId(), nil
}

// SaveIn performs the raw save steps against the caller's unit: period checks,
// numbering, header write, line replacement, stock projection and accounting posting.
func (c *Coordinator[H, L]) SaveIn(uow models.UnitOfWork, h H, lines []L) error {
	return c.saveIn(uow, h, lines, false)
}

func (c *Coordinator[H, L]) saveIn(uow models.UnitOfWork, h H, lines []L, recovering bool) error {
	ctx := uow.Context()
	userId, _ := utils.GetUserIdFromContext(ctx)
	platform := utils.GetPlatformFromContext(ctx)
	now := c.Clock()

	isUpdate := h.GetId() > 0
	if isUpdate {
		existing, err := c.headers.Load(uow, h.GetId())
		if err != nil {
			return err
		}
		if !existing.GetStatus() && !recovering {
			return fmt.Errorf("%w: %s %s is deleted; recover it first", utils.ErrInvalidTransaction, c.def.Kind(), existing.GetTransactionNo())
		}
		if _, err := c.Guard.Validate(uow, existing.GetTransactionDateTime()); err != nil {
			return err
		}
		if err := c.checkLinked(uow, existing); err != nil {
			return err
		}
		h.SetTransactionNo(existing.GetTransactionNo())
		h.Audit().CopyCreated(*existing.Audit())
		h.Audit().StampModified(userId, platform, now)
	}

	fy, err := c.Guard.Validate(uow, h.GetTransactionDateTime())
	if err != nil {
		return err
	}
	h.SetFinancialYearId(fy.ID)

	if !isUpdate {
		scope := c.def.NumberScope(h)
		scope.FinancialYearId = fy.ID
		no, err := c.Numbers.Generate(uow, scope)
		if err != nil {
			return err
		}
		h.SetTransactionNo(no)
		h.Audit().StampCreated(userId, platform, now)
	}

	if err := c.def.Prepare(uow, h, lines); err != nil {
		return err
	}
	if err := validateLineSet(h, lines); err != nil {
		return err
	}

	h.SetStatus(true)
	if err := c.headers.Save(uow, h); err != nil {
		return err
	}
	if err := c.lines.ReplaceLines(uow, h.GetId(), lines); err != nil {
		return err
	}
	return c.project(uow, h, lines)
}

func (c *Coordinator[H, L]) project(uow models.UnitOfWork, h H, lines []L) error {
	sets, err := c.def.StockSets(uow, h, lines)
	if err != nil {
		return err
	}
	for _, set := range sets {
		if err := c.Stock.Replace(uow, set); err != nil {
			return err
		}
	}

	overview, err := c.def.Posting(uow, h, lines)
	if err != nil {
		return err
	}
	if overview != nil {
		overview.Audit = *h.Audit()
		if _, err := c.Poster.Post(uow, *overview); err != nil {
			return err
		}
	}
	return nil
}

// Delete soft-deletes a transaction, clears its stock rows and reverses its posting.
func (c *Coordinator[H, L]) Delete(ctx context.Context, id int, opts ...SaveOption) error {
	o := buildOptions(opts)
	ctx, span := c.tracer.Start(ctx, c.def.Kind()+".Delete")
	defer span.End()
	span.SetAttributes(attribute.Int("transaction.id", id))

	h, err := c.headers.Load(c.DB.Reader(ctx), id)
	if err != nil {
		return c.fail(span, "Delete", id, err)
	}
	if _, err := c.Guard.Validate(c.DB.Reader(ctx), h.GetTransactionDateTime()); err != nil {
		return c.fail(span, "Delete", id, err)
	}

	release, err := c.lock(ctx, id)
	if err != nil {
		return c.fail(span, "Delete", id, err)
	}
	defer release()
	previous := c.capture(ctx, id)

	var deleted H
	err = c.DB.Atomic(ctx, func(uow models.UnitOfWork) error {
		var err error
		deleted, err = c.DeleteIn(uow, id)
		return err
	})
	if err != nil {
		return c.fail(span, "Delete", id, err)
	}
	if o.notify {
		c.notify(ctx, deleted, ActionDeleted, previous)
	}
	return nil
}

func (c *Coordinator[H, L]) DeleteIn(uow models.UnitOfWork, id int) (H, error) {
	h, err := c.headers.Load(uow, id)
	if err != nil {
		return h, err
	}
	if !h.GetStatus() {
		return h, fmt.Errorf("%w: %s %s is already deleted", utils.ErrInvalidTransaction, c.def.Kind(), h.GetTransactionNo())
	}
	if _, err := c.Guard.Validate(uow, h.GetTransactionDateTime()); err != nil {
		return h, err
	}
	if err := c.checkLinked(uow, h); err != nil {
		return h, err
	}

	ctx := uow.Context()
	userId, _ := utils.GetUserIdFromContext(ctx)
	h.SetStatus(false)
	h.Audit().StampModified(userId, utils.GetPlatformFromContext(ctx), c.Clock())
	if err := c.headers.Save(uow, h); err != nil {
		return h, err
	}

	for _, t := range c.def.StockTypes() {
		if err := c.Stock.Clear(uow, t, id, 0); err != nil {
			return h, err
		}
	}
	key, err := c.def.PostingKey(uow, h)
	if err != nil {
		return h, err
	}
	if key != nil {
		if _, err := c.Poster.Reverse(uow, *key, *h.Audit()); err != nil {
			return h, err
		}
	}
	return h, nil
}

// Recover re-activates a deleted transaction by replaying Save with its last stored lines.
func (c *Coordinator[H, L]) Recover(ctx context.Context, id int, opts ...SaveOption) error {
	o := buildOptions(opts)
	ctx, span := c.tracer.Start(ctx, c.def.Kind()+".Recover")
	defer span.End()
	span.SetAttributes(attribute.Int("transaction.id", id))

	h, err := c.headers.Load(c.DB.Reader(ctx), id)
	if err != nil {
		return c.fail(span, "Recover", id, err)
	}
	if _, err := c.Guard.Validate(c.DB.Reader(ctx), h.GetTransactionDateTime()); err != nil {
		return c.fail(span, "Recover", id, err)
	}

	release, err := c.lock(ctx, id)
	if err != nil {
		return c.fail(span, "Recover", id, err)
	}
	defer release()

	var recovered H
	err = c.DB.Atomic(ctx, func(uow models.UnitOfWork) error {
		var err error
		recovered, err = c.RecoverIn(uow, id)
		return err
	})
	if err != nil {
		return c.fail(span, "Recover", id, err)
	}
	if o.notify {
		c.notify(ctx, recovered, ActionRecovered, nil)
	}
	return nil
}

func (c *Coordinator[H, L]) RecoverIn(uow models.UnitOfWork, id int) (H, error) {
	h, err := c.headers.Load(uow, id)
	if err != nil {
		return h, err
	}
	if h.GetStatus() {
		return h, fmt.Errorf("%w: %s %s is not deleted", utils.ErrInvalidTransaction, c.def.Kind(), h.GetTransactionNo())
	}
	lines, err := c.lines.ActiveLines(uow, id)
	if err != nil {
		return h, err
	}
	h.SetStatus(true)
	return h, c.saveIn(uow, h, lines, true)
}

// RebuildStock re-projects the stock rows of every active transaction, one unit each.
func (c *Coordinator[H, L]) RebuildStock(ctx context.Context) (int, error) {
	ids, err := c.headers.ActiveIds(c.DB.Reader(ctx))
	if err != nil {
		return 0, err
	}
	rebuilt := 0
	for _, id := range ids {
		err := c.DB.Atomic(ctx, func(uow models.UnitOfWork) error {
			h, err := c.headers.Load(uow, id)
			if err != nil {
				return err
			}
			lines, err := c.lines.ActiveLines(uow, id)
			if err != nil {
				return err
			}
			sets, err := c.def.StockSets(uow, h, lines)
			if err != nil {
				return err
			}
			for _, set := range sets {
				if err := c.Stock.Replace(uow, set); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return rebuilt, fmt.Errorf("rebuild %s %d: %w", c.def.Kind(), id, err)
		}
		rebuilt++
	}
	return rebuilt, nil
}

func (c *Coordinator[H, L]) preValidate(ctx context.Context, date time.Time, h H, lines []L) error {
	if _, err := c.Guard.Validate(c.DB.Reader(ctx), date); err != nil {
		return err
	}
	return validateLineSet(h, lines)
}

func (c *Coordinator[H, L]) checkLinked(uow models.UnitOfWork, h H) error {
	linked, err := c.def.IsLinked(uow, h)
	if err != nil {
		return err
	}
	if linked {
		return fmt.Errorf("%w: %s %s", utils.ErrAlreadyLinked, c.def.Kind(), h.GetTransactionNo())
	}
	return nil
}

// validateLineSet checks the cart against the header's declared item count and quantity.
func validateLineSet[H models.TransactionHeader, L models.TransactionLine](h H, lines []L) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: at least one line is required", utils.ErrInvalidTransaction)
	}
	qty := decimal.Zero
	for i, l := range lines {
		if !l.GetStatus() {
			return fmt.Errorf("%w: line %d", utils.ErrInactiveLineRejected, i+1)
		}
		qty = qty.Add(l.CountedQuantity())
	}
	if len(lines) != h.DeclaredItems() {
		return fmt.Errorf("%w: %d lines, header declares %d", utils.ErrSummaryMismatch, len(lines), h.DeclaredItems())
	}
	if !qty.Equal(h.DeclaredQuantity()) {
		return fmt.Errorf("%w: line quantity %s, header declares %s", utils.ErrSummaryMismatch, qty, h.DeclaredQuantity())
	}
	return nil
}

// lock takes the posting lock of one stored transaction. Redis trouble only costs the
// lock; a lock held elsewhere fails the call.
func (c *Coordinator[H, L]) lock(ctx context.Context, id int) (func(), error) {
	noop := func() {}
	if c.Locker == nil {
		return noop, nil
	}
	release, err := c.Locker.Lock(ctx, fmt.Sprintf("%s:%d", c.def.Kind(), id))
	if errors.Is(err, utils.ErrTransactionBusy) {
		return nil, err
	}
	if err != nil {
		config.LogError(c.Logger, "workflow", c.def.Kind()+".lock", "obtain posting lock", id, err)
		return noop, nil
	}
	return release, nil
}

// capture renders the stored state of a transaction; failures are logged and yield nil.
func (c *Coordinator[H, L]) capture(ctx context.Context, id int) []byte {
	if c.Exporter == nil {
		return nil
	}
	reader := c.DB.Reader(ctx)
	h, err := c.headers.Load(reader, id)
	if err != nil {
		config.LogError(c.Logger, "workflow", c.def.Kind()+".capture", "load header", id, err)
		return nil
	}
	lines, err := c.lines.ActiveLines(reader, id)
	if err != nil {
		config.LogError(c.Logger, "workflow", c.def.Kind()+".capture", "load lines", id, err)
		return nil
	}
	artifact, err := c.Exporter.Export(c.def.Kind(), h, lines)
	if err != nil {
		config.LogError(c.Logger, "workflow", c.def.Kind()+".capture", "export", id, err)
		return nil
	}
	return artifact
}

func (c *Coordinator[H, L]) notify(ctx context.Context, h H, action NotifyAction, previous []byte) {
	if c.Notifier == nil {
		return
	}
	var current []byte
	if action != ActionDeleted {
		current = c.capture(ctx, h.GetId())
	}
	correlationId, ok := utils.GetCorrelationIdFromContext(ctx)
	if !ok || correlationId == "" {
		correlationId = uuid.NewString()
	}
	event := TransactionEvent{
		TransactionId: h.GetId(),
		Kind:          c.def.Kind(),
		TransactionNo: h.GetTransactionNo(),
		Action:        action,
		Previous:      previous,
		Current:       current,
		CorrelationId: correlationId,
		OccurredAt:    c.Clock(),
	}
	if err := c.Notifier.Notify(ctx, event); err != nil {
		config.LogError(c.Logger, "workflow", c.def.Kind()+".notify", string(action), h.GetId(), err)
	}
}

func (c *Coordinator[H, L]) fail(span trace.Span, op string, id int, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	fields := logrus.Fields{
		"module":   "workflow",
		"funcName": c.def.Kind() + "." + op,
		"id":       id,
	}
	if isRuleViolation(err) {
		c.Logger.WithFields(fields).Warn(err.Error())
	} else {
		c.Logger.WithFields(fields).Error(err.Error())
	}
	return err
}

func isRuleViolation(err error) bool {
	for _, target := range []error{
		utils.ErrPeriodClosed, utils.ErrSummaryMismatch, utils.ErrInactiveLineRejected,
		utils.ErrAlreadyLinked, utils.ErrPartyRequired, utils.ErrInvalidTransaction,
		utils.ErrTransactionNotFound, utils.ErrTransactionBusy,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
