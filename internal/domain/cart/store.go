// internal/domain/cart/store.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/pkg/apierror"
	"github.com/your-org/storefront/internal/pkg/notify"
	"golang.org/x/sync/errgroup"
)

// API is the backend cart endpoint set
type API interface {
	GetCart(ctx context.Context) (*ServerCart, error)
	GetCartSummary(ctx context.Context) (*ServerCart, error)
	AddToCart(ctx context.Context, req ItemRequest) error
	UpdateCartItem(ctx context.Context, req ItemRequest) error
	RemoveFromCart(ctx context.Context, productID string) error
	ClearCart(ctx context.Context) error
}

// AuthGate tells the store whether the owning session is signed in
type AuthGate interface {
	IsAuthenticated() bool
}

// Recorder receives reload and enrichment outcomes
type Recorder interface {
	ReloadFinished(outcome string, d time.Duration)
	Enriched(result string)
}

// Reload outcomes
const (
	OutcomeOK           = "ok"
	OutcomeError        = "error"
	OutcomeUnauthorized = "unauthorized"
	OutcomeJoined       = "joined"
	OutcomeTimeout      = "timeout"
	OutcomeStale        = "stale"
)

// Enrichment results
const (
	EnrichedOK          = "ok"
	EnrichedDropped     = "dropped"
	EnrichedPlaceholder = "placeholder"
)

// Dependencies are the collaborators a Store is built from
type Dependencies struct {
	API      API
	Products product.Lookup
	Auth     AuthGate
	Notifier notify.Notifier
	Recorder Recorder
	Logger   logrus.FieldLogger
}

type loadCall struct {
	done chan struct{}
	gen  uint64
	err  error
}

// Store keeps a local, enriched copy of the signed-in user's server cart.
// Every successful write is followed by a full reload; nothing is applied optimistically.
type Store struct {
	api      API
	products product.Lookup
	auth     AuthGate
	notifier notify.Notifier
	recorder Recorder
	log      logrus.FieldLogger

	loadWait          time.Duration
	enrichConcurrency int

	// opMu serializes writes and their reloads.
	opMu sync.Mutex

	mu             sync.Mutex
	items          []LineItem
	open           bool
	busy           int
	errMsg         string
	gen            uint64 // bumped by every write and every local clear
	inflight       *loadCall
	subs           map[int]func(State)
	nextSub        int
	onUnauthorized func()
}

// NewStore creates an empty cart store
func NewStore(deps Dependencies, cfg config.CartConfig) *Store {
	s := &Store{
		api:               deps.API,
		products:          deps.Products,
		auth:              deps.Auth,
		notifier:          deps.Notifier,
		recorder:          deps.Recorder,
		log:               deps.Logger,
		loadWait:          cfg.LoadWait,
		enrichConcurrency: cfg.EnrichConcurrency,
		subs:              make(map[int]func(State)),
	}
	if s.notifier == nil {
		s.notifier = notify.Discard{}
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.loadWait <= 0 {
		s.loadWait = 5 * time.Second
	}
	if s.enrichConcurrency < 1 {
		s.enrichConcurrency = 1
	}
	return s
}

// OnUnauthorized registers the hook run when the backend rejects the session with a 401
func (s *Store) OnUnauthorized(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUnauthorized = fn
}

// Subscribe registers fn to receive the state after every change.
// fn runs on the goroutine that changed the state and must not call back into
// the store's write operations. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	return State{
		Items:     items,
		Total:     Total(items),
		ItemCount: ItemCount(items),
		Open:      s.open,
		Loading:   s.busy > 0,
		Error:     s.errMsg,
	}
}

// Items returns a copy of the displayed lines in server order
func (s *Store) Items() []LineItem { return s.Snapshot().Items }

// Total returns the sum of unit price times quantity
func (s *Store) Total() decimal.Decimal { return s.Snapshot().Total }

// ItemCount returns the number of units in the cart
func (s *Store) ItemCount() int { return s.Snapshot().ItemCount }

// IsOpen reports whether the cart panel is shown
func (s *Store) IsOpen() bool { return s.Snapshot().Open }

// Loading reports whether a write or reload is running
func (s *Store) Loading() bool { return s.Snapshot().Loading }

// Err returns the message of the last failed operation, if any
func (s *Store) Err() string { return s.Snapshot().Error }

func (s *Store) publish() {
	s.mu.Lock()
	state := s.stateLocked()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// ToggleCart flips the open flag
func (s *Store) ToggleCart() { s.setOpen(func(open bool) bool { return !open }) }

// OpenCart shows the cart panel
func (s *Store) OpenCart() { s.setOpen(func(bool) bool { return true }) }

// CloseCart hides the cart panel
func (s *Store) CloseCart() { s.setOpen(func(bool) bool { return false }) }

func (s *Store) setOpen(next func(bool) bool) {
	s.mu.Lock()
	s.open = next(s.open)
	s.mu.Unlock()
	s.publish()
}

// Reset drops all local cart data; used when the session signs out
func (s *Store) Reset() {
	s.clearLocal("")
}

func (s *Store) clearLocal(errMsg string) {
	s.mu.Lock()
	s.items = nil
	s.errMsg = errMsg
	s.gen++
	s.mu.Unlock()
	s.publish()
}

// begin marks the store busy and clears the last error; the returned func ends the operation
func (s *Store) begin() func() {
	s.mu.Lock()
	s.busy++
	s.errMsg = ""
	s.mu.Unlock()
	s.publish()

	return func() {
		s.mu.Lock()
		s.busy--
		s.mu.Unlock()
		s.publish()
	}
}

// fail records a store error and shows it to the user
func (s *Store) fail(e *Error) *Error {
	s.mu.Lock()
	s.errMsg = e.Message
	s.mu.Unlock()
	s.notifier.Error(e.Message)
	s.publish()
	return e
}

// failWrite records a failed write. A 401 also drops the displayed lines and
// runs the unauthorized hook so the session signs out.
func (s *Store) failWrite(err error, fallback string) *Error {
	e := classify(err, fallback)
	if !apierror.IsUnauthorized(err) {
		return s.fail(e)
	}

	s.mu.Lock()
	s.items = nil
	s.errMsg = e.Message
	s.gen++
	hook := s.onUnauthorized
	s.mu.Unlock()

	s.notifier.Error(e.Message)
	s.publish()
	if hook != nil {
		hook()
	}
	return e
}

// LoadCart replaces local state with the enriched server cart.
// A caller arriving during a reload waits for it instead of issuing another one.
func (s *Store) LoadCart(ctx context.Context) error {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	return s.load(ctx, gen)
}

// load reloads the cart, joining an in-flight reload only if that reload started
// at or after write generation minGen. An older in-flight reload is left to finish
// on its own; its result is discarded because the generation moved on.
func (s *Store) load(ctx context.Context, minGen uint64) error {
	if !s.auth.IsAuthenticated() {
		s.clearLocal("")
		return nil
	}

	s.mu.Lock()
	if c := s.inflight; c != nil && c.gen >= minGen {
		s.mu.Unlock()
		return s.join(ctx, c)
	}

	c := &loadCall{done: make(chan struct{}), gen: s.gen}
	s.inflight = c
	s.busy++
	s.mu.Unlock()
	s.publish()

	c.err = s.run(ctx, c)

	s.mu.Lock()
	if s.inflight == c {
		s.inflight = nil
	}
	s.busy--
	s.mu.Unlock()
	close(c.done)
	s.publish()
	return c.err
}

// join waits at most loadWait for the in-flight reload c
func (s *Store) join(ctx context.Context, c *loadCall) error {
	timer := time.NewTimer(s.loadWait)
	defer timer.Stop()

	select {
	case <-c.done:
		s.recorder.ReloadFinished(OutcomeJoined, 0)
		return c.err
	case <-timer.C:
		s.recorder.ReloadFinished(OutcomeTimeout, s.loadWait)
		e := &Error{Class: ClassGeneric, Message: MsgLoadBusy, Err: ErrLoadInProgress}
		s.mu.Lock()
		s.errMsg = e.Message
		s.mu.Unlock()
		s.publish()
		return e
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run performs one reload and applies it unless local state moved on meanwhile
func (s *Store) run(ctx context.Context, c *loadCall) error {
	start := time.Now()
	items, dropped, err := s.fetch(ctx)

	if err != nil && ctx.Err() != nil {
		// The caller went away; keep whatever is displayed.
		s.recorder.ReloadFinished(OutcomeError, time.Since(start))
		return ctx.Err()
	}

	s.mu.Lock()
	if c.gen != s.gen {
		s.mu.Unlock()
		s.recorder.ReloadFinished(OutcomeStale, time.Since(start))
		return nil
	}

	if err != nil {
		e := classify(err, MsgLoadFailed)
		s.items = nil
		s.errMsg = e.Message
		hook := s.onUnauthorized
		s.mu.Unlock()

		s.log.WithError(err).WithField("class", e.Class.String()).Warn("cart reload failed")
		if apierror.IsUnauthorized(err) {
			s.recorder.ReloadFinished(OutcomeUnauthorized, time.Since(start))
			if hook != nil {
				hook()
			}
		} else {
			s.recorder.ReloadFinished(OutcomeError, time.Since(start))
		}
		return e
	}

	s.items = items
	s.errMsg = ""
	s.mu.Unlock()

	s.recorder.ReloadFinished(OutcomeOK, time.Since(start))
	if dropped > 0 {
		s.notifier.Error(unavailableMessage(dropped))
	}
	return nil
}

// fetch reads the server cart and enriches it with product details.
// dropped counts the lines removed because their product no longer exists.
func (s *Store) fetch(ctx context.Context) ([]LineItem, int, error) {
	sc, err := s.api.GetCart(ctx)
	if err != nil {
		return nil, 0, err
	}
	if sc == nil || sc.Items == nil {
		sc, err = s.api.GetCartSummary(ctx)
		if err != nil {
			return nil, 0, err
		}
	}
	if sc == nil {
		return []LineItem{}, 0, nil
	}

	lines := make([]ServerItem, 0, len(sc.Items))
	ids := make([]string, 0, len(sc.Items))
	seen := make(map[string]bool, len(sc.Items))
	for _, item := range sc.Items {
		// Lines at zero quantity are removals the backend has not compacted yet.
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		lines = append(lines, item)
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	details, err := s.enrich(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	items := make([]LineItem, 0, len(lines))
	dropped := 0
	for _, line := range lines {
		d, ok := details[line.ProductID]
		if !ok {
			dropped++
			continue
		}
		items = append(items, newLineItem(line, d.product, d.placeholder))
	}
	return items, dropped, nil
}

type detail struct {
	product     product.Product
	placeholder bool
}

// enrich looks up every distinct product id. Products the backend reports as
// missing are left out of the result; other failures yield a placeholder.
func (s *Store) enrich(ctx context.Context, ids []string) (map[string]detail, error) {
	results := make([]*detail, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.enrichConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			p, err := s.products.GetProductByID(gctx, id)
			switch {
			case err == nil && p != nil:
				results[i] = &detail{product: p.WithDefaults()}
				s.recorder.Enriched(EnrichedOK)
			case apierror.IsNotFound(err):
				s.log.WithField("product_id", id).Info("product no longer available, dropping cart line")
				s.recorder.Enriched(EnrichedDropped)
			default:
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.log.WithError(err).WithField("product_id", id).Warn("product lookup failed, using placeholder")
				results[i] = &detail{product: product.Placeholder(id), placeholder: true}
				s.recorder.Enriched(EnrichedPlaceholder)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]detail, len(ids))
	for i, id := range ids {
		if results[i] != nil {
			out[id] = *results[i]
		}
	}
	return out, nil
}

// reloadAfterWrite resynchronizes with the server after a successful write
func (s *Store) reloadAfterWrite(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	if err := s.load(ctx, gen); err != nil {
		var e *Error
		if errors.As(err, &e) {
			s.notifier.Error(e.Message)
		}
		return err
	}
	return nil
}

// AddToCart adds one unit of p and resynchronizes
func (s *Store) AddToCart(ctx context.Context, p product.Product) error {
	if !s.auth.IsAuthenticated() {
		return s.fail(&Error{Class: ClassAuthenticationRequired, Message: MsgSignInToAdd, Err: ErrAuthRequired})
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	defer s.begin()()

	if err := s.api.AddToCart(ctx, ItemRequest{ProductID: p.ID, Quantity: 1}); err != nil {
		s.log.WithError(err).WithField("product_id", p.ID).Warn("add to cart failed")
		return s.failWrite(err, MsgAddFailed)
	}
	if err := s.reloadAfterWrite(ctx); err != nil {
		return err
	}

	name := p.Name
	if name == "" {
		name = "Product"
	}
	s.notifier.Success(fmt.Sprintf(msgAddedFormat, name))
	return nil
}

// RemoveFromCart deletes the line for productID and resynchronizes
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	if !s.auth.IsAuthenticated() {
		return s.fail(&Error{Class: ClassAuthenticationRequired, Message: MsgSignInToModify, Err: ErrAuthRequired})
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.remove(ctx, productID)
}

func (s *Store) remove(ctx context.Context, productID string) error {
	defer s.begin()()

	if err := s.api.RemoveFromCart(ctx, productID); err != nil {
		s.log.WithError(err).WithField("product_id", productID).Warn("remove from cart failed")
		return s.failWrite(err, MsgRemoveFailed)
	}
	if err := s.reloadAfterWrite(ctx); err != nil {
		return err
	}

	s.notifier.Success(MsgProductRemoved)
	return nil
}

// UpdateQuantity sets the quantity of productID; zero or less removes the line
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if !s.auth.IsAuthenticated() {
		return s.fail(&Error{Class: ClassAuthenticationRequired, Message: MsgSignInToModify, Err: ErrAuthRequired})
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if quantity <= 0 {
		return s.remove(ctx, productID)
	}

	defer s.begin()()

	if err := s.api.UpdateCartItem(ctx, ItemRequest{ProductID: productID, Quantity: quantity}); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"product_id": productID,
			"quantity":   quantity,
		}).Warn("update cart item failed")
		return s.failWrite(err, MsgUpdateFailed)
	}
	return s.reloadAfterWrite(ctx)
}

// ClearCart empties the server cart. The result is known, so no reload follows.
func (s *Store) ClearCart(ctx context.Context) error {
	if !s.auth.IsAuthenticated() {
		s.clearLocal("")
		return nil
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	defer s.begin()()

	if err := s.api.ClearCart(ctx); err != nil {
		s.log.WithError(err).Warn("clear cart failed")
		return s.failWrite(err, MsgClearFailed)
	}

	s.clearLocal("")
	s.notifier.Success(MsgCartCleared)
	return nil
}

type nopRecorder struct{}

func (nopRecorder) ReloadFinished(string, time.Duration) {}
func (nopRecorder) Enriched(string)                      {}
