package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/pkg/apierror"
	"github.com/your-org/storefront/internal/pkg/logger"
	"github.com/your-org/storefront/internal/pkg/notify"
)

type cartTestContext struct {
	api          *fakeAPI
	products     *fakeProducts
	auth         *fakeAuth
	inbox        *notify.Inbox
	store        *Store
	err          error
	unauthorized int
	told         []notify.Notification
}

func (c *cartTestContext) reset() {
	c.api = &fakeAPI{}
	c.products = &fakeProducts{products: map[string]product.Product{}}
	c.auth = &fakeAuth{}
	c.inbox = notify.NewInbox(100)
	c.err = nil
	c.unauthorized = 0
	c.told = nil
	c.store = NewStore(Dependencies{
		API:      c.api,
		Products: c.products,
		Auth:     c.auth,
		Notifier: c.inbox,
		Logger:   logger.Discard(),
	}, config.CartConfig{LoadWait: time.Second, EnrichConcurrency: 4})
	c.store.OnUnauthorized(func() { c.unauthorized++ })
}

func (c *cartTestContext) theCatalogContainsProduct(id, name string, price int) error {
	c.products.products[id] = product.Product{ID: id, Name: name, Price: decimalFromInt(price)}
	return nil
}

func (c *cartTestContext) iAmSignedIn() error {
	c.auth.ok = true
	return nil
}

func (c *cartTestContext) iAmSignedOut() error {
	c.auth.ok = false
	return nil
}

func (c *cartTestContext) theServerCartHolds(qty int, id string, price int) error {
	c.api.items = append(c.api.items, ServerItem{ProductID: id, Quantity: qty, Price: decimalFromInt(price)})
	return nil
}

func (c *cartTestContext) lookingUpProductFails(id string) error {
	c.products.errs = map[string]error{id: apierror.FromResponse(http.StatusBadGateway, nil)}
	return nil
}

func (c *cartTestContext) theBackendRejectsWrites(status int, code string) error {
	body := fmt.Sprintf(`{"error":"rejected","code":%q}`, code)
	c.api.writeErr = apierror.FromResponse(status, []byte(body))
	return nil
}

func (c *cartTestContext) theBackendRejectsReads(status int) error {
	c.api.getErr = apierror.FromResponse(status, nil)
	return nil
}

func (c *cartTestContext) collect() {
	c.told = append(c.told, c.inbox.Drain()...)
}

func (c *cartTestContext) iLoadTheCart() error {
	c.err = c.store.LoadCart(context.Background())
	c.collect()
	return nil
}

func (c *cartTestContext) iAddProductToTheCart(id string) error {
	p, ok := c.products.products[id]
	if !ok {
		p = product.Product{ID: id}
	}
	c.err = c.store.AddToCart(context.Background(), p)
	c.collect()
	return nil
}

func (c *cartTestContext) iSetTheQuantityOf(id string, qty int) error {
	c.err = c.store.UpdateQuantity(context.Background(), id, qty)
	c.collect()
	return nil
}

func (c *cartTestContext) iEmptyTheCart() error {
	c.err = c.store.ClearCart(context.Background())
	c.collect()
	return nil
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if got := len(c.store.Items()); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) theCartTotalIs(total int) error {
	if got := c.store.Total(); !got.Equal(decimalFromInt(total)) {
		return fmt.Errorf("expected total %d, got %s", total, got)
	}
	return nil
}

func (c *cartTestContext) theCartItemCountIs(n int) error {
	if got := c.store.ItemCount(); got != n {
		return fmt.Errorf("expected item count %d, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) lineIsShownAs(id, name string) error {
	for _, item := range c.store.Items() {
		if item.ProductID == id {
			if item.Name != name {
				return fmt.Errorf("expected line %s named %q, got %q", id, name, item.Name)
			}
			return nil
		}
	}
	return fmt.Errorf("no line for %s", id)
}

func (c *cartTestContext) iAmTold(message string) error {
	for _, n := range c.told {
		if n.Message == message {
			return nil
		}
	}
	return fmt.Errorf("expected notification %q, got %+v", message, c.told)
}

func (c *cartTestContext) theOperationFailsWithClass(class string) error {
	var e *Error
	if !errors.As(c.err, &e) {
		return fmt.Errorf("expected cart error, got %v", c.err)
	}
	if e.Class.String() != class {
		return fmt.Errorf("expected class %s, got %s", class, e.Class)
	}
	return nil
}

func (c *cartTestContext) noRequestReachedTheBackend() error {
	if n := c.api.calls(); n != 0 {
		return fmt.Errorf("expected no backend calls, got %d", n)
	}
	return nil
}

func (c *cartTestContext) theSessionWasToldItIsNoLongerAuthorized() error {
	if c.unauthorized != 1 {
		return fmt.Errorf("expected one unauthorized callback, got %d", c.unauthorized)
	}
	return nil
}

func (c *cartTestContext) theServerCartWasRead(n int) error {
	if c.api.getCalls != n {
		return fmt.Errorf("expected %d cart reads, got %d", n, c.api.getCalls)
	}
	return nil
}

func InitializeCartScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the catalog contains product "([^"]*)" named "([^"]*)" priced (\d+)$`, tc.theCatalogContainsProduct)
	ctx.Step(`^I am signed in$`, tc.iAmSignedIn)
	ctx.Step(`^I am signed out$`, tc.iAmSignedOut)
	ctx.Step(`^the server cart holds (\d+) of "([^"]*)" at (\d+)$`, tc.theServerCartHolds)
	ctx.Step(`^looking up product "([^"]*)" fails$`, tc.lookingUpProductFails)
	ctx.Step(`^the backend rejects writes with status (\d+) and code "([^"]*)"$`, tc.theBackendRejectsWrites)
	ctx.Step(`^the backend rejects reads with status (\d+)$`, tc.theBackendRejectsReads)

	// When steps
	ctx.Step(`^I load the cart$`, tc.iLoadTheCart)
	ctx.Step(`^I add product "([^"]*)" to the cart$`, tc.iAddProductToTheCart)
	ctx.Step(`^I set the quantity of "([^"]*)" to (-?\d+)$`, tc.iSetTheQuantityOf)
	ctx.Step(`^I empty the cart$`, tc.iEmptyTheCart)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the cart total is (\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^the cart item count is (\d+)$`, tc.theCartItemCountIs)
	ctx.Step(`^line "([^"]*)" is shown as "([^"]*)"$`, tc.lineIsShownAs)
	ctx.Step(`^I am told "([^"]*)"$`, tc.iAmTold)
	ctx.Step(`^the operation fails with class "([^"]*)"$`, tc.theOperationFailsWithClass)
	ctx.Step(`^no request reached the backend$`, tc.noRequestReachedTheBackend)
	ctx.Step(`^the session was told it is no longer authorized$`, tc.theSessionWasToldItIsNoLongerAuthorized)
	ctx.Step(`^the server cart was read (\d+) times?$`, tc.theServerCartWasRead)
}

func TestCartFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeCartScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../../features/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
