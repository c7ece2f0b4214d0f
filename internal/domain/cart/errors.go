package cart

import (
	"errors"
	"fmt"

	"github.com/your-org/storefront/internal/pkg/apierror"
)

var (
	ErrAuthRequired   = errors.New("authentication required")
	ErrLoadInProgress = errors.New("cart reload already in progress")
)

// User-facing messages
const (
	MsgSignInToAdd      = "You must sign in to add products to your cart"
	MsgSignInToModify   = "You must sign in to modify your cart"
	MsgSessionExpired   = "Your session has expired, please sign in again"
	MsgVerifyAccount    = "Please verify your account before using the cart"
	MsgLoadFailed       = "Could not load your cart"
	MsgLoadBusy         = "Your cart is still loading, please try again"
	MsgAddFailed        = "Could not add the product to your cart"
	MsgRemoveFailed     = "Could not remove the product from your cart"
	MsgUpdateFailed     = "Could not update the quantity"
	MsgClearFailed      = "Could not empty your cart"
	MsgProductRemoved   = "Product removed from cart"
	MsgCartCleared      = "Cart emptied"
	msgAddedFormat      = "%s added to cart"
	msgUnavailableOne   = "A product in your cart is no longer available and was removed"
	msgUnavailableCount = "%d products in your cart are no longer available and were removed"
)

// Class groups failures by how the UI should react to them
type Class int

const (
	ClassGeneric Class = iota
	ClassAuthenticationRequired
	ClassVerificationRequired
)

func (c Class) String() string {
	switch c {
	case ClassAuthenticationRequired:
		return "authentication_required"
	case ClassVerificationRequired:
		return "verification_required"
	default:
		return "generic"
	}
}

// Error is returned by every failing store operation
type Error struct {
	Class   Class
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify translates a collaborator failure into a store error.
// fallback is used when the backend gave no usable message.
func classify(err error, fallback string) *Error {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr
	}

	apiErr, ok := apierror.As(err)
	switch {
	case ok && apiErr.VerificationRequired:
		return &Error{Class: ClassVerificationRequired, Message: MsgVerifyAccount, Status: apiErr.Status, Err: err}
	case apierror.IsUnauthorized(err):
		return &Error{Class: ClassAuthenticationRequired, Message: MsgSessionExpired, Status: apiErr.Status, Err: err}
	case ok && apiErr.Status != 0 && apiErr.Message != "":
		return &Error{Class: ClassGeneric, Message: apiErr.Message, Status: apiErr.Status, Err: err}
	default:
		return &Error{Class: ClassGeneric, Message: fallback, Err: err}
	}
}

func unavailableMessage(dropped int) string {
	if dropped == 1 {
		return msgUnavailableOne
	}
	return fmt.Sprintf(msgUnavailableCount, dropped)
}
