// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/repository"
	"telegram-store-consultant/internal/infra/logging"
	"telegram-store-consultant/internal/infra/metrics"
)

var _ CheckoutUseCase = (*checkoutUC)(nil)

// CheckoutUseCase is the resumable order finalizer. Every call makes
// whatever progress the supplied arguments allow, persists the answers it
// received, and either asks for exactly one missing thing or persists the
// order group. The cart is only cleared after a successful persist.
type CheckoutUseCase interface {
	CompleteOrder(ctx context.Context, sess *model.ConsultantSession, args CompleteOrderArgs) (*CheckoutResult, error)

	// VerifyUserData resolves the confirmation branch: is_correct resumes
	// finalization with the stored profile, otherwise the corrections are
	// applied first.
	VerifyUserData(ctx context.Context, sess *model.ConsultantSession, args VerifyUserDataArgs) (*CheckoutResult, error)
}

// CompleteOrderArgs carries whatever the customer has said so far. Nil
// Delivery means the choice has not been made in this call.
type CompleteOrderArgs struct {
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Delivery *bool  `json:"delivery,omitempty"`
}

type VerifyUserDataArgs struct {
	IsCorrect bool   `json:"is_correct"`
	FullName  string `json:"full_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Delivery  *bool  `json:"delivery,omitempty"`
}

type checkoutUC struct {
	carts    repository.CartStore
	profiles repository.CustomerProfileRepository
	orders   repository.OrderRepository
	tx       repository.TransactionManager
	log      *zerolog.Logger

	// newGroupID is swappable in tests.
	newGroupID func() string
}

func NewCheckoutUseCase(
	carts repository.CartStore,
	profiles repository.CustomerProfileRepository,
	orders repository.OrderRepository,
	tx repository.TransactionManager,
	log *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{
		carts:    carts,
		profiles: profiles,
		orders:   orders,
		tx:       tx,
		log:      log,
		newGroupID: func() string {
			return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
		},
	}
}

func (u *checkoutUC) CompleteOrder(ctx context.Context, sess *model.ConsultantSession, args CompleteOrderArgs) (*CheckoutResult, error) {
	defer logging.TraceDuration(u.log, "CheckoutUC.CompleteOrder")()
	return u.advance(ctx, sess, args, false)
}

func (u *checkoutUC) VerifyUserData(ctx context.Context, sess *model.ConsultantSession, args VerifyUserDataArgs) (*CheckoutResult, error) {
	// A rejection with no replacement values means the customer only said
	// the data is wrong. Nothing may be persisted until the corrections
	// arrive in a follow-up call.
	if !args.IsCorrect &&
		strings.TrimSpace(args.FullName) == "" &&
		strings.TrimSpace(args.Phone) == "" &&
		strings.TrimSpace(args.Address) == "" {
		return &CheckoutResult{State: CheckoutNeedVerification, Prompt: msgAskCorrections}, nil
	}
	return u.advance(ctx, sess, CompleteOrderArgs{
		FullName: args.FullName,
		Phone:    args.Phone,
		Address:  args.Address,
		Delivery: args.Delivery,
	}, true)
}

// advance walks the checkout states in order: empty cart, verification of
// previously stored data, delivery choice, then one missing profile field
// at a time, then persist. skipVerify marks the verification branch as
// already resolved.
func (u *checkoutUC) advance(ctx context.Context, sess *model.ConsultantSession, args CompleteOrderArgs, skipVerify bool) (*CheckoutResult, error) {
	cart, err := u.carts.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return &CheckoutResult{State: CheckoutEmptyCart, Error: msgEmptyCart}, nil
	}

	if sess.Checkout == nil {
		sess.Checkout = &model.PendingCheckout{}
	}
	pending := sess.Checkout
	if args.Delivery != nil {
		pending.Delivery = args.Delivery
	}

	profile, err := u.profiles.Find(ctx, nil, sess.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		profile = model.NewCustomerProfile(sess.UserID)
	}

	// Store answers as they arrive so a later call resumes instead of
	// re-asking.
	supplied := false
	if v := strings.TrimSpace(args.FullName); v != "" {
		profile.FullName = v
		supplied = true
	}
	if v := strings.TrimSpace(args.Phone); v != "" {
		profile.Phone = v
		supplied = true
	}
	if v := strings.TrimSpace(args.Address); v != "" {
		profile.Address = v
		supplied = true
	}
	if supplied {
		if err := u.profiles.Save(ctx, nil, profile); err != nil {
			return nil, err
		}
	}

	// A returning customer with a complete stored profile confirms it
	// instead of dictating everything again.
	deliveryForCheck := true
	if pending.Delivery != nil {
		deliveryForCheck = *pending.Delivery
	}
	if !skipVerify && !supplied && profile.IsComplete(deliveryForCheck) {
		return &CheckoutResult{
			State:          CheckoutNeedVerification,
			UserDataExists: true,
			FullName:       profile.FullName,
			Phone:          profile.Phone,
			Address:        profile.Address,
			CartSummary:    summarize(cart),
			Prompt:         "Проверьте, пожалуйста, данные для заказа. Всё верно?",
		}, nil
	}

	if pending.Delivery == nil {
		return &CheckoutResult{State: CheckoutNeedDelivery, Prompt: msgAskDelivery}, nil
	}

	if missing := profile.MissingFields(*pending.Delivery); len(missing) > 0 {
		state, prompt := askFor(missing[0])
		return &CheckoutResult{State: state, Prompt: prompt}, nil
	}

	return u.persist(ctx, sess, cart, profile, *pending.Delivery)
}

func askFor(field string) (CheckoutState, string) {
	switch field {
	case model.FieldFullName:
		return CheckoutNeedName, msgAskName
	case model.FieldPhone:
		return CheckoutNeedPhone, msgAskPhone
	default:
		return CheckoutNeedAddress, msgAskAddress
	}
}

func (u *checkoutUC) persist(ctx context.Context, sess *model.ConsultantSession, cart *model.Cart, profile *model.CustomerProfile, delivery bool) (*CheckoutResult, error) {
	address := ""
	if delivery {
		address = profile.Address
	}
	group := model.NewOrderGroup(u.newGroupID(), cart, profile, delivery, address)

	err := u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		return u.orders.SaveGroup(ctx, tx, group)
	})
	if err != nil {
		// Cart stays intact so the customer can retry.
		return nil, fmt.Errorf("persist order group %s: %w", group.ID, err)
	}

	summary := summarize(cart)
	if err := u.carts.Clear(ctx, sess.UserID); err != nil {
		u.log.Error().Err(err).Int64("tg_id", sess.UserID).Str("group", group.ID).Msg("cart clear after checkout failed")
	}
	sess.Checkout = nil

	metrics.OrderGroupPersisted(len(group.Orders), group.TotalAmount)
	u.log.Info().Int64("tg_id", sess.UserID).Str("group", group.ID).
		Int("items", len(group.Orders)).Float64("total", group.TotalAmount).
		Str("phone", logging.Redact(profile.Phone)).Msg("order group persisted")

	return &CheckoutResult{
		State:        CheckoutPersisted,
		OrderGroupID: group.ID,
		CartSummary:  summary,
	}, nil
}
