// File: internal/application/bot_facade.go
package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/repository"
	"telegram-store-consultant/internal/usecase"
)

var _ StoreBotService = (*BotFacade)(nil)

// StoreBotService is the surface the telegram adapter talks to. One
// method per user intent; the adapter owns rendering, the facade owns
// state.
type StoreBotService interface {
	HandleStart(ctx context.Context, userID int64, firstName string) (string, error)
	HandleMessage(ctx context.Context, userID int64, text string) (*usecase.ConsultantReply, error)
	HandleCartView(ctx context.Context, userID int64) (string, error)
	HandleCartClear(ctx context.Context, userID int64) (string, error)

	CurrentCarousel(ctx context.Context, userID int64) (*CarouselView, error)
	MoveCarousel(ctx context.Context, userID int64, delta int) (*CarouselView, error)
	PickCurrent(ctx context.Context, userID int64) (*SelectionStep, error)
	ChooseColor(ctx context.Context, userID int64, color string) (*SelectionStep, error)
	ChooseSize(ctx context.Context, userID int64, size string) (*SelectionStep, error)
	SetQuantity(ctx context.Context, userID int64, quantity int) (*SelectionStep, error)
}

// CarouselView is one card of the product carousel.
type CarouselView struct {
	Product *model.Product
	Pos     int // zero-based
	Total   int
}

// SelectionStep is the next prompt of the variant selection flow, or the
// confirmation once the item landed in the cart.
type SelectionStep struct {
	Field   string // "color" | "size" | "quantity" | ""
	Prompt  string
	Options []string
	Done    bool
	Text    string // confirmation when Done
}

type BotFacade struct {
	consultant usecase.ConsultantUseCase
	catalog    usecase.CatalogUseCase
	cart       usecase.CartUseCase
	profile    usecase.ProfileUseCase
	sessions   repository.SessionStore
	log        *zerolog.Logger
}

func NewBotFacade(
	consultant usecase.ConsultantUseCase,
	catalog usecase.CatalogUseCase,
	cart usecase.CartUseCase,
	profile usecase.ProfileUseCase,
	sessions repository.SessionStore,
	log *zerolog.Logger,
) *BotFacade {
	return &BotFacade{
		consultant: consultant,
		catalog:    catalog,
		cart:       cart,
		profile:    profile,
		sessions:   sessions,
		log:        log,
	}
}

func (f *BotFacade) HandleStart(ctx context.Context, userID int64, firstName string) (string, error) {
	// Ensures the profile row exists for later checkout calls.
	if _, err := f.profile.GetUserInfo(ctx, userID); err != nil {
		return "", err
	}
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "друг"
	}
	return fmt.Sprintf(
		"Здравствуйте, %s! Я AI-консультант магазина. Опишите, что вы ищете, — например «что-нибудь тёплое на осень» — и я подберу варианты.\n\nКоманды: /cart — корзина, /clear — начать заново.",
		name), nil
}

func (f *BotFacade) HandleMessage(ctx context.Context, userID int64, text string) (*usecase.ConsultantReply, error) {
	return f.consultant.HandleMessage(ctx, userID, text)
}

func (f *BotFacade) HandleCartView(ctx context.Context, userID int64) (string, error) {
	summary, err := f.cart.View(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(summary.Items) == 0 {
		return "Корзина пуста", nil
	}
	var sb strings.Builder
	sb.WriteString("Ваша корзина:\n")
	for i, it := range summary.Items {
		fmt.Fprintf(&sb, "%d. %s", i+1, it.ProductName)
		if it.Color != "" {
			fmt.Fprintf(&sb, ", цвет %s", it.Color)
		}
		if it.Size != "" {
			fmt.Fprintf(&sb, ", размер %s", it.Size)
		}
		fmt.Fprintf(&sb, " — %d шт. × %.0f руб. = %.0f руб.\n", it.Quantity, it.Price, it.Total)
	}
	fmt.Fprintf(&sb, "\nИтого: %.0f руб.", summary.TotalAmount)
	return sb.String(), nil
}

// HandleCartClear empties the cart and drops the conversation so the
// customer starts from a clean slate.
func (f *BotFacade) HandleCartClear(ctx context.Context, userID int64) (string, error) {
	if err := f.cart.Clear(ctx, userID); err != nil {
		return "", err
	}
	if err := f.consultant.Reset(ctx, userID); err != nil {
		f.log.Warn().Err(err).Int64("tg_id", userID).Msg("session reset failed")
	}
	return "Корзина очищена. Начнём заново!", nil
}

func (f *BotFacade) CurrentCarousel(ctx context.Context, userID int64) (*CarouselView, error) {
	return f.MoveCarousel(ctx, userID, 0)
}

// MoveCarousel shifts the carousel position with wrap-around and returns
// the card now in view.
func (f *BotFacade) MoveCarousel(ctx context.Context, userID int64, delta int) (*CarouselView, error) {
	sess, err := f.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	n := len(sess.CurrentProducts)
	if n == 0 {
		return nil, domain.ErrNotFound
	}
	pos := ((sess.CarouselPos+delta)%n + n) % n
	if pos != sess.CarouselPos {
		sess.CarouselPos = pos
		if err := f.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
	}

	products, err := f.catalog.ProductsByIDs(ctx, sess.CurrentProducts[pos:pos+1])
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.ErrNotFound
	}
	return &CarouselView{Product: products[0], Pos: pos, Total: n}, nil
}

// PickCurrent starts the selection flow for the card in view.
func (f *BotFacade) PickCurrent(ctx context.Context, userID int64) (*SelectionStep, error) {
	sess, err := f.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	n := len(sess.CurrentProducts)
	if n == 0 || sess.CarouselPos >= n {
		return nil, domain.ErrNotFound
	}
	sess.Selected = &model.PendingSelection{ProductID: sess.CurrentProducts[sess.CarouselPos]}
	if err := f.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return f.nextStep(ctx, sess)
}

func (f *BotFacade) ChooseColor(ctx context.Context, userID int64, color string) (*SelectionStep, error) {
	return f.fill(ctx, userID, func(sel *model.PendingSelection) { sel.Color = color })
}

func (f *BotFacade) ChooseSize(ctx context.Context, userID int64, size string) (*SelectionStep, error) {
	return f.fill(ctx, userID, func(sel *model.PendingSelection) { sel.Size = size })
}

func (f *BotFacade) SetQuantity(ctx context.Context, userID int64, quantity int) (*SelectionStep, error) {
	return f.fill(ctx, userID, func(sel *model.PendingSelection) { sel.Quantity = quantity })
}

func (f *BotFacade) fill(ctx context.Context, userID int64, apply func(*model.PendingSelection)) (*SelectionStep, error) {
	sess, err := f.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess.Selected == nil {
		return nil, domain.ErrNotFound
	}
	apply(sess.Selected)
	if err := f.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return f.nextStep(ctx, sess)
}

// nextStep asks for the first unresolved dimension of the pending
// selection; when everything is known it adds the item to the cart.
func (f *BotFacade) nextStep(ctx context.Context, sess *model.ConsultantSession) (*SelectionStep, error) {
	sel := sess.Selected
	products, err := f.catalog.ProductsByIDs(ctx, []int64{sel.ProductID})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.ErrNotFound
	}
	p := products[0]

	if p.HasColors() && sel.Color == "" {
		return &SelectionStep{
			Field:   "color",
			Prompt:  fmt.Sprintf("Выберите цвет для «%s»:", p.Name),
			Options: p.ColorNames(),
		}, nil
	}
	if p.HasSizes() && sel.Size == "" {
		return &SelectionStep{
			Field:   "size",
			Prompt:  fmt.Sprintf("Выберите размер для «%s»:", p.Name),
			Options: p.SizeValues(),
		}, nil
	}
	if sel.Quantity <= 0 {
		return &SelectionStep{
			Field:   "quantity",
			Prompt:  "Сколько штук добавить?",
			Options: []string{"1", "2", "3", "4", "5"},
		}, nil
	}

	res, err := f.cart.AddToCart(ctx, sess.UserID, p.Name, sel.Quantity, sel.Color, sel.Size)
	if err != nil {
		return nil, err
	}
	sess.Selected = nil
	if err := f.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	if res.Error != "" {
		return &SelectionStep{Done: true, Text: res.Error}, nil
	}
	if len(res.NeedsDetails) > 0 {
		// Selection state went stale (product variants changed mid-flow).
		return &SelectionStep{Done: true, Text: "Не получилось добавить товар, попробуйте выбрать его заново."}, nil
	}
	return &SelectionStep{
		Done: true,
		Text: fmt.Sprintf("Добавил «%s» в корзину. Товаров в корзине: %d, на сумму %.0f руб.", p.Name, res.CartCount, res.CartTotal),
	}, nil
}
