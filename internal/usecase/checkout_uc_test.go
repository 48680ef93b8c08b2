// File: internal/usecase/checkout_uc_test.go
package usecase

import (
	"context"
	"testing"

	"telegram-store-consultant/internal/domain/model"
)

type checkoutEnv struct {
	uc       *checkoutUC
	carts    *memCartStore
	profiles *memProfileRepo
	orders   *memOrderRepo
	sess     *model.ConsultantSession
}

func newCheckoutEnv(t *testing.T, userID int64) *checkoutEnv {
	t.Helper()
	env := &checkoutEnv{
		carts:    newMemCartStore(),
		profiles: newMemProfileRepo(),
		orders:   newMemOrderRepo(),
		sess:     model.NewConsultantSession(userID, ""),
	}
	env.uc = NewCheckoutUseCase(env.carts, env.profiles, env.orders, &fakeTxManager{}, testLogger())
	env.uc.newGroupID = func() string { return "G1" }
	return env
}

func (e *checkoutEnv) seedCart(t *testing.T, items ...model.CartItem) {
	t.Helper()
	cart := model.NewCart(e.sess.UserID)
	for _, it := range items {
		cart.Add(it)
	}
	if err := e.carts.Save(context.Background(), cart); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
}

func jacketItem(qty int) model.CartItem {
	return model.NewCartItem(sampleJacket(), qty, model.Color{ID: 1, Name: "Чёрный"}, model.Size{ID: 1, Value: "42"})
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newCheckoutEnv(t, 10)

	res, err := env.uc.CompleteOrder(context.Background(), env.sess, CompleteOrderArgs{})
	if err != nil {
		t.Fatalf("CompleteOrder: %v", err)
	}
	if res.State != CheckoutEmptyCart || res.Error != "Корзина пуста" {
		t.Fatalf("res = %+v", res)
	}
}

func TestCheckoutAsksOneFieldPerCall(t *testing.T) {
	env := newCheckoutEnv(t, 10)
	env.seedCart(t, jacketItem(1))
	ctx := context.Background()
	delivery := true

	steps := []struct {
		args CompleteOrderArgs
		want CheckoutState
	}{
		{CompleteOrderArgs{}, CheckoutNeedDelivery},
		{CompleteOrderArgs{Delivery: &delivery}, CheckoutNeedName},
		{CompleteOrderArgs{FullName: "Иванов Иван"}, CheckoutNeedPhone},
		{CompleteOrderArgs{Phone: "+79990001122"}, CheckoutNeedAddress},
		{CompleteOrderArgs{Address: "Москва, Тверская 1"}, CheckoutPersisted},
	}
	for i, step := range steps {
		res, err := env.uc.CompleteOrder(ctx, env.sess, step.args)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if res.State != step.want {
			t.Fatalf("step %d state = %s, want %s", i, res.State, step.want)
		}
	}

	if len(env.orders.groups) != 1 {
		t.Fatalf("groups persisted = %d", len(env.orders.groups))
	}
	g := env.orders.groups[0]
	if g.FullName != "Иванов Иван" || g.Phone != "+79990001122" || g.Address != "Москва, Тверская 1" {
		t.Fatalf("group details = %+v", g)
	}
}

func TestCheckoutIncrementalEqualsOneShot(t *testing.T) {
	ctx := context.Background()
	delivery := true

	one := newCheckoutEnv(t, 10)
	one.seedCart(t, jacketItem(1))
	res, err := one.uc.CompleteOrder(ctx, one.sess, CompleteOrderArgs{
		Delivery: &delivery,
		FullName: "Иванов Иван",
		Phone:    "+79990001122",
		Address:  "Москва, Тверская 1",
	})
	if err != nil || res.State != CheckoutPersisted {
		t.Fatalf("one-shot: res=%+v err=%v", res, err)
	}

	inc := newCheckoutEnv(t, 10)
	inc.seedCart(t, jacketItem(1))
	for _, args := range []CompleteOrderArgs{
		{Delivery: &delivery},
		{FullName: "Иванов Иван"},
		{Phone: "+79990001122"},
		{Address: "Москва, Тверская 1"},
	} {
		if _, err := inc.uc.CompleteOrder(ctx, inc.sess, args); err != nil {
			t.Fatalf("incremental: %v", err)
		}
	}

	a, b := one.orders.groups, inc.orders.groups
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("groups: one-shot=%d incremental=%d", len(a), len(b))
	}
	ga, gb := a[0], b[0]
	if ga.FullName != gb.FullName || ga.Phone != gb.Phone || ga.Address != gb.Address ||
		ga.Delivery != gb.Delivery || ga.TotalAmount != gb.TotalAmount || len(ga.Orders) != len(gb.Orders) {
		t.Fatalf("persisted groups differ:\none-shot:    %+v\nincremental: %+v", ga, gb)
	}
}

func TestCheckoutVerifyBranchForReturningCustomer(t *testing.T) {
	env := newCheckoutEnv(t, 10)
	env.seedCart(t, jacketItem(1))
	ctx := context.Background()

	profile := model.NewCustomerProfile(10)
	profile.FullName = "Иванов Иван"
	profile.Phone = "+79990001122"
	profile.Address = "Москва, Тверская 1"
	if err := env.profiles.Save(ctx, nil, profile); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	delivery := true
	res, err := env.uc.CompleteOrder(ctx, env.sess, CompleteOrderArgs{Delivery: &delivery})
	if err != nil {
		t.Fatalf("CompleteOrder: %v", err)
	}
	if res.State != CheckoutNeedVerification || !res.UserDataExists {
		t.Fatalf("res = %+v, want verification branch", res)
	}
	if res.CartSummary == nil || res.CartSummary.TotalAmount != 100 {
		t.Fatalf("cart_summary = %+v, want total 100", res.CartSummary)
	}
	if len(env.orders.groups) != 0 {
		t.Fatal("order persisted before confirmation")
	}

	res, err = env.uc.VerifyUserData(ctx, env.sess, VerifyUserDataArgs{IsCorrect: true, Delivery: &delivery})
	if err != nil {
		t.Fatalf("VerifyUserData: %v", err)
	}
	if res.State != CheckoutPersisted || res.OrderGroupID != "G1" {
		t.Fatalf("res = %+v", res)
	}

	g := env.orders.groups[0]
	if g.TotalAmount != 100 || len(g.Orders) != 1 {
		t.Fatalf("group = %+v", g)
	}
	if g.Orders[0].Status != model.OrderStatusPending {
		t.Fatalf("status = %q", g.Orders[0].Status)
	}
	if g.Orders[0].ID != "G1-1" {
		t.Fatalf("order id = %q", g.Orders[0].ID)
	}

	cart, _ := env.carts.Get(ctx, 10)
	if !cart.IsEmpty() {
		t.Fatal("cart not cleared after persist")
	}
	if env.sess.Checkout != nil {
		t.Fatal("pending checkout not reset")
	}
}

func TestCheckoutVerifyCorrections(t *testing.T) {
	env := newCheckoutEnv(t, 10)
	env.seedCart(t, jacketItem(1))
	ctx := context.Background()

	profile := model.NewCustomerProfile(10)
	profile.FullName = "Иванов Иван"
	profile.Phone = "+70000000000"
	profile.Address = "Москва, Тверская 1"
	_ = env.profiles.Save(ctx, nil, profile)

	delivery := true
	res, err := env.uc.VerifyUserData(ctx, env.sess, VerifyUserDataArgs{
		IsCorrect: false,
		Phone:     "+79991112233",
		Delivery:  &delivery,
	})
	if err != nil {
		t.Fatalf("VerifyUserData: %v", err)
	}
	if res.State != CheckoutPersisted {
		t.Fatalf("state = %s", res.State)
	}
	if env.orders.groups[0].Phone != "+79991112233" {
		t.Fatalf("corrected phone not used: %+v", env.orders.groups[0])
	}
}

func TestCheckoutVerifyRejectionWithoutCorrectionsAsks(t *testing.T) {
	env := newCheckoutEnv(t, 10)
	env.seedCart(t, jacketItem(1))
	ctx := context.Background()

	profile := model.NewCustomerProfile(10)
	profile.FullName = "Иванов Иван"
	profile.Phone = "+70000000000"
	profile.Address = "Москва, Тверская 1"
	_ = env.profiles.Save(ctx, nil, profile)

	delivery := true
	res, err := env.uc.VerifyUserData(ctx, env.sess, VerifyUserDataArgs{IsCorrect: false, Delivery: &delivery})
	if err != nil {
		t.Fatalf("VerifyUserData: %v", err)
	}
	if res.State != CheckoutNeedVerification || res.Prompt == "" {
		t.Fatalf("res = %+v, want a correction prompt", res)
	}
	if len(env.orders.groups) != 0 {
		t.Fatal("order persisted with data the customer rejected")
	}

	p, _ := env.profiles.Find(ctx, nil, 10)
	if p.Phone != "+70000000000" {
		t.Fatalf("stored profile changed without corrections: %+v", p)
	}

	// Corrections in the follow-up call resume finalization.
	res, err = env.uc.VerifyUserData(ctx, env.sess, VerifyUserDataArgs{
		IsCorrect: false,
		Phone:     "+79991112233",
		Delivery:  &delivery,
	})
	if err != nil {
		t.Fatalf("VerifyUserData: %v", err)
	}
	if res.State != CheckoutPersisted {
		t.Fatalf("state = %s", res.State)
	}
	if env.orders.groups[0].Phone != "+79991112233" {
		t.Fatalf("group = %+v", env.orders.groups[0])
	}
}

func TestCheckoutPickupSkipsAddress(t *testing.T) {
	env := newCheckoutEnv(t, 10)
	env.seedCart(t, jacketItem(2))
	ctx := context.Background()
	pickup := false

	res, err := env.uc.CompleteOrder(ctx, env.sess, CompleteOrderArgs{
		Delivery: &pickup,
		FullName: "Петров Пётр",
		Phone:    "+79990001122",
	})
	if err != nil {
		t.Fatalf("CompleteOrder: %v", err)
	}
	if res.State != CheckoutPersisted {
		t.Fatalf("state = %s, want persisted", res.State)
	}
	g := env.orders.groups[0]
	if g.Delivery || g.Address != "" {
		t.Fatalf("pickup group = %+v", g)
	}
	if g.TotalAmount != 200 {
		t.Fatalf("total = %v", g.TotalAmount)
	}
}

func TestCheckoutPersistFailureKeepsCart(t *testing.T) {
	env := newCheckoutEnv(t, 10)
	env.seedCart(t, jacketItem(1))
	env.orders.saveErr = context.DeadlineExceeded
	ctx := context.Background()
	delivery := false

	_, err := env.uc.CompleteOrder(ctx, env.sess, CompleteOrderArgs{
		Delivery: &delivery,
		FullName: "Иванов Иван",
		Phone:    "+79990001122",
	})
	if err == nil {
		t.Fatal("expected persist error")
	}

	cart, _ := env.carts.Get(ctx, 10)
	if cart.IsEmpty() {
		t.Fatal("cart lost on failed persist")
	}
	if len(env.orders.groups) != 0 {
		t.Fatal("partial group persisted")
	}
}
