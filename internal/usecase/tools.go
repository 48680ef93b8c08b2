// File: internal/usecase/tools.go
package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/adapter"
	"telegram-store-consultant/internal/infra/logging"
	"telegram-store-consultant/internal/infra/metrics"
)

// TurnEffect is a side signal a tool raises for the orchestrator beyond
// its JSON payload: a clarification question that must reach the user
// verbatim, a product list to render as a carousel, or a photo to attach.
type TurnEffect struct {
	Clarification string
	Carousel      []*model.Product
	NoExactMatch  bool
	Photo         string
}

type toolFunc func(ctx context.Context, sess *model.ConsultantSession, raw json.RawMessage) (any, *TurnEffect, error)

type registeredTool struct {
	def adapter.ToolDef
	run toolFunc
}

// ToolRegistry is the fixed dispatch table offered to the model. The set
// of tools is closed at construction; dispatch never mutates it.
type ToolRegistry struct {
	order []string
	tools map[string]registeredTool
	log   *zerolog.Logger
}

func NewToolRegistry(
	catalog CatalogUseCase,
	carts CartUseCase,
	profiles ProfileUseCase,
	search SearchUseCase,
	checkout CheckoutUseCase,
	log *zerolog.Logger,
) *ToolRegistry {
	r := &ToolRegistry{tools: make(map[string]registeredTool), log: log}

	r.register(adapter.ToolDef{
		Name:        "get_products",
		Description: "Полный каталог магазина: категории, подкатегории и товары с ценами.",
		Parameters:  objectSchema(nil, nil),
	}, func(ctx context.Context, _ *model.ConsultantSession, _ json.RawMessage) (any, *TurnEffect, error) {
		res, err := catalog.GetProducts(ctx)
		return res, nil, err
	})

	r.register(adapter.ToolDef{
		Name:        "get_product_details",
		Description: "Подробная информация о товаре по его точному названию: описание, цена, цвета, размеры, фото.",
		Parameters: objectSchema(map[string]any{
			"name": map[string]any{"type": "string", "description": "Точное название товара"},
		}, []string{"name"}),
	}, func(ctx context.Context, _ *model.ConsultantSession, raw json.RawMessage) (any, *TurnEffect, error) {
		var args struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return badArgs(err), nil, nil
		}
		res, err := catalog.GetProductDetails(ctx, args.Name)
		if err != nil {
			return nil, nil, err
		}
		var eff *TurnEffect
		if res.Error == "" && len(res.Photos) > 0 {
			eff = &TurnEffect{Photo: res.Photos[0]}
		}
		return res, eff, nil
	})

	r.register(adapter.ToolDef{
		Name:        "filter_products",
		Description: "Подбор товаров по свободному описанию покупателя (например «что-нибудь тёплое на осень»).",
		Parameters: objectSchema(map[string]any{
			"query": map[string]any{"type": "string", "description": "Запрос покупателя своими словами"},
		}, []string{"query"}),
	}, func(ctx context.Context, sess *model.ConsultantSession, raw json.RawMessage) (any, *TurnEffect, error) {
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return badArgs(err), nil, nil
		}
		res, err := search.FilterProducts(ctx, sess, args.Query)
		if err != nil {
			return nil, nil, err
		}
		eff, err := r.filterEffect(ctx, catalog, res)
		if err != nil {
			return nil, nil, err
		}
		return res, eff, nil
	})

	r.register(adapter.ToolDef{
		Name:        "get_related_products",
		Description: "До трёх товаров, дополняющих указанный (по точному названию).",
		Parameters: objectSchema(map[string]any{
			"name": map[string]any{"type": "string", "description": "Точное название товара"},
		}, []string{"name"}),
	}, func(ctx context.Context, _ *model.ConsultantSession, raw json.RawMessage) (any, *TurnEffect, error) {
		var args struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return badArgs(err), nil, nil
		}
		res, err := search.RelatedProducts(ctx, args.Name)
		return res, nil, err
	})

	r.register(adapter.ToolDef{
		Name:        "add_to_cart",
		Description: "Добавить товар в корзину. Количество обязательно; цвет и размер обязательны, если есть у товара.",
		Parameters: objectSchema(map[string]any{
			"name":     map[string]any{"type": "string", "description": "Точное название товара"},
			"quantity": map[string]any{"type": "integer", "description": "Количество, минимум 1"},
			"color":    map[string]any{"type": "string", "description": "Выбранный цвет, если у товара есть цвета"},
			"size":     map[string]any{"type": "string", "description": "Выбранный размер, если у товара есть размеры"},
		}, []string{"name", "quantity"}),
	}, func(ctx context.Context, sess *model.ConsultantSession, raw json.RawMessage) (any, *TurnEffect, error) {
		var args struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
			Color    string `json:"color"`
			Size     string `json:"size"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return badArgs(err), nil, nil
		}
		res, err := carts.AddToCart(ctx, sess.UserID, args.Name, args.Quantity, args.Color, args.Size)
		return res, nil, err
	})

	r.register(adapter.ToolDef{
		Name:        "get_user_info",
		Description: "Сохранённые данные покупателя: ФИО, телефон, адрес.",
		Parameters:  objectSchema(nil, nil),
	}, func(ctx context.Context, sess *model.ConsultantSession, _ json.RawMessage) (any, *TurnEffect, error) {
		res, err := profiles.GetUserInfo(ctx, sess.UserID)
		return res, nil, err
	})

	r.register(adapter.ToolDef{
		Name:        "update_user_info",
		Description: "Обновить данные покупателя. Передавай только поля, которые покупатель назвал.",
		Parameters: objectSchema(map[string]any{
			"full_name": map[string]any{"type": "string"},
			"phone":     map[string]any{"type": "string"},
			"address":   map[string]any{"type": "string"},
		}, nil),
	}, func(ctx context.Context, sess *model.ConsultantSession, raw json.RawMessage) (any, *TurnEffect, error) {
		var args struct {
			FullName string `json:"full_name"`
			Phone    string `json:"phone"`
			Address  string `json:"address"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return badArgs(err), nil, nil
		}
		res, err := profiles.UpdateUserInfo(ctx, sess.UserID, args.FullName, args.Phone, args.Address)
		return res, nil, err
	})

	r.register(adapter.ToolDef{
		Name:        "complete_order",
		Description: "Оформить заказ из корзины. Вызывай с теми данными, которые покупатель уже назвал; инструмент скажет, чего не хватает.",
		Parameters: objectSchema(map[string]any{
			"delivery":  map[string]any{"type": "boolean", "description": "true — доставка, false — самовывоз"},
			"full_name": map[string]any{"type": "string"},
			"phone":     map[string]any{"type": "string"},
			"address":   map[string]any{"type": "string"},
		}, nil),
	}, func(ctx context.Context, sess *model.ConsultantSession, raw json.RawMessage) (any, *TurnEffect, error) {
		var args CompleteOrderArgs
		if err := json.Unmarshal(raw, &args); err != nil {
			return badArgs(err), nil, nil
		}
		res, err := checkout.CompleteOrder(ctx, sess, args)
		return res, nil, err
	})

	r.register(adapter.ToolDef{
		Name:        "verify_user_data",
		Description: "Подтвердить или исправить сохранённые данные покупателя при оформлении заказа.",
		Parameters: objectSchema(map[string]any{
			"is_correct": map[string]any{"type": "boolean", "description": "true, если покупатель подтвердил данные"},
			"delivery":   map[string]any{"type": "boolean"},
			"full_name":  map[string]any{"type": "string", "description": "Исправленное ФИО, если данные неверны"},
			"phone":      map[string]any{"type": "string"},
			"address":    map[string]any{"type": "string"},
		}, []string{"is_correct"}),
	}, func(ctx context.Context, sess *model.ConsultantSession, raw json.RawMessage) (any, *TurnEffect, error) {
		var args VerifyUserDataArgs
		if err := json.Unmarshal(raw, &args); err != nil {
			return badArgs(err), nil, nil
		}
		res, err := checkout.VerifyUserData(ctx, sess, args)
		return res, nil, err
	})

	return r
}

func (r *ToolRegistry) register(def adapter.ToolDef, run toolFunc) {
	r.order = append(r.order, def.Name)
	r.tools[def.Name] = registeredTool{def: def, run: run}
}

// Defs returns the tool schemas in registration order.
func (r *ToolRegistry) Defs() []adapter.ToolDef {
	out := make([]adapter.ToolDef, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].def)
	}
	return out
}

// Dispatch executes one tool call and returns the JSON payload for the
// model plus any effect for the orchestrator. Failures become error
// payloads; Dispatch itself never returns an error to the turn loop.
func (r *ToolRegistry) Dispatch(ctx context.Context, sess *model.ConsultantSession, call adapter.ToolCall) (string, *TurnEffect) {
	t, ok := r.tools[call.Name]
	if !ok {
		metrics.ToolExecuted(call.Name, "unknown")
		return errPayload(fmt.Sprintf("неизвестный инструмент: %s", call.Name)), nil
	}

	ctx = logging.WithTool(ctx, call.Name)
	raw := json.RawMessage(call.Arguments)
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	payload, effect, err := t.run(ctx, sess, raw)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Int64("tg_id", sess.UserID).Msg("tool execution failed")
		metrics.ToolExecuted(call.Name, "failure")
		return errPayload(msgGenericError), nil
	}

	b, err := json.Marshal(payload)
	if err != nil {
		r.log.Error().Err(err).Str("tool", call.Name).Msg("tool result marshal failed")
		metrics.ToolExecuted(call.Name, "failure")
		return errPayload(msgGenericError), nil
	}
	metrics.ToolExecuted(call.Name, "ok")
	return string(b), effect
}

// filterEffect maps a filter result onto its presentation effect,
// loading full products for carousel rendering.
func (r *ToolRegistry) filterEffect(ctx context.Context, catalog CatalogUseCase, res *FilterResult) (*TurnEffect, error) {
	switch res.Status {
	case FilterNeedsClarification:
		return &TurnEffect{Clarification: res.Question}, nil
	case FilterExactMatches:
		products, err := catalog.ProductsByIDs(ctx, rankedIDs(res.Matches))
		if err != nil {
			return nil, err
		}
		return &TurnEffect{Carousel: products}, nil
	case FilterNoExactMatch:
		if len(res.Alternatives) == 0 {
			return nil, nil
		}
		products, err := catalog.ProductsByIDs(ctx, rankedIDs(res.Alternatives))
		if err != nil {
			return nil, err
		}
		return &TurnEffect{Carousel: products, NoExactMatch: true}, nil
	}
	return nil, nil
}

func rankedIDs(ranked []RankedProduct) []int64 {
	ids := make([]int64, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.ID)
	}
	return ids
}

func objectSchema(props map[string]any, required []string) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func badArgs(err error) any {
	return map[string]string{"error": fmt.Sprintf("некорректные аргументы: %v", err)}
}

func errPayload(msg string) string {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}
