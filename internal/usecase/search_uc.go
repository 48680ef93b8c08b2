// File: internal/usecase/search_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/adapter"
	"telegram-store-consultant/internal/domain/ports/repository"
	"telegram-store-consultant/internal/infra/logging"
)

var _ SearchUseCase = (*searchUC)(nil)

// SearchUseCase matches free-form customer queries against the catalog.
type SearchUseCase interface {
	// FilterProducts answers a natural-language query. When the session
	// carries a pending refinement (the consultant just asked for a size
	// or color), the new input is merged into the remembered original
	// query before matching. The session is mutated, not persisted;
	// the caller saves it.
	FilterProducts(ctx context.Context, sess *model.ConsultantSession, query string) (*FilterResult, error)

	// RelatedProducts names up to three complementary catalog products.
	// A missing base product short-circuits without a model call.
	RelatedProducts(ctx context.Context, productName string) (*RelatedResult, error)
}

type searchUC struct {
	catalog repository.CatalogRepository
	ai      adapter.AIServiceAdapter
	model   string
	log     *zerolog.Logger
}

func NewSearchUseCase(catalog repository.CatalogRepository, ai adapter.AIServiceAdapter, modelName string, log *zerolog.Logger) *searchUC {
	return &searchUC{catalog: catalog, ai: ai, model: modelName, log: log}
}

// selection is the shape the model is asked to return.
type selection struct {
	Exact []struct {
		ID     int64  `json:"id"`
		Reason string `json:"reason"`
	} `json:"exact"`
	Alternatives []struct {
		ID     int64  `json:"id"`
		Reason string `json:"reason"`
	} `json:"alternatives"`
	Subcategory string `json:"subcategory"`
}

const selectionSystemPrompt = `Ты подбираешь товары из каталога магазина одежды по запросу покупателя.
Верни строго JSON вида {"exact": [{"id": 1, "reason": "..."}], "alternatives": [{"id": 2, "reason": "..."}], "subcategory": "..."}.
В "exact" — товары, точно подходящие под запрос (до 5, по убыванию релевантности). Если точных нет, оставь "exact" пустым и положи в "alternatives" близкие товары из подходящей подкатегории, а её название — в "subcategory".
Используй только id из каталога ниже. Ничего не выдумывай.`

func (u *searchUC) FilterProducts(ctx context.Context, sess *model.ConsultantSession, query string) (*FilterResult, error) {
	defer logging.TraceDuration(u.log, "SearchUC.FilterProducts")()
	query = strings.TrimSpace(query)

	// Refinement merge: a pending clarification turns "42" into
	// "<original query> размер 42". A merged query never triggers another
	// clarification round; variant details are settled at add-to-cart.
	refined := false
	if sc := sess.SearchContext; sc != nil && sc.WaitingFor != "" {
		refined = true
		switch sc.WaitingFor {
		case "size":
			sc.Size = query
			query = sc.OriginalQuery + " размер " + query
		case "color":
			sc.Color = query
			query = sc.OriginalQuery + " цвет " + query
		}
		sc.OriginalQuery = query
		sc.WaitingFor = ""
	}

	products, err := u.catalog.ListProducts(ctx, nil)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	sel, err := u.selectProducts(ctx, query, products)
	if err != nil {
		return nil, err
	}

	var matches []*model.Product
	var ranked []RankedProduct
	for _, e := range sel.Exact {
		p, ok := byID[e.ID]
		if !ok {
			continue
		}
		matches = append(matches, p)
		ranked = append(ranked, RankedProduct{ID: p.ID, Name: p.Name, Price: p.Price, Reason: e.Reason})
		if len(ranked) == 5 {
			break
		}
	}

	if len(matches) > 0 {
		if dim, options := u.missingDimension(query, matches); dim != "" && !refined {
			sess.SearchContext = &model.SearchContext{OriginalQuery: query, WaitingFor: dim}
			label := "размер"
			if dim == "color" {
				label = "цвет"
			}
			return &FilterResult{
				Status:           FilterNeedsClarification,
				MissingDimension: dim,
				Options:          options,
				Question:         fmt.Sprintf("Какой %s вам нужен? Доступные варианты: %s", label, strings.Join(options, ", ")),
			}, nil
		}

		sess.SearchContext = nil
		res := &FilterResult{Status: FilterExactMatches, Matches: ranked}
		res.Related = u.relatedTo(ctx, matches[0], products)
		return res, nil
	}

	// No exact matches: offer alternatives from the subcategory the model
	// judged closest.
	res := &FilterResult{Status: FilterNoExactMatch}
	for _, a := range sel.Alternatives {
		p, ok := byID[a.ID]
		if !ok {
			continue
		}
		if sel.Subcategory != "" && !strings.EqualFold(p.Subcategory, sel.Subcategory) {
			continue
		}
		res.Alternatives = append(res.Alternatives, RankedProduct{ID: p.ID, Name: p.Name, Price: p.Price, Reason: a.Reason})
		if len(res.Alternatives) == 5 {
			break
		}
	}
	sess.SearchContext = nil
	return res, nil
}

func (u *searchUC) selectProducts(ctx context.Context, query string, products []*model.Product) (*selection, error) {
	var sb strings.Builder
	sb.WriteString("Каталог:\n")
	for _, p := range products {
		fmt.Fprintf(&sb, "id=%d | %s | %s / %s | %.0f руб.", p.ID, p.Name, p.Category, p.Subcategory, p.Price)
		if p.HasColors() {
			fmt.Fprintf(&sb, " | цвета: %s", strings.Join(p.ColorNames(), ", "))
		}
		if p.HasSizes() {
			fmt.Fprintf(&sb, " | размеры: %s", strings.Join(p.SizeValues(), ", "))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nЗапрос покупателя: %s", query)

	raw, err := u.ai.ChatJSON(ctx, u.model, []adapter.Message{
		{Role: model.RoleSystem, Content: selectionSystemPrompt},
		{Role: model.RoleUser, Content: sb.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("filter products: %w", err)
	}
	var sel selection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		u.log.Warn().Err(err).Str("raw", raw).Msg("unparseable selection from model")
		return nil, fmt.Errorf("filter products: %w: %v", domain.ErrInvalidArgument, err)
	}
	return &sel, nil
}

// missingDimension decides whether the matches need a clarifying question
// before they can be shown: every match supports the dimension, the query
// does not pin it, and there is more than one option to choose from.
// Size is asked before color.
func (u *searchUC) missingDimension(query string, matches []*model.Product) (string, []string) {
	q := strings.ToLower(query)

	if !strings.Contains(q, "размер") {
		all := true
		for _, p := range matches {
			if !p.HasSizes() {
				all = false
				break
			}
		}
		if all {
			if options := unionOptions(matches, func(p *model.Product) []string { return p.SizeValues() }); len(options) > 1 {
				return "size", options
			}
		}
	}

	if !strings.Contains(q, "цвет") {
		all := true
		for _, p := range matches {
			if !p.HasColors() {
				all = false
				break
			}
		}
		if all {
			if options := unionOptions(matches, func(p *model.Product) []string { return p.ColorNames() }); len(options) > 1 {
				return "color", options
			}
		}
	}

	return "", nil
}

func unionOptions(matches []*model.Product, pick func(*model.Product) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range matches {
		for _, v := range pick(p) {
			key := strings.ToLower(v)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func (u *searchUC) RelatedProducts(ctx context.Context, productName string) (*RelatedResult, error) {
	p, err := u.catalog.FindByName(ctx, nil, productName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &RelatedResult{Error: msgProductNotFound}, nil
		}
		return nil, err
	}
	products, err := u.catalog.ListProducts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &RelatedResult{Related: u.relatedTo(ctx, p, products)}, nil
}

// relatedTo asks the model for complements and keeps catalog products
// whose names appear in the reply. Best effort: a model failure returns
// an empty list, never an error.
func (u *searchUC) relatedTo(ctx context.Context, base *model.Product, products []*model.Product) []ProductSummary {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Товар: %s (%s / %s).\nКаталог: ", base.Name, base.Category, base.Subcategory)
	for i, p := range products {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(p.Name)
	}
	sb.WriteString(".\nНазови до трёх товаров из каталога, которые дополняют этот товар. Перечисли только названия.")

	reply, err := u.ai.Chat(ctx, u.model, []adapter.Message{
		{Role: model.RoleSystem, Content: "Ты консультант магазина одежды. Отвечай только названиями товаров из каталога."},
		{Role: model.RoleUser, Content: sb.String()},
	})
	if err != nil {
		u.log.Warn().Err(err).Str("product", base.Name).Msg("related products lookup failed")
		return nil
	}

	replyLower := strings.ToLower(reply)
	var out []ProductSummary
	for _, p := range products {
		if p.ID == base.ID {
			continue
		}
		if strings.Contains(replyLower, strings.ToLower(p.Name)) {
			out = append(out, ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price})
			if len(out) == 3 {
				break
			}
		}
	}
	return out
}
