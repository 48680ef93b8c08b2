// File: internal/usecase/types.go
package usecase

import (
	"telegram-store-consultant/internal/domain/model"
)

// Tool results are plain data: a result either carries success fields or
// one of the error/needs markers. Nothing here ever crosses the tool
// boundary as a Go error; the orchestrator only sees transport failures.

// ProductSummary is the id/name/price triple used in listings.
type ProductSummary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type SubcategoryNode struct {
	Name     string           `json:"name"`
	Products []ProductSummary `json:"products"`
}

type CategoryNode struct {
	Name          string            `json:"name"`
	Subcategories []SubcategoryNode `json:"subcategories"`
}

// CatalogResult is the hierarchical category → subcategory → product listing.
type CatalogResult struct {
	Categories []CategoryNode `json:"categories"`
}

// ProductDetails is the full detail record for one product.
type ProductDetails struct {
	Error       string            `json:"error,omitempty"`
	ID          int64             `json:"id,omitempty"`
	Name        string            `json:"name,omitempty"`
	Price       float64           `json:"price,omitempty"`
	Description string            `json:"description,omitempty"`
	Category    string            `json:"category,omitempty"`
	Subcategory string            `json:"subcategory,omitempty"`
	Colors      []string          `json:"colors,omitempty"`
	Sizes       []string          `json:"sizes,omitempty"`
	Photos      []string          `json:"photos,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// AddToCartResult reports the outcome of the add-to-cart gate.
// NeedsDetails enumerates exactly the still-missing fields; nothing is
// added to the cart until it comes back empty.
type AddToCartResult struct {
	Error           string          `json:"error,omitempty"`
	NeedsDetails    []string        `json:"needs_details,omitempty"` // "quantity" | "color" | "size"
	AvailableColors []string        `json:"available_colors,omitempty"`
	AvailableSizes  []string        `json:"available_sizes,omitempty"`
	Added           *model.CartItem `json:"added,omitempty"`
	CartCount       int             `json:"cart_count,omitempty"`
	CartTotal       float64         `json:"cart_total,omitempty"`
}

// Filter statuses.
const (
	FilterNeedsClarification = "needs_clarification"
	FilterNoExactMatch       = "no_exact_match"
	FilterExactMatches       = "exact_matches"
)

// RankedProduct is a match with the model's one-line rationale.
type RankedProduct struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Reason string  `json:"reason,omitempty"`
}

// FilterResult is the outcome of a natural-language catalog search.
type FilterResult struct {
	Status           string           `json:"status"`
	Question         string           `json:"question,omitempty"`
	MissingDimension string           `json:"missing_dimension,omitempty"` // "size" | "color"
	Options          []string         `json:"options,omitempty"`
	Matches          []RankedProduct  `json:"matches,omitempty"`
	Alternatives     []RankedProduct  `json:"alternatives,omitempty"`
	Related          []ProductSummary `json:"related,omitempty"`
}

// RelatedResult lists up to three complementary products.
type RelatedResult struct {
	Error   string           `json:"error,omitempty"`
	Related []ProductSummary `json:"related,omitempty"`
}

// UserInfoResult distinguishes "no row" (Exists=false, a bare row is
// created as a side effect) from "row missing required fields".
type UserInfoResult struct {
	Exists        bool     `json:"exists"`
	Complete      bool     `json:"complete"`
	FullName      string   `json:"full_name,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Address       string   `json:"address,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// Checkout states, in the order the finalizer walks them.
type CheckoutState string

const (
	CheckoutEmptyCart        CheckoutState = "empty_cart"
	CheckoutNeedVerification CheckoutState = "need_verification"
	CheckoutNeedDelivery     CheckoutState = "need_delivery_choice"
	CheckoutNeedName         CheckoutState = "need_name"
	CheckoutNeedPhone        CheckoutState = "need_phone"
	CheckoutNeedAddress      CheckoutState = "need_address"
	CheckoutPersisted        CheckoutState = "persisted"
)

// CartSummary is the cart snapshot included in checkout results.
type CartSummary struct {
	Items       []model.CartItem `json:"items"`
	TotalAmount float64          `json:"total_amount"`
}

func summarize(cart *model.Cart) *CartSummary {
	return &CartSummary{Items: cart.Items, TotalAmount: cart.TotalAmount()}
}

// CheckoutResult is the re-entrant order finalizer's answer: at most one
// targeted prompt per call, or the persisted order-group id.
type CheckoutResult struct {
	State          CheckoutState `json:"state"`
	Error          string        `json:"error,omitempty"`
	Prompt         string        `json:"prompt,omitempty"`
	UserDataExists bool          `json:"user_data_exists,omitempty"`
	FullName       string        `json:"full_name,omitempty"`
	Phone          string        `json:"phone,omitempty"`
	Address        string        `json:"address,omitempty"`
	CartSummary    *CartSummary  `json:"cart_summary,omitempty"`
	OrderGroupID   string        `json:"order_group_id,omitempty"`
}

// ConsultantReply is what one turn emits to the presentation boundary:
// plain text, text plus a photo, a product list for carousel rendering,
// or a targeted clarification question.
type ConsultantReply struct {
	Text          string
	Photo         string
	Products      []*model.Product
	NoExactMatch  bool
	Clarification bool
}
