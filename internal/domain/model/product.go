package model

import "strings"

// Color is one selectable color variant of a product.
type Color struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Size is one selectable size variant of a product.
type Size struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
}

// Product is a read-only catalog entry. A product may have zero or more
// colors and sizes independently; an empty dimension means the product is
// sold without that variant.
type Product struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Price       float64           `json:"price"`
	Description string            `json:"description,omitempty"`
	Category    string            `json:"category"`
	Subcategory string            `json:"subcategory"`
	Colors      []Color           `json:"colors,omitempty"`
	Sizes       []Size            `json:"sizes,omitempty"`
	Photos      []string          `json:"photos,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

func (p *Product) HasColors() bool { return len(p.Colors) > 0 }
func (p *Product) HasSizes() bool  { return len(p.Sizes) > 0 }

// FindColor matches a color name case-insensitively.
func (p *Product) FindColor(name string) (Color, bool) {
	for _, c := range p.Colors {
		if strings.EqualFold(strings.TrimSpace(name), c.Name) {
			return c, true
		}
	}
	return Color{}, false
}

// FindSize matches a size value case-insensitively.
func (p *Product) FindSize(value string) (Size, bool) {
	for _, s := range p.Sizes {
		if strings.EqualFold(strings.TrimSpace(value), s.Value) {
			return s, true
		}
	}
	return Size{}, false
}

// ColorNames returns the valid color option list.
func (p *Product) ColorNames() []string {
	out := make([]string, 0, len(p.Colors))
	for _, c := range p.Colors {
		out = append(out, c.Name)
	}
	return out
}

// SizeValues returns the valid size option list.
func (p *Product) SizeValues() []string {
	out := make([]string, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		out = append(out, s.Value)
	}
	return out
}
