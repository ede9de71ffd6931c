package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SizeStock is the stock held for one size label.
type SizeStock struct {
	Size  string `bson:"size" json:"size" binding:"required"`
	Stock int    `bson:"stock" json:"stock" binding:"min=0"`

	// labelOnly marks an entry decoded from a stored label with no stock of
	// its own. The product's scalar stock stays authoritative for it.
	labelOnly bool
}

// UnmarshalJSON also accepts a bare size label, which older admin clients
// still send.
func (s *SizeStock) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*s = SizeStock{Size: strings.TrimSpace(label)}
		return nil
	}

	type plain SizeStock
	var value plain
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*s = SizeStock(value)
	return nil
}

// SizeList decodes both the per-size stock documents and the legacy array of
// plain size labels.
type SizeList []SizeStock

func (s *SizeList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*s = SizeList{}
		return nil
	case bsontype.Array:
	default:
		return fmt.Errorf("cannot decode %s into SizeList", t)
	}

	values, err := bson.RawValue{Type: t, Value: data}.Array().Values()
	if err != nil {
		return err
	}

	out := make(SizeList, 0, len(values))
	for _, value := range values {
		switch value.Type {
		case bsontype.String:
			out = append(out, SizeStock{Size: strings.TrimSpace(value.StringValue()), labelOnly: true})
		case bsontype.EmbeddedDocument:
			var entry SizeStock
			if err := value.Unmarshal(&entry); err != nil {
				return err
			}
			out = append(out, entry)
		default:
			return fmt.Errorf("cannot decode %s into SizeStock", value.Type)
		}
	}
	*s = out
	return nil
}

func (s SizeList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if s == nil {
		s = SizeList{}
	}
	if s.LabelsOnly() {
		return bson.MarshalValue(s.Labels())
	}
	return bson.MarshalValue([]SizeStock(s))
}

// LabelsOnly reports whether every entry came from a stored plain label.
// Such lists are written back as labels so the scalar stock is not replaced
// by zero counts.
func (s SizeList) LabelsOnly() bool {
	if len(s) == 0 {
		return false
	}
	for _, entry := range s {
		if !entry.labelOnly {
			return false
		}
	}
	return true
}

func (s SizeList) Labels() []string {
	out := make([]string, 0, len(s))
	for _, entry := range s {
		out = append(out, entry.Size)
	}
	return out
}

// Index returns the position of the given label or -1.
func (s SizeList) Index(size string) int {
	for i, entry := range s {
		if entry.Size == size {
			return i
		}
	}
	return -1
}

func (s SizeList) Total() int {
	total := 0
	for _, entry := range s {
		total += entry.Stock
	}
	return total
}

// Validate checks that labels are present and unique and that no stock count
// is negative.
func (s SizeList) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, entry := range s {
		label := strings.TrimSpace(entry.Size)
		if label == "" {
			return fmt.Errorf("size label required")
		}
		if _, ok := seen[label]; ok {
			return fmt.Errorf("duplicate size: %s", label)
		}
		seen[label] = struct{}{}
		if entry.Stock < 0 {
			return fmt.Errorf("stock for size %s must be zero or greater", label)
		}
	}
	return nil
}

type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	Category        string             `bson:"category" json:"category"`
	Price           float64            `bson:"price" json:"price"`
	DiscountedPrice *float64           `bson:"discountedPrice,omitempty" json:"discountedPrice,omitempty"`
	IsOnSale        bool               `bson:"-" json:"isOnSale"`
	Tags            StringList         `bson:"tags" json:"tags"`
	Sizes           SizeList           `bson:"sizes" json:"sizes"`
	Colors          StringList         `bson:"colors" json:"colors"`
	Images          StringList         `bson:"images" json:"images"`
	Stock           int                `bson:"stock" json:"stock"`
	InStock         bool               `bson:"-" json:"inStock"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UsesScalarStock reports whether the stored stock field is the source of
// truth: no sizes at all, or only plain labels without per-size counts.
func (p Product) UsesScalarStock() bool {
	return len(p.Sizes) == 0 || p.Sizes.LabelsOnly()
}

// TotalStock is the sum of per-size stock. Legacy documents keep their scalar
// stock until per-size counts are supplied.
func (p Product) TotalStock() int {
	if p.UsesScalarStock() {
		return p.Stock
	}
	return p.Sizes.Total()
}

// Refresh recomputes the derived fields after a decode or an edit.
func (p *Product) Refresh() {
	if p.Tags == nil {
		p.Tags = StringList{}
	}
	if p.Colors == nil {
		p.Colors = StringList{}
	}
	if p.Images == nil {
		p.Images = StringList{}
	}
	if p.Sizes == nil {
		p.Sizes = SizeList{}
	}
	p.Stock = p.TotalStock()
	p.InStock = p.Stock > 0
	p.IsOnSale = p.DiscountedPrice != nil && IsDiscountActive(p.Price, *p.DiscountedPrice)
}

// EffectivePrice is what a buyer pays right now.
func (p Product) EffectivePrice() float64 {
	if p.DiscountedPrice != nil && IsDiscountActive(p.Price, *p.DiscountedPrice) {
		return *p.DiscountedPrice
	}
	return p.Price
}

func IsDiscountActive(price, discounted float64) bool {
	return discounted > 0 && discounted < price
}
