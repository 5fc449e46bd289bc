package domain

import "time"

type Cart struct {
	ID         string     `bson:"_id,omitempty" json:"-"`
	CustomerID string     `bson:"customer_id" json:"customer_id"`
	Lines      []CartLine `bson:"lines" json:"lines"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
}

// CartLine carries the price snapshot taken when the product was first
// added. Incrementing quantity keeps the original snapshot.
type CartLine struct {
	ProductID   int64     `bson:"product_id" json:"product_id"`
	ProductName string    `bson:"product_name" json:"product_name"`
	Quantity    int32     `bson:"quantity" json:"quantity"`
	UnitPrice   int64     `bson:"unit_price" json:"unit_price"`
	AddedAt     time.Time `bson:"added_at" json:"added_at"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
