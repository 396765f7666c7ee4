// Package cart はクライアント側で保持するカートの値型。
// サーバーはチェックアウト時に送られてきた明細だけを受け取る。
package cart

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// ローカルストレージのキー
const StorageKey = "cart-storage"

var ErrInvalidQuantity = errors.New("quantity must be >= 1")

// カートの1行（形式ごと）
type Item struct {
	BookFormatID int64           `json:"bookFormatId"`
	BookTitle    string          `json:"bookTitle"`
	FormatType   string          `json:"formatType"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
}

func (it Item) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(it.Quantity))
}

type Cart struct {
	Items []Item `json:"items"`
}

// 明細をそのままの順序で持つカートを作る
func FromItems(items []Item) Cart {
	c := Cart{Items: make([]Item, len(items))}
	copy(c.Items, items)
	return c
}

// 同じ形式が既にあれば数量+1、無ければ数量1で追加
func (c *Cart) Add(item Item) {
	for i := range c.Items {
		if c.Items[i].BookFormatID == item.BookFormatID {
			c.Items[i].Quantity++
			return
		}
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
}

func (c *Cart) Remove(bookFormatID int64) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.BookFormatID != bookFormatID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

// 数量を上書きする。0以下は受け付けない（削除はRemove）
func (c *Cart) UpdateQuantity(bookFormatID int64, qty int64) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].BookFormatID == bookFormatID {
			c.Items[i].Quantity = qty
		}
	}
	return nil
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// 合計金額 = Σ price×quantity
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (c Cart) TotalItems() int64 {
	var n int64
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// 永続化用のドキュメント {"state":{"items":[...]},"version":0}
type persisted struct {
	State   Cart `json:"state"`
	Version int  `json:"version"`
}

func Marshal(c Cart) ([]byte, error) {
	if c.Items == nil {
		c.Items = []Item{}
	}
	return json.Marshal(persisted{State: c})
}

func Unmarshal(data []byte) (Cart, error) {
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return Cart{}, err
	}
	return p.State, nil
}
