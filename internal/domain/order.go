package domain

import "time"

type MenuItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
}

type Order struct {
	ID          int64       `json:"id"`
	Reference   string      `json:"reference"`
	FranchiseID int64       `json:"franchiseId"`
	StoreID     int64       `json:"storeId"`
	UserID      int64       `json:"userId"`
	Date        time.Time   `json:"date"`
	Items       []OrderItem `json:"items"`
}

type OrderItem struct {
	MenuID      int64   `json:"menuId"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Total returns the summed price of all line items.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Price
	}
	return total
}
