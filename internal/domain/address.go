package domain

import "time"

// Address belongs to exactly one customer. At most one address per customer
// is primary; the address service enforces the swap atomically.
type Address struct {
	ID          int64     `json:"id"`
	CustomerID  string    `json:"customer_id"`
	Label       string    `json:"label"`
	Receiver    string    `json:"receiver"`
	Phone       string    `json:"phone"`
	FullAddress string    `json:"full_address"`
	City        string    `json:"city"`
	Province    string    `json:"province"`
	PostalCode  string    `json:"postal_code"`
	IsPrimary   bool      `json:"is_primary"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		Receiver:    a.Receiver,
		Phone:       a.Phone,
		FullAddress: a.FullAddress,
		City:        a.City,
		Province:    a.Province,
		PostalCode:  a.PostalCode,
	}
}
