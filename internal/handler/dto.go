package handler

import (
	"time"

	"github.com/brmartins/delivery-orders/internal/domain/catalog"
	"github.com/brmartins/delivery-orders/internal/domain/order"
	"github.com/brmartins/delivery-orders/internal/domain/payment"
)

// createOrderRequest is the POST /orders body.
type createOrderRequest struct {
	Items          []cartLineRequest   `json:"items"`
	PaymentMethod  string              `json:"paymentMethod"`
	CreditCard     *creditCardRequest  `json:"creditCard,omitempty"`
	BillingAddress *billingAddressBody `json:"billingAddress,omitempty"`
}

type cartLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type creditCardRequest struct {
	CardNumber     string `json:"cardNumber"`
	ExpiryDate     string `json:"expiryDate"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholderName"`
}

type billingAddressBody struct {
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
}

type orderResponse struct {
	ID             string              `json:"id"`
	OwnerID        string              `json:"ownerId"`
	Items          []orderLineResponse `json:"items"`
	TotalAmount    float64             `json:"totalAmount"`
	PaymentMethod  string              `json:"paymentMethod"`
	PaymentDetails string              `json:"paymentDetails,omitempty"`
	BillingAddress *billingAddressBody `json:"billingAddress,omitempty"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type orderLineResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	UnitPrice float64          `json:"unitPrice"`
	LineTotal float64          `json:"lineTotal"`
	Product   *productResponse `json:"product,omitempty"`
}

type productResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Available   bool    `json:"available"`
}

func (r *createOrderRequest) toDomain(ownerID string, method payment.Method) order.CreateOrderRequest {
	lines := make([]order.CartLine, len(r.Items))
	for i, item := range r.Items {
		lines[i] = order.CartLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	var p payment.Payload
	if r.CreditCard != nil {
		p.CreditCard = &payment.CreditCard{
			CardNumber:     r.CreditCard.CardNumber,
			ExpiryDate:     r.CreditCard.ExpiryDate,
			CVV:            r.CreditCard.CVV,
			CardholderName: r.CreditCard.CardholderName,
		}
	}
	if r.BillingAddress != nil {
		p.BillingAddress = &payment.BillingAddress{
			Street:       r.BillingAddress.Street,
			Complement:   r.BillingAddress.Complement,
			Neighborhood: r.BillingAddress.Neighborhood,
			City:         r.BillingAddress.City,
			State:        r.BillingAddress.State,
			ZipCode:      r.BillingAddress.ZipCode,
		}
	}

	return order.CreateOrderRequest{
		OwnerID: ownerID,
		Lines:   lines,
		Method:  method,
		Payload: p,
	}
}

func mapOrder(o *order.Order) orderResponse {
	items := make([]orderLineResponse, len(o.Lines))
	for i, line := range o.Lines {
		items[i] = orderLineResponse{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.InexactFloat64(),
			LineTotal: line.LineTotal.InexactFloat64(),
		}
		if line.Product != nil {
			p := mapProduct(*line.Product)
			items[i].Product = &p
		}
	}

	return orderResponse{
		ID:             o.ID,
		OwnerID:        o.OwnerID,
		Items:          items,
		TotalAmount:    o.TotalAmount.InexactFloat64(),
		PaymentMethod:  string(o.PaymentMethod),
		PaymentDetails: o.PaymentDetails,
		BillingAddress: mapBillingAddress(o.BillingAddress),
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func mapBillingAddress(a *payment.BillingAddress) *billingAddressBody {
	if a == nil {
		return nil
	}
	return &billingAddressBody{
		Street:       a.Street,
		Complement:   a.Complement,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
		ZipCode:      a.ZipCode,
	}
}

func mapProduct(p catalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Available:   p.Available,
	}
}
