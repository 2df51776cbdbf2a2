package paymentprovider

// Запрос на создание заказа в платёжном шлюзе. Сумма передаётся
// в минимальных единицах валюты.
type CreateOrderRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Description string `json:"description,omitempty"`
}

// Ответ шлюза на создание заказа.
type CreateOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}
