package quotes

// TickerResponse is the upstream payload for a single last-traded price.
type TickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// APIError is the upstream error payload shape.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}
