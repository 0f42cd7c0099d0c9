package requests

import (
	"net/http"
	"net/url"
	"time"
)

// ExternalAPIService is a small helper around http.Client shared by the
// external data clients.
type ExternalAPIService struct {
	client *http.Client
}

// NewExternalAPIService creates a new instance of ExternalAPIService.
func NewExternalAPIService() *ExternalAPIService {
	return &ExternalAPIService{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Get makes a GET request to the external service, accepting optional query
// parameters.
func (s *ExternalAPIService) Get(endpoint string, params url.Values) (*http.Response, error) {
	if params != nil {
		endpoint = endpoint + "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	return s.client.Do(req)
}
