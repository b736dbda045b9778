// Package paymentprovider реализует HTTP-клиент платёжного шлюза
// для оплаты premium-подписки.
package paymentprovider

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Стоимость планов подписки в копейках.
const (
	PriceMonthly = 29900
	PriceYearly  = 299000
)

// Client клиент платёжного шлюза.
type Client struct {
	shopID     string
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент платёжного шлюза.
func NewClient(apiURL, shopID, secretKey string) *Client {
	return &Client{
		shopID:     shopID,
		secretKey:  secretKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(method, path string, body interface{}) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.shopID + ":" + c.secretKey))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Charge списывает оплату подписки по платёжному токену.
func (c *Client) Charge(reqParams ChargeRequest) (*ChargeResponse, error) {
	req, err := c.newRequest("POST", "/payments", reqParams)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var chargeResp ChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&chargeResp); err != nil {
		return nil, err
	}
	return &chargeResp, nil
}

// PlanAmount возвращает стоимость плана; второй результат false для
// неизвестного плана.
func PlanAmount(plan string) (int, bool) {
	switch plan {
	case "monthly":
		return PriceMonthly, true
	case "yearly":
		return PriceYearly, true
	default:
		return 0, false
	}
}

// PlanExpiry считает дату окончания premium-доступа для плана от момента оплаты.
func PlanExpiry(plan string, from time.Time) time.Time {
	if plan == "yearly" {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
