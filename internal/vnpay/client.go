package vnpay

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/NALLOO/AnTruaNao-V2/pkg/money"
)

const (
	Version       = "2.1.0"
	CommandPay    = "pay"
	CurrencyVND   = "VND"
	OrderTypeMisc = "other"
	dateLayout    = "20060102150405"
)

// Common errors
var (
	ErrMissingConfig    = errors.New("vnpay: merchant code, hash secret, pay URL and return URL are required")
	ErrMissingSignature = errors.New("vnpay: notification carries no signature")
	ErrInvalidSignature = errors.New("vnpay: signature mismatch")
	ErrInvalidAmount    = errors.New("vnpay: amount must be greater than 0")
	ErrMissingOrderInfo = errors.New("vnpay: order info is required")
)

// Config holds the merchant credentials. It is built once at startup and
// passed to the client explicitly.
type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	Locale     string
	Location   *time.Location
}

// Validate reports ErrMissingConfig when a required credential is blank
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.TmnCode) == "" {
		missing = append(missing, "tmn code")
	}
	if strings.TrimSpace(c.HashSecret) == "" {
		missing = append(missing, "hash secret")
	}
	if strings.TrimSpace(c.PayURL) == "" {
		missing = append(missing, "pay url")
	}
	if strings.TrimSpace(c.ReturnURL) == "" {
		missing = append(missing, "return url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w (missing %s)", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// PaymentRequest describes one payment link
type PaymentRequest struct {
	UserID    string
	WeekID    string
	Amount    float64
	OrderInfo string
	ClientIP  string
}

// Client builds and verifies signed VNPay requests
type Client struct {
	cfg Config
	now func() time.Time
}

// NewClient creates a client for cfg. Missing credentials are reported when
// a link is built, not here.
func NewClient(cfg Config) *Client {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Locale == "" {
		cfg.Locale = "vn"
	}
	return &Client{cfg: cfg, now: time.Now}
}

// Params returns the unsigned parameter map for req
func (c *Client) Params(req PaymentRequest) (map[string]string, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if strings.TrimSpace(req.OrderInfo) == "" {
		return nil, ErrMissingOrderInfo
	}

	now := c.now().In(c.cfg.Location)
	ip := req.ClientIP
	if ip == "" {
		ip = "127.0.0.1"
	}

	return map[string]string{
		"vnp_Version":    Version,
		"vnp_Command":    CommandPay,
		"vnp_TmnCode":    c.cfg.TmnCode,
		"vnp_Amount":     strconv.FormatInt(money.ToMinor(req.Amount), 10),
		"vnp_CurrCode":   CurrencyVND,
		"vnp_TxnRef":     TxnRef(req.UserID, req.WeekID, now),
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  OrderTypeMisc,
		"vnp_Locale":     c.cfg.Locale,
		"vnp_ReturnUrl":  c.cfg.ReturnURL,
		"vnp_IpAddr":     ip,
		"vnp_CreateDate": now.Format(dateLayout),
	}, nil
}

// PaymentURL builds the signed link the member is redirected to
func (c *Client) PaymentURL(req PaymentRequest) (string, error) {
	params, err := c.Params(req)
	if err != nil {
		return "", err
	}

	sep := "?"
	if strings.Contains(c.cfg.PayURL, "?") {
		sep = "&"
	}
	return c.cfg.PayURL + sep + SignedQuery(params, c.cfg.HashSecret), nil
}

// Verify checks the signature carried in params against the rest of the fields
func (c *Client) Verify(params map[string]string) error {
	if strings.TrimSpace(c.cfg.HashSecret) == "" {
		return ErrMissingConfig
	}
	provided := strings.ToLower(strings.TrimSpace(params[FieldSecureHash]))
	if provided == "" {
		return ErrMissingSignature
	}

	expected := Sign(c.cfg.HashSecret, SigningData(params))
	if !hmac.Equal([]byte(expected), []byte(provided)) {
		return ErrInvalidSignature
	}
	return nil
}

// TxnRef derives a merchant reference from the member, the week and the time.
// It falls back to the timestamp alone when neither ID has usable characters.
func TxnRef(userID, weekID string, at time.Time) string {
	stamp := at.Format(dateLayout)
	u, w := shortID(userID), shortID(weekID)
	if u == "" && w == "" {
		return stamp
	}
	return u + w + stamp
}

func shortID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			if b.Len() == 8 {
				break
			}
		}
	}
	return b.String()
}
