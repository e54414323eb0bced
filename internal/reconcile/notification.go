package reconcile

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/NALLOO/AnTruaNao-V2/pkg/money"
)

// SuccessCode is the value both gateway status fields carry on success
const SuccessCode = "00"

// Gateway field names read by the matcher
const (
	FieldAmount            = "vnp_Amount"
	FieldTransactionStatus = "vnp_TransactionStatus"
	FieldResponseCode      = "vnp_ResponseCode"
	FieldOrderInfo         = "vnp_OrderInfo"
	FieldTxnRef            = "vnp_TxnRef"
	FieldTransactionNo     = "vnp_TransactionNo"
)

// Notification is the subset of a gateway callback the matcher works with
type Notification struct {
	AmountMinor       string
	TransactionStatus string
	ResponseCode      string
	OrderInfo         string
	TxnRef            string
	TransactionNo     string
	Params            map[string]string
}

// ParseNotification reads the logical fields out of a flat parameter map.
// The memo is unescaped once more because some deliveries encode it twice.
func ParseNotification(params map[string]string) Notification {
	info := params[FieldOrderInfo]
	if decoded, err := url.PathUnescape(info); err == nil {
		info = decoded
	}

	return Notification{
		AmountMinor:       strings.TrimSpace(params[FieldAmount]),
		TransactionStatus: params[FieldTransactionStatus],
		ResponseCode:      params[FieldResponseCode],
		OrderInfo:         info,
		TxnRef:            params[FieldTxnRef],
		TransactionNo:     params[FieldTransactionNo],
		Params:            params,
	}
}

// Succeeded reports whether both status fields carry the success code
func (n Notification) Succeeded() bool {
	return n.TransactionStatus == SuccessCode && n.ResponseCode == SuccessCode
}

// Amount converts the gateway minor-unit amount to the ledger unit
func (n Notification) Amount() (float64, error) {
	minor, err := strconv.ParseInt(n.AmountMinor, 10, 64)
	if err != nil || minor < 0 {
		return 0, ErrInvalidAmount
	}
	return money.FromMinor(minor), nil
}
