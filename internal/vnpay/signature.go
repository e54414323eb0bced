// Package vnpay builds signed VNPay payment links and verifies the
// signatures on the notifications VNPay sends back.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const (
	FieldSecureHash     = "vnp_SecureHash"
	FieldSecureHashType = "vnp_SecureHashType"
)

// url.QueryEscape escapes these, encodeURIComponent does not
var componentUnescaper = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s with spaces as "+", leaving -_.!~*'() intact
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// CanonicalQuery sorts keys bytewise, encodes every key and value and joins
// the pairs with "&"
func CanonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EncodeComponent(k))
		b.WriteByte('=')
		b.WriteString(EncodeComponent(params[k]))
	}
	return b.String()
}

// SigningData is the canonical query of params without any signature fields
func SigningData(params map[string]string) string {
	return CanonicalQuery(withoutSignature(params))
}

// Sign returns the lowercase hex HMAC-SHA512 of data under secret
func Sign(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignedQuery signs params and returns the final query string that carries
// the signature alongside them
func SignedQuery(params map[string]string, secret string) string {
	signed := withoutSignature(params)
	signed[FieldSecureHash] = Sign(secret, CanonicalQuery(signed))
	return CanonicalQuery(signed)
}

func withoutSignature(params map[string]string) map[string]string {
	out := make(map[string]string, len(params)+1)
	for k, v := range params {
		if k == FieldSecureHash || k == FieldSecureHashType {
			continue
		}
		out[k] = v
	}
	return out
}
