package bybit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const (
	headerAPIKey     = "X-BAPI-API-KEY"
	headerTimestamp  = "X-BAPI-TIMESTAMP"
	headerRecvWindow = "X-BAPI-RECV-WINDOW"
	headerSign       = "X-BAPI-SIGN"
)

// sign returns hex(HMAC-SHA256(secret, timestamp+apiKey+recvWindow+payload)),
// where payload is the query string for GET and the raw JSON body for POST.
func sign(secret string, ts int64, apiKey string, recvWindow int64, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte(apiKey))
	mac.Write([]byte(strconv.FormatInt(recvWindow, 10)))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
