package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// InitDataMaxAge bounds how old a Telegram auth_date may be.
const InitDataMaxAge = time.Hour

// webAppKey derives the WebApp secret: HMAC_SHA256(key="WebAppData", bot_token).
func webAppKey(botToken string) []byte {
	h := hmac.New(sha256.New, []byte("WebAppData"))
	h.Write([]byte(botToken))
	return h.Sum(nil)
}

// ValidateTelegramInitData verifies Telegram WebApp init_data HMAC and checks
// that the auth_date is recent to mitigate replay attacks.
func ValidateTelegramInitData(initData, botToken string) (url.Values, bool) {
	return validateInitData(initData, botToken, time.Now())
}

func validateInitData(initData, botToken string, now time.Time) (url.Values, bool) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, false
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, false
	}
	values.Del("hash")

	var dataCheck []string
	for k, v := range values {
		dataCheck = append(dataCheck, k+"="+strings.Join(v, ""))
	}
	sort.Strings(dataCheck)
	dataString := strings.Join(dataCheck, "\n")

	h := hmac.New(sha256.New, webAppKey(botToken))
	h.Write([]byte(dataString))

	provided, err := hex.DecodeString(hash)
	if err != nil {
		return nil, false
	}
	if !hmac.Equal(h.Sum(nil), provided) {
		return nil, false
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, false
	}
	// allow small clock skew, but reject anything older than InitDataMaxAge
	age := now.Unix() - authDate
	if age > int64(InitDataMaxAge.Seconds()) || age < -300 {
		return nil, false
	}

	return values, true
}
