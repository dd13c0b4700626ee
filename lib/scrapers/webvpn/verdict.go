package webvpn

import (
	"encoding/json"
	"net/http"
	"strings"
)

// LoginVerdict decides whether a login api response means success.
type LoginVerdict func(status int, body []byte) bool

// LooseVerdict accepts any 200 response that mentions "success" anywhere
// in its body, regardless of case.
func LooseVerdict(status int, body []byte) bool {
	return status == http.StatusOK &&
		strings.Contains(strings.ToLower(string(body)), "success")
}

type loginResponse struct {
	Code    *json.Number `json:"code"`
	Success *bool        `json:"success"`
	Message string       `json:"message"`
}

// StructuredVerdict decodes the login api's json envelope instead of
// searching its text. An explicit success flag wins, then a zero or 200
// code, then a message of exactly "success".
func StructuredVerdict(status int, body []byte) bool {
	if status != http.StatusOK {
		return false
	}

	var res loginResponse
	err := json.Unmarshal(body, &res)
	if err != nil {
		return false
	}

	if res.Success != nil {
		return *res.Success
	}
	if res.Code != nil {
		code := res.Code.String()
		return code == "0" || code == "200"
	}
	return strings.EqualFold(strings.TrimSpace(res.Message), "success")
}
