package testutil

import "net/http"

// WithSessionCookie attaches a session cookie so requests go through the real
// middleware chain.
func WithSessionCookie(req *http.Request, name, value string) *http.Request {
	req.AddCookie(&http.Cookie{Name: name, Value: value})
	return req
}

// CookieNamed returns the cookie set on the response under name, or nil.
func CookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
