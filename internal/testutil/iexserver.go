package testutil

import (
	"net/url"
	"strings"
)

// IEXHandler simulates the latestPrice endpoint of the IEX Cloud API.
//
// GET /<version>/stock/<SYMBOL>/quote/latestPrice?token=<token>
//   - wrong or missing token: 403 "Forbidden"
//   - symbol absent from prices: 404 "Unknown symbol"
//   - otherwise: 200 with the configured body
//
// Bodies are returned verbatim so tests can serve non-numeric prices.
func IEXHandler(token string, prices map[string]string) Handler {
	return func(head string) []byte {
		u, err := url.Parse(RequestPath(head))
		if err != nil {
			return []byte(Response(400, "Bad Request", "bad request"))
		}
		if u.Query().Get("token") != token {
			return []byte(Response(403, "Forbidden", "Forbidden"))
		}

		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) != 5 || parts[1] != "stock" || parts[3] != "quote" || parts[4] != "latestPrice" {
			return []byte(Response(404, "Not Found", "Not found"))
		}

		price, ok := prices[strings.ToUpper(parts[2])]
		if !ok {
			return []byte(Response(404, "Not Found", "Unknown symbol"))
		}
		return []byte(Response(200, "OK", price))
	}
}
