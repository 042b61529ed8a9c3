package mercadopago

import (
	"encoding/json"
	"strings"
)

// notification the delivery body shapes seen across provider versions.
// The identifier may arrive nested under data, as a top-level id, or
// only as the numeric tail of a resource URL.
type notification struct {
	Type     string      `json:"type"`
	Action   string      `json:"action"`
	Topic    string      `json:"topic"`
	Resource string      `json:"resource"`
	ID       json.Number `json:"id"`
	Data     struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// ExtractPaymentID pulls the provider payment id out of a raw
// notification body. Shapes are tried in fixed priority order:
// data.id, then top-level id, then the numeric suffix of resource.
// Returns "" when nothing extractable is present, including on
// unparseable bodies.
func ExtractPaymentID(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return ""
	}
	if id := n.Data.ID.String(); isNumericID(id) {
		return id
	}
	if id := n.ID.String(); isNumericID(id) {
		return id
	}
	if id := numericSuffix(n.Resource); id != "" {
		return id
	}
	return ""
}

// numericSuffix extracts the trailing numeric path segment of a
// resource URL such as
// https://api.mercadopago.com/v1/payments/123456789
func numericSuffix(resource string) string {
	resource = strings.TrimRight(strings.TrimSpace(resource), "/")
	if resource == "" {
		return ""
	}
	idx := strings.LastIndex(resource, "/")
	if idx < 0 {
		return ""
	}
	tail := resource[idx+1:]
	if isNumericID(tail) {
		return tail
	}
	return ""
}

func isNumericID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
