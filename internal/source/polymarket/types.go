package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
)

// gammaMarket is one market as the Gamma listing reports it. Numeric fields
// arrive as numbers or strings depending on the endpoint version, and
// clobTokenIds arrives as either a JSON array or a JSON-encoded string.
type gammaMarket struct {
	ID          flexString `json:"id"`
	Question    string     `json:"question"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Subtitle    string     `json:"subtitle"`
	Category    string     `json:"category"`
	Active      bool       `json:"active"`
	Closed      bool       `json:"closed"`
	VolumeClob  flexFloat  `json:"volumeClob"`
	Volume24hr  flexFloat  `json:"volume24hr"`
	Liquidity   flexFloat  `json:"liquidityClob"`
	Tags        []string   `json:"tags"`
	TokenIDs    tokenIDs   `json:"clobTokenIds"`
}

// historyResponse from GET /prices-history
type historyResponse struct {
	History []historyPoint `json:"history"`
}

// historyPoint is one CLOB observation: t = timestamp, p = price.
type historyPoint struct {
	T flexInt   `json:"t"`
	P flexFloat `json:"p"`
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = flexString(num.String())
		return nil
	}
	*s = ""
	return nil
}

// flexFloat accepts a JSON number or numeric string; unparsable input
// decodes to 0 rather than failing the whole record.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			*f = flexFloat(v)
			return nil
		}
	}
	*f = 0
	return nil
}

// flexInt accepts a JSON integer or numeric string; unparsable input decodes
// to 0 so the normalizer can drop the point with a count.
type flexInt int64

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var num int64
	if err := json.Unmarshal(data, &num); err == nil {
		*i = flexInt(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64); err == nil {
			*i = flexInt(v)
			return nil
		}
	}
	*i = 0
	return nil
}

// tokenIDs accepts a JSON array of strings or a JSON-encoded string holding
// one. Anything else decodes to an empty list.
type tokenIDs []string

func (t *tokenIDs) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &list); err == nil {
			*t = list
			return nil
		}
	}
	*t = nil
	return nil
}
