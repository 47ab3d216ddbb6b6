package enum

import (
	"encoding/json"
	"strings"
)

// Temperature is the optional serving temperature of a drink line.
// The zero value means the line has none.
type Temperature string

const (
	TemperatureNone Temperature = ""
	TemperatureHot  Temperature = "hot"
	TemperatureIced Temperature = "iced"
)

func (t Temperature) Valid() bool {
	return t == TemperatureNone || t == TemperatureHot || t == TemperatureIced
}

// ReceiptSuffix is appended to the item name on printed receipts.
func (t Temperature) ReceiptSuffix() string {
	switch t {
	case TemperatureHot:
		return " (hot)"
	case TemperatureIced:
		return " (Iced)"
	}
	return ""
}

func (t *Temperature) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch v := strings.ToLower(strings.TrimSpace(str)); v {
	case "hot", "iced", "":
		*t = Temperature(v)
	case "ice", "cold":
		*t = TemperatureIced
	default:
		*t = Temperature(str)
	}
	return nil
}
