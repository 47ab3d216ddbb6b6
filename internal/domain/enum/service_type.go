package enum

import (
	"encoding/json"
	"strings"
)

// ServiceType is whether the order is consumed on premises or taken out.
type ServiceType string

const (
	ServiceDineIn  ServiceType = "dine-in"
	ServiceTakeOut ServiceType = "take-out"
)

func ParseServiceType(s string) (ServiceType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, " ", "-")
	switch s {
	case "dine-in", "dinein":
		return ServiceDineIn, true
	case "take-out", "takeout", "take-away", "takeaway":
		return ServiceTakeOut, true
	}
	return "", false
}

func (s ServiceType) Valid() bool {
	return s == ServiceDineIn || s == ServiceTakeOut
}

func (s ServiceType) Label() string {
	switch s {
	case ServiceDineIn:
		return "Dine-in"
	case ServiceTakeOut:
		return "Take-out"
	}
	return string(s)
}

func (s *ServiceType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if parsed, ok := ParseServiceType(str); ok {
		*s = parsed
		return nil
	}
	*s = ServiceType(str)
	return nil
}
