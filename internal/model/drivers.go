package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ParseDrivers decodes a JSON array of driver objects. Elements that cannot
// be used (missing feature or impact, non-numeric impact, non-finite impact)
// are dropped and counted instead of failing the whole list, since upstream
// explainability output is often partial.
func ParseDrivers(raw []byte) ([]DriverRecord, int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, 0, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, 0, fmt.Errorf("drivers must be a JSON array: %w", err)
	}

	drivers := make([]DriverRecord, 0, len(elems))
	dropped := 0
	for _, elem := range elems {
		d, ok := parseDriver(elem)
		if !ok {
			dropped++
			continue
		}
		drivers = append(drivers, d)
	}
	return drivers, dropped, nil
}

func parseDriver(elem json.RawMessage) (DriverRecord, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil || fields == nil {
		return DriverRecord{}, false
	}

	var feature string
	if err := json.Unmarshal(fields["feature"], &feature); err != nil {
		return DriverRecord{}, false
	}
	feature = strings.TrimSpace(feature)
	if feature == "" {
		return DriverRecord{}, false
	}

	rawImpact, ok := fields["impact"]
	if !ok || bytes.Equal(bytes.TrimSpace(rawImpact), []byte("null")) {
		return DriverRecord{}, false
	}
	var impact float64
	if err := json.Unmarshal(rawImpact, &impact); err != nil {
		return DriverRecord{}, false
	}

	var value any
	if rawValue, ok := fields["value"]; ok {
		if err := json.Unmarshal(rawValue, &value); err != nil {
			return DriverRecord{}, false
		}
	} else {
		return DriverRecord{}, false
	}

	d := DriverRecord{Feature: feature, Value: value, Impact: impact}
	if !d.Usable() {
		return DriverRecord{}, false
	}
	return d, true
}

// Usable reports whether the driver can take part in ranking and rendering.
func (d DriverRecord) Usable() bool {
	if strings.TrimSpace(d.Feature) == "" {
		return false
	}
	return !math.IsNaN(d.Impact) && !math.IsInf(d.Impact, 0)
}
