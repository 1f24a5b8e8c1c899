package domain

// Sensor is one observable value derived from a reading.
type Sensor struct {
	Key        string         `json:"key"`
	Name       string         `json:"name"`
	Value      any            `json:"value"`
	Unit       string         `json:"unit,omitempty"`
	Icon       string         `json:"icon,omitempty"`
	Attributes map[string]any `json:"attributes"`
}

const (
	SensorLevelKey  = "threat_level"
	SensorNumberKey = "threat_level_number"
)

// Sensors derives the text and numeric values consumers display for r.
// Both carry the source URL so a dashboard can link back to the publisher.
func Sensors(r ThreatReading) []Sensor {
	return []Sensor{
		{
			Key:   SensorLevelKey,
			Name:  "Threat level",
			Value: r.Level.String(),
			Icon:  "mdi:shield-alert-outline",
			Attributes: map[string]any{
				"source":      r.Source,
				"gauge_value": r.Ordinal,
			},
		},
		{
			Key:   SensorNumberKey,
			Name:  "Threat level (1-5)",
			Value: r.Ordinal,
			Unit:  "level",
			Icon:  "mdi:gauge",
			Attributes: map[string]any{
				"label":  r.Level.String(),
				"source": r.Source,
			},
		},
	}
}
