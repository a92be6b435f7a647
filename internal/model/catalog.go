package model

// IndicatorTemplate is the static definition an IndicatorRecord is created from.
type IndicatorTemplate struct {
	Key            string    `yaml:"key" json:"key"`
	Dimension      Dimension `yaml:"dimension" json:"dimension"`
	Indicator      string    `yaml:"indicator" json:"indicator"`
	Description    string    `yaml:"description" json:"description"`
	DefaultWeight  int       `yaml:"default_weight" json:"default_weight"`
	PrimarySources []string  `yaml:"primary_sources" json:"primary_sources"`
}

// Record returns the default record for the template.
func (t IndicatorTemplate) Record() IndicatorRecord {
	weight := t.DefaultWeight
	if weight == 0 {
		weight = 3
	}
	return IndicatorRecord{
		TemplateKey: t.Key,
		Dimension:   t.Dimension,
		Indicator:   t.Indicator,
		Confidence:  QualityMedium,
		Weight:      weight,
		Color:       StatusYellow,
	}
}

// SignalDefinition describes one entrapment signal watched by the alert monitor.
type SignalDefinition struct {
	Key              string   `yaml:"key" json:"key"`
	Description      string   `yaml:"description" json:"description"`
	TriggerCondition string   `yaml:"trigger_condition" json:"trigger_condition"`
	PrimarySources   []string `yaml:"primary_sources" json:"primary_sources"`
}
