package models

import "fmt"

// FieldKind classifies the expected shape of a well-known data field.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
	KindBool   FieldKind = "bool"
	KindList   FieldKind = "list"
	KindMap    FieldKind = "map"
)

// wellKnownFields declares, per entity type, the fields extraction and
// curation commonly populate. Values stored under these keys must match
// the declared kind; any other key passes through unchecked as the open
// extension surface of the data map.
var wellKnownFields = map[EntityType]map[string]FieldKind{
	EntityTypeVenture: {
		"name":        KindString,
		"description": KindString,
		"stage":       KindString,
	},
	EntityTypeMarket: {
		"name":       KindString,
		"size_usd":   KindNumber,
		"growth_pct": KindNumber,
		"regions":    KindList,
	},
	EntityTypeICP: {
		"name":        KindString,
		"segment":     KindString,
		"pain_points": KindList,
	},
	EntityTypeCompetitor: {
		"name":       KindString,
		"website":    KindString,
		"strengths":  KindList,
		"weaknesses": KindList,
	},
	EntityTypeProduct: {
		"name":     KindString,
		"features": KindList,
		"pricing":  KindMap,
	},
	EntityTypeTeamMember: {
		"name": KindString,
		"role": KindString,
	},
	EntityTypeMetric: {
		"name":  KindString,
		"value": KindNumber,
		"unit":  KindString,
	},
	EntityTypeFundingAssumption: {
		"name":       KindString,
		"amount_usd": KindNumber,
		"round":      KindString,
	},
	EntityTypeRisk: {
		"name":       KindString,
		"severity":   KindString,
		"likelihood": KindString,
		"mitigated":  KindBool,
	},
}

// ValidateData checks a data map against the entity type's well-known
// fields. Unknown keys are always allowed.
func ValidateData(entityType EntityType, data map[string]any) error {
	fields, ok := wellKnownFields[entityType]
	if !ok {
		return fmt.Errorf("unknown entity type %q", entityType)
	}

	for key, kind := range fields {
		value, present := data[key]
		if !present || value == nil {
			continue
		}
		if !matchesKind(value, kind) {
			return fmt.Errorf("field %q must be a %s", key, kind)
		}
	}

	return nil
}

func matchesKind(value any, kind FieldKind) bool {
	switch kind {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindNumber:
		switch value.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case KindBool:
		_, ok := value.(bool)
		return ok
	case KindList:
		switch value.(type) {
		case []any, []string:
			return true
		}
		return false
	case KindMap:
		_, ok := value.(map[string]any)
		return ok
	default:
		return false
	}
}
