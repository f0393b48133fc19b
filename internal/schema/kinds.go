// Package schema validates parsed config documents against a closed description of
// every record shape before they are decoded into domain types.
//
// Loading is two-phase: bytes are parsed into a generic YAML tree, the tree is walked
// against the schema for one Kind (collecting every violation with its path and line),
// and only a structurally valid tree is decoded and constraint-checked.
package schema

// Kind selects which document shape a source must have.
type Kind int

// Document kinds.
const (
	KindAdLimits Kind = iota + 1
	KindAssetSpecs
	KindTaxonomies
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindAdLimits:
		return "ad_limits"
	case KindAssetSpecs:
		return "asset_specs"
	case KindTaxonomies:
		return "taxonomies"
	default:
		return "unknown"
	}
}

type valueType int

const (
	typeString valueType = iota
	typeInt
	typeNumber
	typeBool
	typeStringList
	typeStringMap
	typeObjectList
)

func (t valueType) String() string {
	switch t {
	case typeString:
		return "string"
	case typeInt:
		return "integer"
	case typeNumber:
		return "number"
	case typeBool:
		return "boolean"
	case typeStringList:
		return "list of strings"
	case typeStringMap:
		return "map of strings"
	case typeObjectList:
		return "list of objects"
	default:
		return "unknown"
	}
}

// field describes one key of a record.
type field struct {
	name     string
	typ      valueType
	required bool
	nullable bool
	elem     *record // for typeObjectList
}

// record describes a mapping node.
type record struct {
	name   string
	fields []field
}

func (r *record) lookup(name string) (field, bool) {
	for _, f := range r.fields {
		if f.name == name {
			return f, true
		}
	}
	return field{}, false
}

var fieldLimitRecord = &record{
	name: "FieldLimit",
	fields: []field{
		{name: "field", typ: typeString, required: true},
		{name: "max_chars", typ: typeInt, required: true},
		{name: "max_words", typ: typeInt, required: true},
		{name: "emojis_allowed", typ: typeBool, required: true},
		{name: "count", typ: typeInt, nullable: true},
		{name: "notes", typ: typeString, nullable: true},
		{name: "is_dropdown", typ: typeBool},
		{name: "dropdown_options", typ: typeStringList, nullable: true},
	},
}

var adLimitRecord = &record{
	name: "AdLimit",
	fields: []field{
		{name: "channel", typ: typeString, required: true},
		{name: "subtype", typ: typeString, nullable: true},
		{name: "fields", typ: typeObjectList, required: true, elem: fieldLimitRecord},
	},
}

var assetSpecRecord = &record{
	name: "AssetSpec",
	fields: []field{
		{name: "channel", typ: typeString, required: true},
		{name: "placement_or_format", typ: typeString, required: true},
		{name: "aspect_ratio", typ: typeString, nullable: true},
		{name: "recommended_px", typ: typeString, nullable: true},
		{name: "duration_seconds_max", typ: typeNumber, required: true},
		{name: "file_types", typ: typeStringList, required: true},
		{name: "max_file_size_mb", typ: typeNumber, required: true},
		{name: "caption_limit_chars", typ: typeInt, required: true},
		{name: "notes", typ: typeString, nullable: true},
	},
}

var taxonomiesRecord = &record{
	name: "Taxonomies",
	fields: []field{
		{name: "all_channels", typ: typeStringList, required: true},
		{name: "social_channels", typ: typeStringList, required: true},
		{name: "non_emoji_channels", typ: typeStringList, required: true},
		{name: "tones", typ: typeStringList, required: true},
		{name: "audiences", typ: typeStringList, required: true},
		{name: "subtypes", typ: typeStringList, required: true},
		{name: "tone_hints", typ: typeStringMap, nullable: true},
		{name: "audience_hints", typ: typeStringMap, nullable: true},
	},
}

// shape is the root of a document: a list of records or a single record.
type shape struct {
	list   bool
	record *record
}

func (k Kind) shape() (shape, bool) {
	switch k {
	case KindAdLimits:
		return shape{list: true, record: adLimitRecord}, true
	case KindAssetSpecs:
		return shape{list: true, record: assetSpecRecord}, true
	case KindTaxonomies:
		return shape{record: taxonomiesRecord}, true
	default:
		return shape{}, false
	}
}
