package ontology

const (
	PropertyType           string = "@type"
	PropertyDomainIncludes string = "https://schema.org/domainIncludes"
	PropertyRangeIncludes  string = "https://schema.org/rangeIncludes"
	PropertyAdditionalType string = "https://schema.org/additionalType"
	PropertySubClassOf     string = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
)

const (
	ClassProperty         string = "https://schema.org/Property"
	ExternalClassProperty string = "http://www.w3.org/1999/02/22-rdf-syntax-ns#Property"
	ClassClass            string = "https://schema.org/Class"
	ExternalClassClass    string = "http://www.w3.org/2000/01/rdf-schema#Class"
)

const (
	DataTypeText     string = "https://schema.org/Text"
	DataTypeBoolean  string = "https://schema.org/Boolean"
	DataTypeNumber   string = "https://schema.org/Number"
	DataTypeTime     string = "https://schema.org/Time"
	DataTypeDate     string = "https://schema.org/Date"
	DataTypeDateTime string = "https://schema.org/DateTime"
)

// PrimitiveKind is the kind of literal payload a data type class accepts
type PrimitiveKind string

const (
	KindString  PrimitiveKind = "string"
	KindBoolean PrimitiveKind = "boolean"
	KindNumber  PrimitiveKind = "number"
	KindOther   PrimitiveKind = "object"
)

// DataTypes maps schema.org data type classes to the primitive kind of their literals
var DataTypes = map[string]PrimitiveKind{
	DataTypeText:     KindString,
	DataTypeBoolean:  KindBoolean,
	DataTypeNumber:   KindNumber,
	DataTypeTime:     KindString,
	DataTypeDate:     KindString,
	DataTypeDateTime: KindString,
}

// ClassAliases maps external vocabulary ids to their schema.org equivalents
var ClassAliases = map[string]string{
	ExternalClassClass:    ClassClass,
	ExternalClassProperty: ClassProperty,
}

// Normalize returns the schema.org equivalent of an aliased class id, or the id itself
func Normalize(id string) string {
	if alias, ok := ClassAliases[id]; ok {
		return alias
	}
	return id
}
