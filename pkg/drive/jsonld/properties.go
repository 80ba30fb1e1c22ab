package jsonld

import "slices"

// sortedProperties returns the property names of node except @id. Go maps are unordered,
// so @type comes first and the rest follow in lexical order to keep fact order stable.
func sortedProperties(node NodeObject) []string {
	properties := make([]string, 0, len(node))
	for p := range node {
		if p == KeywordID || p == KeywordType {
			continue
		}
		properties = append(properties, p)
	}

	slices.Sort(properties)

	if _, ok := node[KeywordType]; ok {
		properties = append([]string{KeywordType}, properties...)
	}

	return properties
}
