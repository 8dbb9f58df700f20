package refs

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// separators maps the word separators that appear in entity display names
// onto underscores so inflect treats them as word boundaries.
var separators = strings.NewReplacer(" ", "_", "-", "_", ".", "_")

// PropertyKey derives the lower-camel-case property key for a reference to
// the named entity: "Order Item" and "OrderItem" both become "orderItem".
func PropertyKey(entityName string) string {
	return inflect.CamelizeDownFirst(inflect.Underscore(separators.Replace(strings.TrimSpace(entityName))))
}

// EntityName derives the title-cased entity name implied by a property key:
// "orderItem" becomes "OrderItem". Used when a property is retyped to a
// reference and a target entity has to be found or synthesized.
func EntityName(propertyKey string) string {
	return inflect.Camelize(inflect.Underscore(separators.Replace(strings.TrimSpace(propertyKey))))
}

// referenceDescription is the description written onto properties the
// manager creates or rewrites; renames rewrite it to mention the new name.
func referenceDescription(entityName string) string {
	return "Reference to " + entityName
}
