package ontology

import (
	"context"
	"fmt"

	"github.com/diwise/item-drive/pkg/drive/errors"
	"github.com/diwise/item-drive/pkg/drive/facts"
	"github.com/diwise/item-drive/pkg/drive/items"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("item-drive/ontology")

// ItemFetcher is the read side of an item drive
type ItemFetcher interface {
	FetchItem(ctx context.Context, itemID string) (*items.Item, error)
	FetchItems(ctx context.Context, queries []facts.Query) ([]items.Item, error)
}

type Validator interface {
	CheckItem(ctx context.Context, item items.Item) error
	PropertiesOfType(ctx context.Context, typeID string) ([]items.Item, error)
}

type Option func(*validator)

// WithExternalReferences lets references to items that are not in the drive pass validation
func WithExternalReferences(allowed bool) Option {
	return func(v *validator) {
		v.allowExternalReferences = allowed
	}
}

type validator struct {
	fetcher                 ItemFetcher
	allowExternalReferences bool
}

func NewValidator(fetcher ItemFetcher, options ...Option) Validator {
	v := &validator{fetcher: fetcher}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// PropertiesOfType returns the properties declared with the given type in their domain
func (v *validator) PropertiesOfType(ctx context.Context, typeID string) ([]items.Item, error) {
	return v.fetcher.FetchItems(ctx, []facts.Query{
		{Property: PropertyType, Value: ExternalClassProperty},
		{Property: PropertyDomainIncludes, Value: typeID},
	})
}

// CheckItem validates the facts of item against the ontology stored in the drive.
// The first violation found is returned as a schema error.
func (v *validator) CheckItem(ctx context.Context, item items.Item) (err error) {
	ctx, span := tracer.Start(ctx, "check-item")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	span.SetAttributes(attribute.String("item-id", item.ItemID))

	if len(item.FactsOf(PropertyType)) == 0 {
		return errors.NewSchemaError(errors.ReasonMissingType, fmt.Sprintf("item %s must have a type", item.ItemID))
	}

	domain, err := SubClassClosure(ctx, v.fetcher, []string{item.ItemID})
	if err != nil {
		return err
	}

	for _, f := range item.Facts {
		if f.Property == PropertyType {
			if err = v.checkType(ctx, f); err != nil {
				return err
			}
			continue
		}

		if err = v.checkFact(ctx, f, domain); err != nil {
			return err
		}
	}

	return nil
}

func (v *validator) checkType(ctx context.Context, f facts.Fact) error {
	typeID, ok := referenceOf(f.Value)
	if !ok {
		return errors.NewSchemaError(errors.ReasonUnknownType, "type must be a reference")
	}

	typeItem, err := v.fetcher.FetchItem(ctx, typeID)
	if err != nil {
		return err
	}

	if typeItem == nil {
		return errors.NewSchemaError(errors.ReasonUnknownType, fmt.Sprintf("type %s does not exist", typeID))
	}

	return nil
}

func (v *validator) checkFact(ctx context.Context, f facts.Fact, domain ClassSet) error {
	propertyItem, err := v.fetcher.FetchItem(ctx, f.Property)
	if err != nil {
		return err
	}

	// properties that are not described by the ontology are not validated
	if propertyItem == nil {
		return nil
	}

	domainIncludes := propertyItem.FactsOf(PropertyDomainIncludes)
	rangeIncludes := propertyItem.FactsOf(PropertyRangeIncludes)

	if len(domainIncludes) == 0 || len(rangeIncludes) == 0 {
		return errors.NewSchemaError(
			errors.ReasonIncompleteProperty,
			fmt.Sprintf("property %s must define domainIncludes and rangeIncludes", f.Property),
		)
	}

	validClasses := ClassSet{}
	for _, r := range rangeIncludes {
		id, ok := r.Value.Reference()
		if !ok {
			return errors.NewSchemaError(
				errors.ReasonIncompleteProperty,
				fmt.Sprintf("rangeIncludes of property %s must reference classes", f.Property),
			)
		}
		validClasses[id] = struct{}{}
	}

	switch f.Value.Kind() {
	case facts.KindReference:
		return v.checkReference(ctx, f, validClasses)
	case facts.KindLiteral:
		literal, _ := f.Value.Literal()
		if !validTypes(validClasses)[kindOf(literal)] {
			return errors.NewSchemaError(
				errors.ReasonRangeMismatch,
				fmt.Sprintf("value of %s is not in the range of the property", f.Property),
			)
		}
		return nil
	}

	if !domain.Intersects(referencedClasses(domainIncludes)) {
		return errors.NewSchemaError(
			errors.ReasonDomainMismatch,
			fmt.Sprintf("property %s is not in the domain of the item", f.Property),
		)
	}

	return errors.NewSchemaError(
		errors.ReasonUnexpectedValueShape,
		fmt.Sprintf("value of %s must be a reference or a literal, got %s", f.Property, f.Value.Kind()),
	)
}

func (v *validator) checkReference(ctx context.Context, f facts.Fact, validClasses ClassSet) error {
	if len(validClasses) == 0 {
		return errors.NewSchemaError(errors.ReasonNoRange, fmt.Sprintf("property %s has no range", f.Property))
	}

	referencedID, _ := f.Value.Reference()

	referenced, err := v.fetcher.FetchItem(ctx, referencedID)
	if err != nil {
		return err
	}

	if referenced == nil {
		if v.allowExternalReferences {
			return nil
		}
		return errors.NewSchemaError(
			errors.ReasonDanglingReference,
			fmt.Sprintf("value of %s references an undefined item %s", f.Property, referencedID),
		)
	}

	grouped := facts.GroupByProperty(referenced.Facts)
	seeds := []string{}
	for _, t := range facts.ByProperties(grouped, PropertyType, PropertyAdditionalType) {
		if id, ok := referenceOf(t.Value); ok {
			seeds = append(seeds, id)
		}
	}

	classes, err := SubClassClosure(ctx, v.fetcher, seeds)
	if err != nil {
		return err
	}

	if !classes.Intersects(validClasses) {
		return errors.NewSchemaError(
			errors.ReasonRangeMismatch,
			fmt.Sprintf("item %s is not in the range of %s", referencedID, f.Property),
		)
	}

	return nil
}

func referencedClasses(fs []facts.Fact) ClassSet {
	ids := []string{}
	for _, f := range fs {
		if id, ok := referenceOf(f.Value); ok {
			ids = append(ids, id)
		}
	}
	return NewClassSet(ids...)
}

// validTypes returns the primitive kinds accepted by the data type classes among classes
func validTypes(classes ClassSet) map[PrimitiveKind]bool {
	kinds := map[PrimitiveKind]bool{}
	for id := range classes {
		if kind, ok := DataTypes[id]; ok {
			kinds[kind] = true
		}
	}
	return kinds
}

func kindOf(literal any) PrimitiveKind {
	if _, ok := facts.AsNumber(literal); ok {
		return KindNumber
	}

	switch literal.(type) {
	case string:
		return KindString
	case bool:
		return KindBoolean
	}

	return KindOther
}
