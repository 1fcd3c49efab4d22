package mapping

import (
	"notion-importer/internal/notion"
)

// SerializeContext carries the parts of a definition the model does not hold.
type SerializeContext struct {
	DefinitionName string
	OutputPath     string
	Target         *notion.Object
}

// Serialize turns a model into a definition. Only bound fields are written,
// in field order.
func Serialize(m *Model, ctx SerializeContext) *Definition {
	def := &Definition{
		DefinitionName:         ctx.DefinitionName,
		OutputPath:             ctx.OutputPath,
		MappingMode:            m.Mode,
		TargetScriptableObject: m.Root.ID,
		MappingData:            []Correspondence{},
	}

	if ctx.Target != nil {
		def.TargetDB = TargetDB{
			ID:         ctx.Target.ID,
			ObjectType: ctx.Target.ObjectType,
			Title:      ctx.Target.MainTitle(),
		}
	}

	if m.Mode.IsCollection() && m.Element != nil {
		def.TargetFieldName = m.CollectionField
		def.TargetFieldType = &TypeRef{TypeName: m.Element.ID.Name(), TypeID: m.Element.ID}
		def.KeyProperty = m.GroupKeyPropertyID
		def.UseKeyFiltering = m.UseGroupFiltering
		def.SortKey = m.SortFieldName
		def.SortOrder = m.SortOrder
	}

	for _, it := range m.Items {
		p, ok := it.Property()
		if !ok {
			continue
		}

		def.MappingData = append(def.MappingData, Correspondence{
			TargetFieldName:    it.Field.Name,
			TargetPropertyID:   p.ID,
			TargetPropertyName: p.Name,
			TargetPropertyType: p.Type,
		})
	}

	return def
}
