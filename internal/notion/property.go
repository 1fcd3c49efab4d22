package notion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// PropertyType is the kind of a Notion database property.
type PropertyType string

const (
	TypeTitle          PropertyType = "title"
	TypeUniqueID       PropertyType = "unique_id"
	TypeRichText       PropertyType = "rich_text"
	TypeCheckbox       PropertyType = "checkbox"
	TypeDate           PropertyType = "date"
	TypeNumber         PropertyType = "number"
	TypeSelect         PropertyType = "select"
	TypeMultiSelect    PropertyType = "multi_select"
	TypeURL            PropertyType = "url"
	TypeEmail          PropertyType = "email"
	TypePhoneNumber    PropertyType = "phone_number"
	TypeFormula        PropertyType = "formula"
	TypePeople         PropertyType = "people"
	TypeStatus         PropertyType = "status"
	TypeFiles          PropertyType = "files"
	TypeLastEditedBy   PropertyType = "last_edited_by"
	TypeLastEditedTime PropertyType = "last_edited_time"
	TypeCreatedBy      PropertyType = "created_by"
	TypeCreatedTime    PropertyType = "created_time"
	TypeRollup         PropertyType = "rollup"
	TypeRelation       PropertyType = "relation"
)

// propertyTypes lists the known kinds in their legacy ordinal order.
var propertyTypes = []PropertyType{
	TypeTitle, TypeUniqueID, TypeRichText, TypeCheckbox, TypeDate, TypeNumber,
	TypeSelect, TypeMultiSelect, TypeURL, TypeEmail, TypePhoneNumber, TypeFormula,
	TypePeople, TypeStatus, TypeFiles, TypeLastEditedBy, TypeLastEditedTime,
	TypeCreatedBy, TypeCreatedTime, TypeRollup, TypeRelation,
}

// PropertyTypes returns every known property kind.
func PropertyTypes() []PropertyType {
	return slices.Clone(propertyTypes)
}

// Known reports whether t is one of the documented property kinds.
func (t PropertyType) Known() bool {
	return slices.Contains(propertyTypes, t)
}

// UnmarshalJSON accepts the kind name or its legacy integer ordinal.
func (t *PropertyType) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] != '"' && !bytes.Equal(data, []byte("null")) {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid property type %s: %w", data, err)
		}

		if n < 0 || n >= len(propertyTypes) {
			return fmt.Errorf("property type ordinal %d out of range", n)
		}

		*t = propertyTypes[n]

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*t = PropertyType(s)

	return nil
}

// PropertyDescriptor is one property of a database schema.
// ID is stable; Name may be renamed upstream and must not be used as a key.
type PropertyDescriptor struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Type PropertyType `json:"type"`
}

// IndexOf returns the position of the property with the given id, or -1.
func IndexOf(props []PropertyDescriptor, id string) int {
	return slices.IndexFunc(props, func(p PropertyDescriptor) bool {
		return p.ID == id
	})
}
