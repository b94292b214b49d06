package graph

import "strings"

// Label is the closed set of node labels a pipeline may target by key. Cypher text only ever splices a Label value,
// never caller input.
type Label string

const (
	LabelProduct       Label = "Product"
	LabelIngredient    Label = "Ingredient"
	LabelRecipe        Label = "Recipe"
	LabelNutritionFact Label = "NutritionFact"
	LabelVendorProduct Label = "VendorProduct"
	LabelLineageRun    Label = "LineageRun"
)

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	switch l {
	case LabelProduct, LabelIngredient, LabelRecipe, LabelNutritionFact, LabelVendorProduct, LabelLineageRun:
		return true
	default:
		return false
	}
}

// KeyProperty is the node property holding the relational id for l.
// VendorProduct nodes are merged on vendor keys and carry the mapping row id separately.
func (l Label) KeyProperty() string {
	if l == LabelVendorProduct {
		return "mapping_id"
	}

	return "id"
}

// LineageLabel maps a data_lineage entity_type to the label of the entity it describes.
func LineageLabel(entityType string) (Label, bool) {
	switch strings.ToLower(strings.TrimSpace(entityType)) {
	case "product":
		return LabelProduct, true
	case "ingredient":
		return LabelIngredient, true
	case "recipe":
		return LabelRecipe, true
	case "nutrition_fact":
		return LabelNutritionFact, true
	default:
		return "", false
	}
}

// QualityLabel maps a data_quality_scores entity_type to a label. Nutrition facts carry no quality attributes.
func QualityLabel(entityType string) (Label, bool) {
	switch strings.ToLower(strings.TrimSpace(entityType)) {
	case "product":
		return LabelProduct, true
	case "ingredient":
		return LabelIngredient, true
	case "recipe":
		return LabelRecipe, true
	default:
		return "", false
	}
}

// AuditLabel maps an audited table to the label of its graph node.
func AuditLabel(tableName string) (Label, bool) {
	switch tableName {
	case "products":
		return LabelProduct, true
	case "ingredients":
		return LabelIngredient, true
	case "recipes":
		return LabelRecipe, true
	case "vendor_product_mappings":
		return LabelVendorProduct, true
	case "data_lineage":
		return LabelLineageRun, true
	default:
		return "", false
	}
}
