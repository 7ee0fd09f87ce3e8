package elements

import (
	"fmt"

	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
	"aemcore/pkg/tables"
)

func inhomogeneityGeometrySchema() schema.Validator {
	return schema.RowWise{
		Fields: []schema.Field{
			{Name: schema.GeometryField, Schema: schema.Required()},
			{Name: "inhomogeneity_id", Schema: schema.Required(schema.Membership(SetInhomogeneityIDs))},
			{Name: "order", Schema: schema.Required(schema.Positive())},
			{Name: "ndegrees", Schema: schema.Required(schema.Positive())},
		},
	}
}

// propertiesSchema validates one inhomogeneity_id group of a properties
// table: the same layering contract as the global aquifer, plus the extra
// per-variant columns.
func propertiesSchema(extra ...schema.ColumnField) schema.Validator {
	columns := []schema.ColumnField{
		{Name: "inhomogeneity_id", Schema: schema.AllRequired()},
		{Name: "layer", Schema: schema.AllRequired(schema.Range())},
		{Name: "aquifer_top", Schema: schema.AllRequired(schema.StrictlyDecreasing())},
		{Name: "aquifer_bottom", Schema: schema.AllRequired(schema.StrictlyDecreasing())},
		{Name: "aquitard_c", Schema: schema.OffsetAllRequired(schema.StrictlyPositive())},
		{Name: "aquifer_k", Schema: schema.AllRequired(schema.StrictlyPositive())},
		{Name: "semiconf_top", Schema: schema.OptionalFirstOnly()},
		{Name: "semiconf_head", Schema: schema.OptionalFirstOnly()},
	}
	columns = append(columns, extra...)
	return schema.TableWise{
		Columns: columns,
		Consistency: []schema.TableConsistency{
			schema.SemiConfined(),
			schema.AllGreaterEqual("aquifer_top", "aquifer_bottom"),
		},
	}
}

func polygonInhomogeneityDefinition() Definition {
	return Definition{
		Kind:              KindPolygonInhomogeneity,
		Schema:            inhomogeneityGeometrySchema(),
		AssociatedSchema:  propertiesSchema(),
		SteadyConstructor: "PolygonInhomMaq",
		Steady:            polygonInhomogeneityTransform,
	}
}

func buildingPitDefinition() Definition {
	return Definition{
		Kind:   KindBuildingPit,
		Schema: inhomogeneityGeometrySchema(),
		AssociatedSchema: propertiesSchema(schema.ColumnField{
			Name: "wall_in_layer", Schema: schema.AllRequired(schema.AtleastOneTrue()),
		}),
		SteadyConstructor: "BuildingPit",
		Steady:            buildingPitTransform,
	}
}

func leakyBuildingPitDefinition() Definition {
	return Definition{
		Kind:   KindLeakyBuildingPit,
		Schema: inhomogeneityGeometrySchema(),
		AssociatedSchema: propertiesSchema(
			schema.ColumnField{
				Name: "wall_in_layer", Schema: schema.AllRequired(schema.AtleastOneTrue()),
			},
			schema.ColumnField{
				Name: "resistance", Schema: schema.RequiredFirstOnly(schema.StrictlyPositive()),
			},
		),
		SteadyConstructor: "LeakyBuildingPit",
		Steady:            buildingPitTransform,
	}
}

// propertiesGroup returns the column view of the properties rows belonging
// to one inhomogeneity id. Validation guarantees the group exists.
func propertiesGroup(assoc tables.Table, id tables.Value) (schema.Columns, error) {
	for _, g := range assoc.GroupBy("inhomogeneity_id") {
		if g.Key.Equal(id) {
			return schema.ColumnsOf(assoc.Subtable(g.Rows)), nil
		}
	}
	return nil, fmt.Errorf("no properties found for inhomogeneity_id %s", id)
}

func polygonInhomogeneityTransform(spec ElementSpec, ctx *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		cols, err := propertiesGroup(spec.Associated, row.Cell("inhomogeneity_id"))
		if err != nil {
			return nil, err
		}
		out = append(out, aquiferData(cols, false, ctx).
			Set("xy", pathOf(row)).
			Set("order", row.Cell("order").AsInt()).
			Set("ndeg", row.Cell("ndegrees").AsInt()))
	}
	return out, nil
}

// wallLayers converts the boolean wall_in_layer column to the layer indices
// where the wall is active.
func wallLayers(cols schema.Columns) []int {
	var layers []int
	for i, v := range cols.Column("wall_in_layer") {
		if v.AsBool() {
			layers = append(layers, i)
		}
	}
	return layers
}

func buildingPitTransform(spec ElementSpec, ctx *TransformContext) ([]*solver.Kwargs, error) {
	out := make([]*solver.Kwargs, 0, spec.Table.Len())
	for _, row := range spec.Table.Rows {
		cols, err := propertiesGroup(spec.Associated, row.Cell("inhomogeneity_id"))
		if err != nil {
			return nil, err
		}
		out = append(out, aquiferData(cols, false, ctx).
			Set("xy", pathOf(row)).
			Set("order", row.Cell("order").AsInt()).
			Set("ndeg", row.Cell("ndegrees").AsInt()).
			Set("layers", wallLayers(cols)))
	}
	return out, nil
}
