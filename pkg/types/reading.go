// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the bikecount pipeline:
// the bicycle-counter reading extracted from RDF/XML, the fixed field list
// that shapes the CSV output, and the configuration of each stage.
package types

// RecordTag is the local name of the element that carries one counter reading.
const RecordTag = "colonnine-conta-bici-record"

// Field names, in CSV column order.
const (
	FieldStation  = "colonnina"
	FieldTotal    = "totale"
	FieldOutbound = "direzione_periferia"
	FieldInbound  = "direzione_centro"
	FieldGeoPoint = "geo_point_2d"
	FieldDate     = "data"
)

// Fields is the ordered field list. It is both the CSV header and the set of
// child element names looked up under each record.
var Fields = []string{
	FieldStation,
	FieldTotal,
	FieldOutbound,
	FieldInbound,
	FieldGeoPoint,
	FieldDate,
}

// Row holds the trimmed text of each field, indexed like Fields.
type Row []string

// Reading is one bicycle-counter record. Values are kept as the raw trimmed
// strings found in the source document; no field is validated.
type Reading struct {
	// Station is the counter name (e.g. "Ercolani").
	Station string `csv:"colonnina" json:"colonnina" yaml:"colonnina"`

	// Total is the number of bicycles counted in both directions.
	Total string `csv:"totale" json:"totale" yaml:"totale"`

	// Outbound counts bicycles heading toward the outskirts.
	Outbound string `csv:"direzione_periferia" json:"direzione_periferia" yaml:"direzione_periferia"`

	// Inbound counts bicycles heading toward the city centre.
	Inbound string `csv:"direzione_centro" json:"direzione_centro" yaml:"direzione_centro"`

	// GeoPoint is the "lat, lon" position of the counter.
	GeoPoint string `csv:"geo_point_2d" json:"geo_point_2d" yaml:"geo_point_2d"`

	// Date is the day of the reading, usually YYYY-MM-DD.
	Date string `csv:"data" json:"data" yaml:"data"`
}

// ReadingFromRow maps a Row onto a Reading. Missing trailing cells are left
// empty.
func ReadingFromRow(row Row) Reading {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return Reading{
		Station:  cell(0),
		Total:    cell(1),
		Outbound: cell(2),
		Inbound:  cell(3),
		GeoPoint: cell(4),
		Date:     cell(5),
	}
}

// Row returns the reading's values in Fields order.
func (r Reading) Row() Row {
	return Row{r.Station, r.Total, r.Outbound, r.Inbound, r.GeoPoint, r.Date}
}
