// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadingTagsFollowFields(t *testing.T) {
	rt := reflect.TypeOf(Reading{})
	tags := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		tags = append(tags, rt.Field(i).Tag.Get("csv"))
	}
	assert.Equal(t, Fields, tags)
}

func TestReadingFromRow(t *testing.T) {
	row := Row{"Ercolani", "10", "4", "6", "45.0,9.0", "2023-01-01"}
	r := ReadingFromRow(row)

	assert.Equal(t, "Ercolani", r.Station)
	assert.Equal(t, "45.0,9.0", r.GeoPoint)
	assert.Equal(t, row, r.Row())
}

func TestReadingFromShortRow(t *testing.T) {
	r := ReadingFromRow(Row{"Sabotino"})
	assert.Equal(t, Row{"Sabotino", "", "", "", "", ""}, r.Row())
}
