package io

import (
	"encoding/json"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/barscene/pkg/errors"
	"github.com/matzehuels/barscene/pkg/scene"
)

// ReadJSON decodes a JSON dataset from r.
//
// The input must be an object with a "series" array:
//
//	{
//	  "series": [
//	    {"name": "sales", "rows": [[1, 2, 3], [4, 5]]},
//	    {"name": "costs", "rows": [[2, 1]], "hidden": true}
//	  ]
//	}
//
// Each series must have a unique "name". Optional fields: "style",
// "rotations", "row_labels", "column_labels" and "hidden".
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (scene.Dataset, error) {
	var ds scene.Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return scene.Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode json")
	}
	return ds, nil
}

// ReadTOML decodes a TOML dataset from r. Series are an array of tables:
//
//	[[series]]
//	name = "sales"
//	rows = [[1.0, 2.0, 3.0], [4.0, 5.0]]
//	row_labels = ["2023", "2024"]
//
//	[series.style]
//	base_color = "#336699"
func ReadTOML(r io.Reader) (scene.Dataset, error) {
	var ds scene.Dataset
	if _, err := toml.NewDecoder(r).Decode(&ds); err != nil {
		return scene.Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode toml")
	}
	return ds, nil
}
