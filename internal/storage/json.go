package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/mrilab/internal/dynamo"
)

type ExportData struct {
	Demo     string               `json:"demo"`
	Mode     string               `json:"mode,omitempty"`
	Params   map[string]float64   `json:"params,omitempty"`
	Timing   dynamo.Timing        `json:"timing"`
	Steps    int                  `json:"steps"`
	Times    []float64            `json:"times"`
	Series   map[string][]float64 `json:"series"`
	Trail    [][3]float64         `json:"trail,omitempty"`
	Labels   map[string]string    `json:"labels,omitempty"`
	Metrics  map[string]float64   `json:"metrics"`
	Channels []string             `json:"channels"`
}

func exportData(result *dynamo.Result) ExportData {
	data := ExportData{
		Demo:     result.Demo,
		Mode:     result.Mode,
		Params:   result.Params,
		Timing:   result.Timing,
		Steps:    result.StepsTaken,
		Times:    result.Times,
		Series:   result.Series,
		Labels:   result.Final.Labels,
		Metrics:  result.Metrics,
		Channels: result.Channels,
	}
	if len(result.Trail) > 0 {
		data.Trail = make([][3]float64, len(result.Trail))
		for i, p := range result.Trail {
			data.Trail[i] = [3]float64{p.X, p.Y, p.Z}
		}
	}
	return data
}

// WriteJSON encodes a result as indented JSON.
func WriteJSON(w io.Writer, result *dynamo.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(result))
}

// ExportJSON writes the result to path, or to stdout when path is "-".
func ExportJSON(path string, result *dynamo.Result) error {
	if path == "-" {
		return WriteJSON(os.Stdout, result)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, result)
}

// ExportCSV writes the series table to path, or to stdout when path is "-".
func ExportCSV(path string, result *dynamo.Result) error {
	if path == "-" {
		return WriteCSV(os.Stdout, result)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, result)
}
