package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/kepler/internal/orbit"
)

type ExportData struct {
	Run   RunMetadata `json:"run"`
	Times Floats      `json:"t"`
	X     Floats      `json:"x"`
	Y     Floats      `json:"y"`
	KE    Floats      `json:"ke"`
	PE    Floats      `json:"pe"`
	TE    Floats      `json:"te"`
}

func ExportJSON(w io.Writer, meta RunMetadata, tr *orbit.Trajectory) error {
	ts, xs, ys, kes, pes, tes := tr.Columns()
	data := ExportData{
		Run:   meta,
		Times: ts,
		X:     xs,
		Y:     ys,
		KE:    kes,
		PE:    pes,
		TE:    tes,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, meta RunMetadata, tr *orbit.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := ExportJSON(file, meta, tr); err != nil {
		return err
	}
	return file.Close()
}
