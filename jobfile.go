package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"frameup/internal/editor"
	domain "frameup/internal/model"
)

// jobFile is the layer file of a headless export. Layer entries use the
// same field names as the stored document; a "style" entry names a saved
// style to start from. YAML is a superset of JSON, so both formats load.
//
//	transform: {x: 0, y: -120, zoom: 110}
//	cover: false
//	layers:
//	  - text: "Summer sale"
//	    style: Headline
//	    verticalAlign: bottom
type jobFile struct {
	Transform *jobTransform    `yaml:"transform"`
	Cover     bool             `yaml:"cover"`
	Layers    []map[string]any `yaml:"layers"`
}

type jobTransform struct {
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Zoom float64 `yaml:"zoom"`
}

func readJobFile(path string) (jobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jobFile{}, fmt.Errorf("reading layer file: %w", err)
	}
	return parseJobFile(data)
}

func parseJobFile(data []byte) (jobFile, error) {
	var job jobFile
	if err := yaml.Unmarshal(data, &job); err != nil {
		return jobFile{}, fmt.Errorf("parsing layer file: %w", err)
	}
	if job.Transform != nil && job.Transform.Zoom == 0 {
		job.Transform.Zoom = 100
	}
	return job, nil
}

// layers builds the text layers of the job. Fields not given keep the
// value of the named style, or the default layer's.
func (j jobFile) layers(styles []domain.TextStyle) ([]domain.TextLayer, error) {
	out := make([]domain.TextLayer, 0, len(j.Layers))
	for i, entry := range j.Layers {
		l := domain.DefaultTextLayer()

		fields := make(map[string]any, len(entry))
		for k, v := range entry {
			fields[k] = v
		}
		if name, ok := fields["style"]; ok {
			delete(fields, "style")
			st, err := findStyle(styles, fmt.Sprint(name))
			if err != nil {
				return nil, fmt.Errorf("layer %d: %w", i+1, err)
			}
			l = st.ApplyTo(l)
		}
		delete(fields, "id")

		data, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i+1, err)
		}
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i+1, err)
		}
		out = append(out, l)
	}
	return out, nil
}

func findStyle(styles []domain.TextStyle, name string) (domain.TextStyle, error) {
	i := slices.IndexFunc(styles, func(st domain.TextStyle) bool { return st.Name == name })
	if i < 0 {
		return domain.TextStyle{}, fmt.Errorf("style %q: %w", name, domain.ErrNotFound)
	}
	return styles[i], nil
}

// apply adds the job's layers to s and sets its transform.
func (j jobFile) apply(s *editor.Session) error {
	layers, err := j.layers(s.Styles())
	if err != nil {
		return err
	}
	for _, l := range layers {
		if _, err := s.AddLayer(l); err != nil {
			return err
		}
	}
	switch {
	case j.Cover:
		return s.Cover()
	case j.Transform != nil:
		s.SetTransform(domain.Transform{X: j.Transform.X, Y: j.Transform.Y, Zoom: j.Transform.Zoom})
	}
	return nil
}
