package plantfile

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
)

// MaxInputCount caps the multiplicity of one input in the counted form
const MaxInputCount = 1000

// parseJSON decodes a definition with the same keys as the YAML layout.
// Transformation inputs may be a list of names or an object of name -> count,
// expanded in document order.
func parseJSON(data []byte) (catalog.Definition, error) {
	if !gjson.ValidBytes(data) {
		return catalog.Definition{}, fmt.Errorf("malformed JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return catalog.Definition{}, fmt.Errorf("top level must be an object")
	}

	def := catalog.Definition{Name: root.Get("name").String()}

	root.Get("part_types").ForEach(func(_, v gjson.Result) bool {
		def.PartTypes = append(def.PartTypes, catalog.PartTypeDef{
			Name:     v.Get("name").String(),
			Cost:     v.Get("cost").Float(),
			Value:    v.Get("value").Float(),
			Finished: v.Get("finished").Bool(),
		})
		return true
	})

	var readErr error
	root.Get("transformations").ForEach(func(_, v gjson.Result) bool {
		name := v.Get("name").String()
		inputs, err := readInputs(v.Get("inputs"))
		if err != nil {
			readErr = fmt.Errorf("transformation %s: %w", name, err)
			return false
		}
		duration, err := readInt(v.Get("duration"))
		if err != nil {
			readErr = fmt.Errorf("transformation %s: duration: %w", name, err)
			return false
		}
		def.Transformations = append(def.Transformations, catalog.TransformationDef{
			Name:     name,
			Inputs:   inputs,
			Output:   v.Get("output").String(),
			Duration: duration,
		})
		return true
	})
	if readErr != nil {
		return catalog.Definition{}, readErr
	}

	root.Get("machine_types").ForEach(func(_, v gjson.Result) bool {
		name := v.Get("name").String()
		slots, err := readInt(v.Get("slots"))
		if err != nil {
			readErr = fmt.Errorf("machine type %s: slots: %w", name, err)
			return false
		}
		def.MachineTypes = append(def.MachineTypes, catalog.MachineTypeDef{
			Name:            name,
			Slots:           slots,
			Transformations: readStrings(v.Get("transformations")),
		})
		return true
	})
	if readErr != nil {
		return catalog.Definition{}, readErr
	}

	root.Get("machines").ForEach(func(_, v gjson.Result) bool {
		def.Machines = append(def.Machines, catalog.MachineDef{
			ID:   v.Get("id").String(),
			Type: v.Get("type").String(),
		})
		return true
	})

	return def, nil
}

func readInputs(v gjson.Result) ([]string, error) {
	switch {
	case !v.Exists():
		return nil, nil
	case v.IsArray():
		return readStrings(v), nil
	case v.IsObject():
		var inputs []string
		var err error
		v.ForEach(func(name, count gjson.Result) bool {
			n, countErr := readInt(count)
			switch {
			case countErr != nil:
				err = fmt.Errorf("input %s: %w", name.String(), countErr)
				return false
			case n <= 0:
				err = fmt.Errorf("input %s: count must be positive", name.String())
				return false
			case n > MaxInputCount:
				err = fmt.Errorf("input %s: count must be at most %d", name.String(), MaxInputCount)
				return false
			}
			for i := 0; i < n; i++ {
				inputs = append(inputs, name.String())
			}
			return true
		})
		return inputs, err
	default:
		return nil, fmt.Errorf("inputs must be a list or an object")
	}
}

// readInt accepts a missing field as zero and rejects anything but an integral
// number within int range
func readInt(v gjson.Result) (int, error) {
	if !v.Exists() {
		return 0, nil
	}
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("must be a number, got %s", v.Raw)
	}
	f := v.Float()
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("must be an integer, got %s", v.Raw)
	}
	return int(f), nil
}

func readStrings(v gjson.Result) []string {
	if !v.Exists() || !v.IsArray() {
		return nil
	}
	arr := v.Array()
	out := make([]string, len(arr))
	for i, item := range arr {
		out[i] = item.String()
	}
	return out
}
