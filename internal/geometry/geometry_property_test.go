package geometry

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genBox generates a random box with positive area.
func genBox() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(0, 500),
		gen.Float64Range(0, 500),
		gen.Float64Range(1, 200),
		gen.Float64Range(1, 200),
	).Map(func(vals []interface{}) Box {
		x, ok := vals[0].(float64)
		if !ok {
			panic("expected float64")
		}
		y, ok := vals[1].(float64)
		if !ok {
			panic("expected float64")
		}
		w, ok := vals[2].(float64)
		if !ok {
			panic("expected float64")
		}
		h, ok := vals[3].(float64)
		if !ok {
			panic("expected float64")
		}
		return NewBox(x, y, x+w, y+h)
	})
}

func TestIoU_Symmetric(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("iou(a,b) == iou(b,a)", prop.ForAll(
		func(a, b Box) bool {
			return math.Abs(IoU(a, b)-IoU(b, a)) < 1e-12
		},
		genBox(),
		genBox(),
	))

	properties.TestingRun(t)
}

func TestIoU_Bounded(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("iou is within [0,1] and iou(a,a) is 1", prop.ForAll(
		func(a, b Box) bool {
			v := IoU(a, b)
			if v < 0 || v > 1 {
				return false
			}
			return math.Abs(IoU(a, a)-1.0) < 1e-12
		},
		genBox(),
		genBox(),
	))

	properties.TestingRun(t)
}

func TestUnion_ContainsAll(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("union covers every input box", prop.ForAll(
		func(boxes []Box) bool {
			if len(boxes) == 0 {
				return true
			}
			u, err := Union(boxes)
			if err != nil {
				return false
			}
			for _, b := range boxes {
				if b.MinX < u.MinX || b.MinY < u.MinY || b.MaxX > u.MaxX || b.MaxY > u.MaxY {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(15, genBox()),
	))

	properties.TestingRun(t)
}
