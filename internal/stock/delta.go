package stock

// Adjustment is a signed change to one product's total. The same delta is
// applied to the category the product belongs to.
type Adjustment struct {
	ProductID int64
	Delta     int64
}

// Position is what a variant contributes to the aggregates: its product and
// its quantity.
type Position struct {
	ProductID int64
	Quantity  int64
}

func ComputeDelta(oldQty, newQty int64) int64 {
	return newQty - oldQty
}

func PlanCreate(p Position) []Adjustment {
	return compact(Adjustment{ProductID: p.ProductID, Delta: p.Quantity})
}

// PlanUpdate derives the adjustments for a variant moving from prev to next.
// A product change is a removal from the old product plus an addition to the
// new one.
func PlanUpdate(prev, next Position) []Adjustment {
	if prev.ProductID == next.ProductID {
		return compact(Adjustment{ProductID: next.ProductID, Delta: ComputeDelta(prev.Quantity, next.Quantity)})
	}
	return compact(
		Adjustment{ProductID: prev.ProductID, Delta: -prev.Quantity},
		Adjustment{ProductID: next.ProductID, Delta: next.Quantity},
	)
}

func PlanDelete(p Position) []Adjustment {
	return compact(Adjustment{ProductID: p.ProductID, Delta: -p.Quantity})
}

func compact(adjustments ...Adjustment) []Adjustment {
	out := adjustments[:0]
	for _, a := range adjustments {
		if a.Delta != 0 {
			out = append(out, a)
		}
	}
	return out
}
